package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ismarliyorum/storekit/internal/models"
)

type entry struct {
	detail   *models.OrderDetail
	storedAt time.Time
}

// OrderDetailCache keeps recently opened order details so re-opening a
// detail view does not refetch within the TTL.
type OrderDetailCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

func NewOrderDetailCache(ttl time.Duration) *OrderDetailCache {
	return &OrderDetailCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func key(storeID, orderID string) string {
	return storeID + "/" + orderID
}

func (c *OrderDetailCache) Get(storeID, orderID string) (*models.OrderDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key(storeID, orderID)]
	if !ok || time.Since(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.detail, true
}

func (c *OrderDetailCache) Put(storeID, orderID string, d *models.OrderDetail) {
	c.mu.Lock()
	c.entries[key(storeID, orderID)] = entry{detail: d, storedAt: time.Now()}
	c.mu.Unlock()
}

// Invalidate drops one order, e.g. after its redemption changed its status.
func (c *OrderDetailCache) Invalidate(storeID, orderID string) {
	c.mu.Lock()
	delete(c.entries, key(storeID, orderID))
	c.mu.Unlock()
}

func (c *OrderDetailCache) sweep() {
	c.mu.Lock()
	for k, e := range c.entries {
		if time.Since(e.storedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

func (c *OrderDetailCache) StartAutoSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-ctx.Done():
			return
		}
	}
}
