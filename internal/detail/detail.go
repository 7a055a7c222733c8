// Package detail lazily fetches the rich order projection when a user opens
// a detail view, going to the backend only on cache miss.
package detail

import (
	"context"
	"fmt"

	"github.com/ismarliyorum/storekit/internal/cache"
	"github.com/ismarliyorum/storekit/internal/models"
)

type Service interface {
	GetOrderDetail(ctx context.Context, storeID, orderID string) (*models.OrderDetail, error)
}

type Loader struct {
	svc   Service
	cache *cache.OrderDetailCache
}

func NewLoader(svc Service, c *cache.OrderDetailCache) *Loader {
	return &Loader{svc: svc, cache: c}
}

func (l *Loader) Get(ctx context.Context, storeID, orderID string) (*models.OrderDetail, error) {
	if d, ok := l.cache.Get(storeID, orderID); ok {
		return d, nil
	}
	d, err := l.svc.GetOrderDetail(ctx, storeID, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order detail: %w", err)
	}
	l.cache.Put(storeID, orderID, d)
	return d, nil
}

// Invalidate forces the next Get to refetch, used after a redemption
// transitions the order server-side.
func (l *Loader) Invalidate(storeID, orderID string) {
	l.cache.Invalidate(storeID, orderID)
}
