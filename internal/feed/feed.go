// Package feed maintains one consistent view of a store's orders under a
// (listType, timeFilter) selection: infinite scroll, pull-to-refresh, and
// at most one in-flight fetch per selection.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ismarliyorum/storekit/internal/api"
	"github.com/ismarliyorum/storekit/internal/audit"
	"github.com/ismarliyorum/storekit/internal/errs"
	"github.com/ismarliyorum/storekit/internal/models"
)

type Service interface {
	ListOrders(ctx context.Context, req api.ListOrdersRequest) (*models.OrderFeedPage, error)
}

type Controller struct {
	svc    Service
	events audit.Recorder
	limit  int

	mu         sync.Mutex
	storeID    string
	listType   models.ListType
	timeFilter models.TimeFilter
	page       int
	orders     []models.Order
	summary    *models.SummaryData
	pagination *models.PaginationMeta
	loading    bool
	refreshing bool
	// epoch identifies the current selection; a response whose request
	// carried an older epoch is discarded, never applied.
	epoch  uint64
	closed bool
}

func NewController(svc Service, limit int, events audit.Recorder) *Controller {
	if limit < 1 {
		limit = 20
	}
	if events == nil {
		events = audit.NopRecorder{}
	}
	return &Controller{
		svc:        svc,
		events:     events,
		limit:      limit,
		listType:   models.ListCompleted,
		timeFilter: models.FilterDaily,
		page:       1,
	}
}

// Snapshot is a caller-owned copy of the controller state.
type Snapshot struct {
	StoreID    string
	ListType   models.ListType
	TimeFilter models.TimeFilter
	Page       int
	Orders     []models.Order
	Summary    *models.SummaryData
	Pagination *models.PaginationMeta
	Loading    bool
	Refreshing bool
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		StoreID:    c.storeID,
		ListType:   c.listType,
		TimeFilter: c.timeFilter,
		Page:       c.page,
		Orders:     append([]models.Order(nil), c.orders...),
		Loading:    c.loading,
		Refreshing: c.refreshing,
	}
	if c.summary != nil {
		s := *c.summary
		snap.Summary = &s
	}
	if c.pagination != nil {
		p := *c.pagination
		snap.Pagination = &p
	}
	return snap
}

// Initialize points the controller at a store and loads the first page of
// the default selection (completed, daily).
func (c *Controller) Initialize(ctx context.Context, storeID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.storeID = storeID
	c.listType = models.ListCompleted
	c.timeFilter = models.FilterDaily
	c.page = 1
	c.orders = nil
	c.summary = nil
	c.pagination = nil
	c.epoch++
	c.loading = true
	c.refreshing = false
	req, epoch := c.requestLocked(1), c.epoch
	c.mu.Unlock()

	return swallowStale(c.fetch(ctx, req, epoch, true, false))
}

// ChangeTab switches between the completed and available lists. The two
// lists never share accumulated page state: switching clears the orders and
// resets to page 1. A fetch still pending for the previous selection is
// superseded and its response discarded on arrival.
func (c *Controller) ChangeTab(ctx context.Context, listType models.ListType) error {
	c.mu.Lock()
	if c.closed || c.storeID == "" || listType == c.listType {
		c.mu.Unlock()
		return nil
	}
	c.listType = listType
	c.resetSelectionLocked()
	req, epoch := c.requestLocked(1), c.epoch
	c.mu.Unlock()

	return swallowStale(c.fetch(ctx, req, epoch, true, false))
}

// ChangeTimeFilter has the same contract as ChangeTab, for the time filter.
func (c *Controller) ChangeTimeFilter(ctx context.Context, filter models.TimeFilter) error {
	c.mu.Lock()
	if c.closed || c.storeID == "" || filter == c.timeFilter {
		c.mu.Unlock()
		return nil
	}
	c.timeFilter = filter
	c.resetSelectionLocked()
	req, epoch := c.requestLocked(1), c.epoch
	c.mu.Unlock()

	return swallowStale(c.fetch(ctx, req, epoch, true, false))
}

// Refresh refetches page 1 of the current selection and replaces the
// accumulated orders with the authoritative first page.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.storeID == "" || c.loading || c.refreshing {
		c.mu.Unlock()
		return nil
	}
	c.refreshing = true
	req, epoch := c.requestLocked(1), c.epoch
	c.mu.Unlock()

	return swallowStale(c.fetch(ctx, req, epoch, true, true))
}

// LoadMore fetches the next page and appends it. No-op while a fetch is in
// flight or when the last known page has been reached.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.loading || c.refreshing ||
		c.pagination == nil || c.page >= c.pagination.TotalPages {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	req, epoch := c.requestLocked(c.page+1), c.epoch
	c.mu.Unlock()

	return swallowStale(c.fetch(ctx, req, epoch, false, false))
}

// Close disposes the controller. Responses arriving afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.epoch++
	c.loading = false
	c.refreshing = false
	c.mu.Unlock()
}

func (c *Controller) resetSelectionLocked() {
	c.page = 1
	c.orders = nil
	c.epoch++
	c.loading = true
	c.refreshing = false
}

func (c *Controller) requestLocked(page int) api.ListOrdersRequest {
	return api.ListOrdersRequest{
		StoreID:    c.storeID,
		ListType:   c.listType,
		TimeFilter: c.timeFilter,
		Page:       page,
		Limit:      c.limit,
	}
}

func (c *Controller) fetch(ctx context.Context, req api.ListOrdersRequest, epoch uint64, replace, refreshing bool) error {
	page, err := c.svc.ListOrders(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || epoch != c.epoch {
		c.events.Record(audit.Event{
			Kind:    audit.EventFeedStale,
			StoreID: req.StoreID,
			Message: fmt.Sprintf("dropped %s/%s page %d response", req.ListType, req.TimeFilter, req.Page),
		})
		return errs.ErrStaleResponse
	}

	if refreshing {
		c.refreshing = false
	} else {
		c.loading = false
	}

	if err != nil {
		// Previously loaded pages stay visible; page is not advanced.
		c.events.Record(audit.Event{
			Kind:    audit.EventFeedFetch,
			StoreID: req.StoreID,
			Message: fmt.Sprintf("page %d failed: %v", req.Page, err),
		})
		return fmt.Errorf("fetch orders page %d: %w", req.Page, err)
	}

	if replace {
		c.orders = page.Items
	} else {
		c.orders = append(c.orders, page.Items...)
	}
	summary := page.Summary
	pagination := page.Pagination
	c.summary = &summary
	c.pagination = &pagination
	c.page = req.Page

	c.events.Record(audit.Event{
		Kind:    audit.EventFeedFetch,
		StoreID: req.StoreID,
		Message: fmt.Sprintf("%s/%s page %d, %d orders", req.ListType, req.TimeFilter, req.Page, len(page.Items)),
	})
	return nil
}

// A stale discard is an internal signal, not a caller-visible failure.
func swallowStale(err error) error {
	if errors.Is(err, errs.ErrStaleResponse) {
		return nil
	}
	return err
}
