package integrations

import (
	"context"
	"time"

	"github.com/ismarliyorum/storekit/internal/audit"
	"github.com/ismarliyorum/storekit/internal/cache"
	"github.com/ismarliyorum/storekit/internal/detail"
	"github.com/ismarliyorum/storekit/internal/errs"
	"github.com/ismarliyorum/storekit/internal/feed"
	"github.com/ismarliyorum/storekit/internal/models"
	"github.com/ismarliyorum/storekit/internal/redeem"
)

func (s *IntegrationSuite) TestLoginStoresToken() {
	result, err := client.Login(context.Background(), "staff@example.com", "secret")
	s.Require().NoError(err)
	s.Require().NoError(sess.SetToken(result.Token))

	s.Equal("integration-token", sess.Token())
	s.Require().Len(result.User.Stores, 1)
	s.Equal("S1", result.User.Stores[0].ID)
}

func (s *IntegrationSuite) TestDailyFeedPagination() {
	ctrl := feed.NewController(client, 20, nil)
	defer ctrl.Close()

	s.Require().NoError(ctrl.Initialize(context.Background(), "S1"))

	snap := ctrl.Snapshot()
	s.Len(snap.Orders, 20)
	s.Require().NotNil(snap.Pagination)
	s.Equal(2, snap.Pagination.TotalPages)
	s.Equal(25, snap.Summary.TotalOrders)

	s.Require().NoError(ctrl.LoadMore(context.Background()))
	snap = ctrl.Snapshot()
	s.Len(snap.Orders, 25)
	s.Equal(2, snap.Page)

	// Terminal page: further loadMore stays a no-op.
	s.Require().NoError(ctrl.LoadMore(context.Background()))
	s.Len(ctrl.Snapshot().Orders, 25)
}

func (s *IntegrationSuite) TestTabSwitchReplacesFeed() {
	ctrl := feed.NewController(client, 20, nil)
	defer ctrl.Close()

	s.Require().NoError(ctrl.Initialize(context.Background(), "S1"))
	s.Require().NoError(ctrl.ChangeTab(context.Background(), models.ListAvailable))

	snap := ctrl.Snapshot()
	s.Len(snap.Orders, 3)
	for _, o := range snap.Orders {
		s.Equal(models.StatusPendingRedeem, o.Status)
	}
}

func (s *IntegrationSuite) TestRedemptionFlow() {
	s.Require().NoError(sess.SetLastSelectedStore("S1"))

	ctx, cancel := context.WithCancel(context.Background())
	pool := audit.NewWorkerPool(
		audit.PoolConfig{BatchSize: 1, Timeout: time.Second, ChannelSize: 16},
		&audit.HTTPProcessor{Endpoint: testServer.URL + "/client-events"},
	)
	pool.Start(ctx, 1)

	ctrl := redeem.NewController(client, sess, nil, pool)
	payload, err := ctrl.Submit(context.Background(), "valid-1")
	s.Require().NoError(err)

	s.Equal(redeem.StateSucceeded, ctrl.State())
	s.Equal("Ayşe Yılmaz", payload.RecipientName)
	s.Equal("Az şekerli", payload.OrderNote)

	// Manual entries are uppercased before they reach the server.
	s.Equal("VALID-1", backend.redeemBody()["redemptionCode"])
	s.Equal("S1", backend.redeemBody()["storeId"])

	cancel()
	pool.Wait()
	s.GreaterOrEqual(backend.eventCount(), 2)
}

func (s *IntegrationSuite) TestRedemptionWithoutStoreSelection() {
	ctrl := redeem.NewController(client, sess, nil, nil)

	_, err := ctrl.Submit(context.Background(), "VALID-1")
	s.Require().Error(err)
	s.ErrorIs(err, errs.ErrNoStoreSelected)
	s.Nil(backend.redeemBody())
}

func (s *IntegrationSuite) TestRedemptionExpiredCode() {
	s.Require().NoError(sess.SetLastSelectedStore("S1"))
	ctrl := redeem.NewController(client, sess, nil, nil)

	_, err := ctrl.Submit(context.Background(), "XYZ-999")
	s.Require().Error(err)
	s.ErrorIs(err, errs.ErrNotFoundOrExpired)
	s.Equal(redeem.StateFailed, ctrl.State())

	// A failed redemption never mutates the persisted session.
	s.Equal("S1", sess.LastSelectedStore())
}

func (s *IntegrationSuite) TestOrderDetailCached() {
	loader := detail.NewLoader(client, cache.NewOrderDetailCache(time.Minute))

	first, err := loader.Get(context.Background(), "S1", "o42")
	s.Require().NoError(err)
	s.Equal("ORD-o42", first.Header.OrderCode)
	s.Equal("70", first.Pricing.Total.String())

	_, err = loader.Get(context.Background(), "S1", "o42")
	s.Require().NoError(err)
	s.Equal(1, backend.detailCount())
}
