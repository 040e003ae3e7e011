package orders_test

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suju/storefront/internal/api"
	"suju/storefront/internal/cart"
	"suju/storefront/internal/config"
	"suju/storefront/internal/credentials"
	"suju/storefront/internal/devserver"
	"suju/storefront/internal/log"
	"suju/storefront/internal/models"
	"suju/storefront/internal/orders"
	"suju/storefront/internal/session"
)

type env struct {
	viewer    *orders.Viewer
	cart      *cart.Synchronizer
	store     *devserver.Store
	userID    int64
	addressID int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := log.NewWithOutput("test", io.Discard)

	backend := devserver.New(config.DevServerConfig{JWTSecret: "test-secret", JWTTTL: time.Hour}, logger)
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	creds, err := credentials.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { creds.Close() })

	client := api.New(config.APIConfig{BaseURL: server.URL + "/v1", Timeout: 5 * time.Second}, creds, logger)

	manager := session.NewManager(client, creds, logger)
	result, err := manager.Register(context.Background(), session.RegisterInput{
		Username:        "buyer",
		Email:           "buyer@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		AcceptTerms:     true,
	})
	require.NoError(t, err)

	address := backend.Store().CreateAddress(result.User.ID, models.Address{
		RecipientName: "Su Buyer",
		Phone:         "13800000000",
		Province:      "Zhejiang",
		City:          "Hangzhou",
		District:      "Xihu",
		DetailAddress: "1 Longjing Rd",
		IsDefault:     true,
	})

	return &env{
		viewer:    orders.NewViewer(client, logger),
		cart:      cart.NewSynchronizer(client, logger),
		store:     backend.Store(),
		userID:    result.User.ID,
		addressID: address.ID,
	}
}

// placeOrder runs the checkout path: seed a product, put it in the
// cart, consume the selection.
func (e *env) placeOrder(t *testing.T, quantity int) models.OrderSummary {
	t.Helper()
	ctx := context.Background()

	product := e.store.AddProduct(models.ProductDetail{
		Product: models.Product{Name: "Longjing", Price: 128, Stock: 50, IsPublished: true},
	})
	require.NoError(t, e.cart.Add(ctx, product.ID, quantity))
	require.NoError(t, e.cart.Load(ctx))

	result, err := e.viewer.Create(ctx, orders.CreateInput{
		CartItemIDs:   e.cart.SelectedIDs(),
		AddressID:     e.addressID,
		PaymentMethod: "alipay",
	})
	require.NoError(t, err)
	return result.Order
}

func TestCreateConsumesSelectedItemsOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tea := e.store.AddProduct(models.ProductDetail{
		Product: models.Product{Name: "Longjing", Price: 128, Stock: 50, IsPublished: true},
	})
	tray := e.store.AddProduct(models.ProductDetail{
		Product: models.Product{Name: "Tea Tray", Price: 210, Stock: 12, IsPublished: true},
	})
	require.NoError(t, e.cart.Add(ctx, tea.ID, 2))
	require.NoError(t, e.cart.Add(ctx, tray.ID, 1))
	require.NoError(t, e.cart.Load(ctx))

	items := e.cart.Items()
	require.Len(t, items, 2)
	// Deselect the tray; only the tea should be ordered.
	e.cart.ToggleSelect(items[1].ID)

	result, err := e.viewer.Create(ctx, orders.CreateInput{
		CartItemIDs:   e.cart.SelectedIDs(),
		AddressID:     e.addressID,
		PaymentMethod: "alipay",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Order.OrderNumber, "SJ"))
	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, items[0].Product.ID, result.Order.Items[0].ProductID)
	assert.InDelta(t, 2*128, result.Order.TotalAmount, 0.001)
	assert.NotEmpty(t, result.Payment.PaymentURL)

	// The unselected item survived checkout.
	serverCart := e.store.Cart(e.userID)
	require.Len(t, serverCart.Items, 1)
	assert.Equal(t, items[1].ID, serverCart.Items[0].ID)
}

func TestCreateRequiresSelectionAndAddress(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.viewer.Create(ctx, orders.CreateInput{AddressID: e.addressID})
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))

	product := e.store.AddProduct(models.ProductDetail{
		Product: models.Product{Name: "Longjing", Price: 128, Stock: 50, IsPublished: true},
	})
	require.NoError(t, e.cart.Add(ctx, product.ID, 1))
	require.NoError(t, e.cart.Load(ctx))

	_, err = e.viewer.Create(ctx, orders.CreateInput{CartItemIDs: e.cart.SelectedIDs(), AddressID: 999})
	require.Error(t, err)
	assert.Equal(t, "shipping address not found", api.UserMessage(err))
}

func TestCancelThenPayRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	order := e.placeOrder(t, 1)

	cancelled, err := e.viewer.Cancel(ctx, order.ID, "不想买了")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	require.Len(t, cancelled.Timelines, 2, "created plus cancelled")
	assert.Equal(t, "不想买了", cancelled.Timelines[1].Description)

	_, err = e.viewer.Pay(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))

	// The rejected transition changed nothing.
	detail, err := e.viewer.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, detail.Status)
	assert.Len(t, detail.Timelines, 2)
	assert.True(t, detail.Status.Terminal())
}

func TestFullLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	order := e.placeOrder(t, 2)

	paid, err := e.viewer.Pay(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Len(t, paid.Timelines, 2)

	// Shipping is the admin's move.
	require.NoError(t, e.store.ShipOrder(order.ID))

	confirmed, err := e.viewer.Confirm(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, confirmed.Status)
	require.NotNil(t, confirmed.CompletedAt)
	assert.Len(t, confirmed.Timelines, 4)
	assert.True(t, confirmed.Status.Terminal())
}

func TestConfirmBeforeShipmentRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	order := e.placeOrder(t, 1)
	_, err := e.viewer.Pay(ctx, order.ID)
	require.NoError(t, err)

	_, err = e.viewer.Confirm(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))
}

func TestRefundFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	order := e.placeOrder(t, 1)
	_, err := e.viewer.Pay(ctx, order.ID)
	require.NoError(t, err)

	// Requesting a refund does not move the order; the admin decision
	// does.
	detail, err := e.viewer.RequestRefund(ctx, order.ID, "damaged on arrival")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, detail.Status)

	// Only one open refund per order.
	_, err = e.viewer.RequestRefund(ctx, order.ID, "again")
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))

	refunds := e.store.Refunds(models.RefundStatusPending)
	require.Len(t, refunds, 1)
	assert.Equal(t, order.ID, refunds[0].OrderID)
	assert.InDelta(t, detail.TotalAmount, refunds[0].RefundAmount, 0.001)

	require.NoError(t, e.store.ApproveRefund(refunds[0].ID, "approved"))

	detail, err = e.viewer.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, detail.Status)
	assert.True(t, detail.Status.Terminal())
}

func TestRefundRequiresPaidOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	order := e.placeOrder(t, 1)
	_, err := e.viewer.RequestRefund(ctx, order.ID, "changed my mind")
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))
}

func TestListFiltersByStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.placeOrder(t, 1)
	second := e.placeOrder(t, 1)
	_, err := e.viewer.Pay(ctx, second.ID)
	require.NoError(t, err)

	page, err := e.viewer.List(ctx, orders.ListQuery{Status: models.OrderStatusPending})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, first.ID, page.List[0].ID)

	// Unfiltered, newest first.
	page, err = e.viewer.List(ctx, orders.ListQuery{})
	require.NoError(t, err)
	require.Len(t, page.List, 2)
	assert.Equal(t, second.ID, page.List[0].ID)
	assert.Equal(t, 2, page.Pagination.Total)
}
