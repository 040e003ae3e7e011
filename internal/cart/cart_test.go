package cart_test

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
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
	"suju/storefront/internal/session"
)

type env struct {
	cart   *cart.Synchronizer
	store  *devserver.Store
	userID int64
}

func newEnv(t *testing.T, opts ...cart.Option) *env {
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
		Username:        "shopper",
		Email:           "shopper@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		AcceptTerms:     true,
	})
	require.NoError(t, err)

	return &env{
		cart:   cart.NewSynchronizer(client, logger, opts...),
		store:  backend.Store(),
		userID: result.User.ID,
	}
}

func (e *env) addProduct(t *testing.T, name string, price float64, stock int) int64 {
	t.Helper()
	product := e.store.AddProduct(models.ProductDetail{
		Product: models.Product{Name: name, Price: price, Stock: stock, IsPublished: true},
	})
	return product.ID
}

func (e *env) serverQuantity(t *testing.T, itemID int64) int {
	t.Helper()
	for _, item := range e.store.Cart(e.userID).Items {
		if item.ID == itemID {
			return item.Quantity
		}
	}
	t.Fatalf("cart item %d not on server", itemID)
	return 0
}

func TestLoadSelectsAll(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teaID := e.addProduct(t, "Longjing", 128, 50)
	gaiwanID := e.addProduct(t, "Gaiwan", 75, 5)
	require.NoError(t, e.cart.Add(ctx, teaID, 2))
	require.NoError(t, e.cart.Add(ctx, gaiwanID, 1))

	require.NoError(t, e.cart.Load(ctx))

	items := e.cart.Items()
	require.Len(t, items, 2)
	for _, item := range items {
		assert.True(t, e.cart.IsSelected(item.ID), "items start selected after load")
	}
	assert.Equal(t, 3, e.cart.Count(), "count is the sum of quantities")
	assert.InDelta(t, 2*128+75, e.cart.SelectedTotal(), 0.001)
}

func TestAddMergesSameProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teaID := e.addProduct(t, "Longjing", 128, 50)
	require.NoError(t, e.cart.Add(ctx, teaID, 2))
	require.NoError(t, e.cart.Add(ctx, teaID, 3))

	items := e.cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, e.cart.Count())
}

func TestAddBeyondStockRejected(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	gaiwanID := e.addProduct(t, "Gaiwan", 75, 5)
	err := e.cart.Add(ctx, gaiwanID, 6)
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))
	assert.Equal(t, "insufficient stock", api.UserMessage(err))
	assert.Equal(t, 0, e.cart.Count())
}

func TestUpdateQuantityOutOfBoundsIsLocalNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	gaiwanID := e.addProduct(t, "Gaiwan", 75, 5)
	require.NoError(t, e.cart.Add(ctx, gaiwanID, 5))
	require.NoError(t, e.cart.Load(ctx))
	itemID := e.cart.Items()[0].ID

	// Stock is 5 and the cart already holds 5: one more is out of
	// bounds, so nothing changes and no request is sent.
	require.NoError(t, e.cart.UpdateQuantity(ctx, itemID, 6, 5))
	assert.Equal(t, 5, e.cart.Items()[0].Quantity)
	assert.Equal(t, 5, e.serverQuantity(t, itemID))

	// Below one is equally out of bounds.
	require.NoError(t, e.cart.UpdateQuantity(ctx, itemID, 0, 5))
	assert.Equal(t, 5, e.cart.Items()[0].Quantity)
	assert.Equal(t, 5, e.serverQuantity(t, itemID))
}

func TestUpdateQuantityAppliesAndSyncs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teaID := e.addProduct(t, "Longjing", 128, 50)
	require.NoError(t, e.cart.Add(ctx, teaID, 2))
	require.NoError(t, e.cart.Load(ctx))
	itemID := e.cart.Items()[0].ID

	require.NoError(t, e.cart.UpdateQuantity(ctx, itemID, 7, 50))
	assert.Equal(t, 7, e.cart.Items()[0].Quantity)
	assert.Equal(t, 7, e.cart.Count())
	assert.Equal(t, 7, e.serverQuantity(t, itemID))
}

func TestUpdateQuantityRollsBackOnServerRejection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	gaiwanID := e.addProduct(t, "Gaiwan", 75, 5)
	require.NoError(t, e.cart.Add(ctx, gaiwanID, 2))
	require.NoError(t, e.cart.Load(ctx))
	itemID := e.cart.Items()[0].ID
	e.cart.ToggleSelect(itemID)
	assert.False(t, e.cart.IsSelected(itemID))

	// The client's stock snapshot is stale: locally 8 looks fine, but
	// the server knows only 5 are left. The optimistic write is rolled
	// back by a full reload.
	err := e.cart.UpdateQuantity(ctx, itemID, 8, 10)
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))

	assert.Equal(t, 2, e.cart.Items()[0].Quantity, "rolled back to the server quantity")
	assert.Equal(t, 2, e.cart.Count())
	assert.Equal(t, 2, e.serverQuantity(t, itemID))
	assert.True(t, e.cart.IsSelected(itemID), "reload resets the selection to all")
}

func TestRemoveDeclinedKeepsItem(t *testing.T) {
	e := newEnv(t, cart.WithConfirm(func(string) bool { return false }))
	ctx := context.Background()

	teaID := e.addProduct(t, "Longjing", 128, 50)
	require.NoError(t, e.cart.Add(ctx, teaID, 1))
	require.NoError(t, e.cart.Load(ctx))
	itemID := e.cart.Items()[0].ID

	require.NoError(t, e.cart.Remove(ctx, itemID))
	assert.Len(t, e.cart.Items(), 1, "declined confirmation aborts the removal")
	assert.Equal(t, 1, e.serverQuantity(t, itemID))
}

func TestRemoveUpdatesSelection(t *testing.T) {
	e := newEnv(t, cart.WithConfirm(func(string) bool { return true }))
	ctx := context.Background()

	teaID := e.addProduct(t, "Longjing", 128, 50)
	gaiwanID := e.addProduct(t, "Gaiwan", 75, 5)
	require.NoError(t, e.cart.Add(ctx, teaID, 1))
	require.NoError(t, e.cart.Add(ctx, gaiwanID, 1))
	require.NoError(t, e.cart.Load(ctx))

	items := e.cart.Items()
	require.Len(t, items, 2)
	removedID := items[0].ID

	require.NoError(t, e.cart.Remove(ctx, removedID))

	remaining := e.cart.Items()
	require.Len(t, remaining, 1)
	assert.NotEqual(t, removedID, remaining[0].ID)
	assert.NotContains(t, e.cart.SelectedIDs(), removedID, "a removed item can never reach checkout")
	assert.Len(t, e.store.Cart(e.userID).Items, 1)
}

func TestSelection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teaID := e.addProduct(t, "Longjing", 128, 50)
	gaiwanID := e.addProduct(t, "Gaiwan", 75, 5)
	require.NoError(t, e.cart.Add(ctx, teaID, 2))
	require.NoError(t, e.cart.Add(ctx, gaiwanID, 1))
	require.NoError(t, e.cart.Load(ctx))

	items := e.cart.Items()
	require.Len(t, items, 2)

	e.cart.ToggleSelect(items[1].ID)
	assert.False(t, e.cart.IsSelected(items[1].ID))
	assert.Equal(t, []int64{items[0].ID}, e.cart.SelectedIDs())
	assert.InDelta(t, 2*128, e.cart.SelectedTotal(), 0.001)

	// All selected again, then everything off.
	e.cart.ToggleSelectAll()
	assert.Len(t, e.cart.SelectedIDs(), 2)
	e.cart.ToggleSelectAll()
	assert.Empty(t, e.cart.SelectedIDs())
	assert.Zero(t, e.cart.SelectedTotal())
}

func TestClearAndReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	teaID := e.addProduct(t, "Longjing", 128, 50)
	require.NoError(t, e.cart.Add(ctx, teaID, 2))

	require.NoError(t, e.cart.Clear(ctx))
	assert.Empty(t, e.cart.Items())
	assert.Zero(t, e.cart.Count())
	assert.Empty(t, e.store.Cart(e.userID).Items)

	require.NoError(t, e.cart.Add(ctx, teaID, 1))
	e.cart.Reset()
	assert.Zero(t, e.cart.Count(), "reset empties the mirror locally")
	assert.Len(t, e.store.Cart(e.userID).Items, 1, "reset never touches the server")
}
