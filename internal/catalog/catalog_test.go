package catalog_test

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
	"suju/storefront/internal/catalog"
	"suju/storefront/internal/config"
	"suju/storefront/internal/credentials"
	"suju/storefront/internal/devserver"
	"suju/storefront/internal/log"
	"suju/storefront/internal/models"
	"suju/storefront/internal/session"
)

type env struct {
	catalog *catalog.Service
	client  *api.Client
	store   *devserver.Store
	creds   *credentials.Store
}

// newEnv runs a seeded dev server: four published products over two
// categories.
func newEnv(t *testing.T) *env {
	t.Helper()
	logger := log.NewWithOutput("test", io.Discard)

	backend := devserver.New(config.DevServerConfig{JWTSecret: "test-secret", JWTTTL: time.Hour, Seed: true}, logger)
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	creds, err := credentials.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { creds.Close() })

	client := api.New(config.APIConfig{BaseURL: server.URL + "/v1", Timeout: 5 * time.Second}, creds, logger)

	return &env{
		catalog: catalog.NewService(client),
		client:  client,
		store:   backend.Store(),
		creds:   creds,
	}
}

func TestProductsBrowseWithoutSession(t *testing.T) {
	e := newEnv(t)

	page, err := e.catalog.Products(context.Background(), catalog.ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, page.List, 4)
	assert.Equal(t, 4, page.Pagination.Total)
}

func TestProductsKeywordFilter(t *testing.T) {
	e := newEnv(t)

	page, err := e.catalog.Products(context.Background(), catalog.ProductQuery{Keyword: "longjing"})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "West Lake Longjing", page.List[0].Name)
}

func TestProductsPriceRangeAndSort(t *testing.T) {
	e := newEnv(t)

	page, err := e.catalog.Products(context.Background(), catalog.ProductQuery{
		MinPrice: 80,
		MaxPrice: 250,
		SortBy:   "price_asc",
	})
	require.NoError(t, err)
	require.NotEmpty(t, page.List)
	for i := 1; i < len(page.List); i++ {
		assert.LessOrEqual(t, page.List[i-1].Price, page.List[i].Price)
	}
	for _, p := range page.List {
		assert.GreaterOrEqual(t, p.Price, 80.0)
		assert.LessOrEqual(t, p.Price, 250.0)
	}
}

func TestProductsCategoryFilter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	categories, err := e.catalog.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)

	page, err := e.catalog.Products(ctx, catalog.ProductQuery{CategoryID: categories[0].ID})
	require.NoError(t, err)
	require.NotEmpty(t, page.List)
	for _, p := range page.List {
		require.NotNil(t, p.Category)
		assert.Equal(t, categories[0].ID, p.Category.ID)
	}
}

func TestProductDetailCountsViews(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	page, err := e.catalog.Products(ctx, catalog.ProductQuery{Keyword: "gaiwan"})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	id := page.List[0].ID

	first, err := e.catalog.Product(ctx, id)
	require.NoError(t, err)
	second, err := e.catalog.Product(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ViewCount+1, second.ViewCount)
	assert.NotEmpty(t, second.Description)
}

func TestRelatedStaysInCategory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	page, err := e.catalog.Products(ctx, catalog.ProductQuery{Keyword: "longjing"})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	base := page.List[0]

	related, err := e.catalog.Related(ctx, base.ID, 4)
	require.NoError(t, err)
	require.NotEmpty(t, related)
	for _, p := range related {
		assert.NotEqual(t, base.ID, p.ID)
		require.NotNil(t, p.Category)
		assert.Equal(t, base.Category.ID, p.Category.ID)
	}
}

func TestReviewsRequireCompletedOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	manager := session.NewManager(e.client, e.creds, log.NewWithOutput("test", io.Discard))
	result, err := manager.Register(ctx, session.RegisterInput{
		Username:        "reviewer",
		Email:           "reviewer@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		AcceptTerms:     true,
	})
	require.NoError(t, err)
	userID := result.User.ID

	page, err := e.catalog.Products(ctx, catalog.ProductQuery{Keyword: "longjing"})
	require.NoError(t, err)
	productID := page.List[0].ID

	address := e.store.CreateAddress(userID, models.Address{RecipientName: "R", Phone: "1", DetailAddress: "x"})
	serverCart, err := e.store.AddCartItem(userID, productID, 1)
	require.NoError(t, err)
	order, err := e.store.CreateOrder(userID, []int64{serverCart.Items[0].ID}, address.ID, "alipay", "")
	require.NoError(t, err)

	// Not yet completed: the review is rejected.
	_, err = e.catalog.CreateReview(ctx, productID, catalog.CreateReviewInput{
		OrderID: order.ID, Rating: 5, Content: "lovely",
	})
	require.Error(t, err)
	assert.True(t, api.IsRejected(err))

	require.NoError(t, e.store.PayOrder(userID, order.ID))
	require.NoError(t, e.store.ShipOrder(order.ID))
	require.NoError(t, e.store.ConfirmOrder(userID, order.ID))

	review, err := e.catalog.CreateReview(ctx, productID, catalog.CreateReviewInput{
		OrderID: order.ID, Rating: 5, Content: "lovely",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "reviewer", review.User.Username)

	reviews, err := e.catalog.ProductReviews(ctx, productID, catalog.ReviewQuery{})
	require.NoError(t, err)
	require.Len(t, reviews.List, 1)
	assert.Equal(t, "lovely", reviews.List[0].Content)
}
