// Package devserver is an in-memory implementation of the storefront
// API contract, for local development and tests. It is not the
// production backend: nothing survives a restart.
package devserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"suju/storefront/internal/config"
)

type Server struct {
	engine *gin.Engine
	server *http.Server
	store  *Store
	cfg    config.DevServerConfig
	log    zerolog.Logger
}

func New(cfg config.DevServerConfig, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	store := NewStore()
	if cfg.Seed {
		Seed(store)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = true

	engine.Use(
		requestID(),
		requestLogger(log),
		recovery(log),
		cors(),
	)

	s := &Server{
		engine: engine,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Store exposes the backing state for tests that need to arrange
// fixtures directly (e.g. an admin shipping an order).
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the routed engine, for mounting on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)

	private := v1.Group("")
	private.Use(auth(s.cfg.JWTSecret, s.store))
	{
		private.GET("/users/me", s.handleMe)
		private.PUT("/users/me", s.handleUpdateMe)
		private.PUT("/users/me/password", s.handleChangePassword)

		private.GET("/users/addresses", s.handleListAddresses)
		private.POST("/users/addresses", s.handleCreateAddress)
		private.PUT("/users/addresses/:id", s.handleUpdateAddress)
		private.DELETE("/users/addresses/:id", s.handleDeleteAddress)

		private.GET("/cart", s.handleGetCart)
		private.POST("/cart", s.handleAddCartItem)
		private.PUT("/cart/:id", s.handleUpdateCartItem)
		private.DELETE("/cart/:id", s.handleRemoveCartItem)
		private.DELETE("/cart", s.handleClearCart)

		private.POST("/orders", s.handleCreateOrder)
		private.GET("/orders", s.handleListOrders)
		private.GET("/orders/:id", s.handleGetOrder)
		private.PUT("/orders/:id/pay", s.handlePayOrder)
		private.PUT("/orders/:id/cancel", s.handleCancelOrder)
		private.PUT("/orders/:id/confirm", s.handleConfirmOrder)
		private.PUT("/orders/:id/refund", s.handleRequestRefund)

		private.GET("/notifications", s.handleListNotifications)
		private.GET("/notifications/unread-count", s.handleUnreadCount)
		private.PUT("/notifications/:id/read", s.handleMarkRead)
		private.PUT("/notifications/read-all", s.handleMarkAllRead)

		private.POST("/favorites/:productId", s.handleToggleFavorite)
		private.GET("/favorites", s.handleListFavorites)
		private.GET("/favorites/:productId/check", s.handleCheckFavorite)

		private.POST("/products/:id/reviews", s.handleCreateReview)
	}

	admin := v1.Group("/admin")
	admin.Use(auth(s.cfg.JWTSecret, s.store), requireAdmin())
	{
		admin.PUT("/orders/:id/ship", s.handleShipOrder)
		admin.GET("/refunds", s.handleListRefunds)
		admin.PUT("/refunds/:id/approve", s.handleApproveRefund)
		admin.PUT("/refunds/:id/reject", s.handleRejectRefund)
	}

	v1.GET("/products", s.handleListProducts)
	v1.GET("/products/:id", s.handleGetProduct)
	v1.GET("/products/:id/related", s.handleRelatedProducts)
	v1.GET("/products/:id/reviews", s.handleListReviews)
	v1.GET("/categories", s.handleListCategories)
	v1.GET("/categories/:id", s.handleGetCategory)
}

func (s *Server) Start() error {
	s.log.Info().
		Str("addr", s.server.Addr).
		Msg("dev server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("dev server shutting down")
	return s.server.Shutdown(ctx)
}
