package server

import (
	"context"
	"net/http"
	"time"

	"github.com/yuzvak/storefront-cart/internal/application/commands"
	"github.com/yuzvak/storefront-cart/internal/config"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/handlers"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

type Dependencies struct {
	Carts    *commands.CartHandler
	Checkout *commands.CheckoutHandler
	Checks   []handlers.DependencyCheck
}

type Server struct {
	server          *http.Server
	logger          *logger.Logger
	healthHandler   *handlers.HealthHandler
	cartHandler     *handlers.CartHandler
	checkoutHandler *handlers.CheckoutHandler
}

func NewServer(cfg config.ServerConfig, deps Dependencies, logger *logger.Logger) *Server {
	server := &http.Server{
		Addr:         cfg.Addr(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s := &Server{
		server:          server,
		logger:          logger,
		healthHandler:   handlers.NewHealthHandler(logger, deps.Checks...),
		cartHandler:     handlers.NewCartHandler(deps.Carts, logger),
		checkoutHandler: handlers.NewCheckoutHandler(deps.Checkout, logger),
	}
	server.Handler = s.Handler()

	return s
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
