package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/stylehub/storefront/internal/bootstrap"
	"github.com/stylehub/storefront/internal/config"
	"github.com/stylehub/storefront/internal/es"
	"github.com/stylehub/storefront/internal/handlers"
	"github.com/stylehub/storefront/internal/logging"
	"github.com/stylehub/storefront/internal/middleware/csrf"
	"github.com/stylehub/storefront/internal/mykafka"
	"github.com/stylehub/storefront/internal/payment"
	"github.com/stylehub/storefront/internal/service/search"
	"github.com/stylehub/storefront/internal/service/token"
	"github.com/stylehub/storefront/internal/storage"
	httpserver "github.com/stylehub/storefront/internal/transport/http"
	"github.com/stylehub/storefront/internal/validate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	// The in-memory store is the default; a DSN switches to the relational
	// backend.
	var store storage.Store
	if cfg.DatabaseDSN != "" {
		db, err := storage.OpenDB(cfg.DatabaseDSN)
		if err != nil {
			logger.Error("database init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		store = storage.NewGormStore(db)
		logger.Info("using relational store")
	} else {
		store = storage.NewMemoryStore()
		logger.Info("using in-memory store")
	}

	var producer mykafka.Publisher = mykafka.Noop{}
	if cfg.KafkaAddress != "" {
		p, err := mykafka.NewProducer([]string{cfg.KafkaAddress})
		if err != nil {
			logger.Error("kafka init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		producer = p
	}

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			logger.Error("elasticsearch init failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		searchSvc = search.New(esClient, cfg.ESIndex)
	}

	var provider payment.Provider
	if cfg.StripeKey != "" {
		provider = payment.NewStripe(cfg.StripeKey)
	}

	ctx := logging.IntoContext(context.Background(), logger)
	if err := bootstrap.Seed(ctx, store, logger); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens := &token.Service{
		Store:         store,
		JWTSecret:     []byte(cfg.JWTSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(csrf.Middleware(csrf.Config{
		SkipPaths: []string{"/health/live", "/health/ready"},
	}))
	e.Validator = validate.New()

	deps := httpserver.Deps{
		Auth:     &handlers.AuthHandler{Store: store, Tokens: tokens, Producer: producer},
		Product:  &handlers.ProductHandler{Store: store, Producer: producer, Search: searchSvc},
		Category: &handlers.CategoryHandler{Store: store},
		Cart:     &handlers.CartHandler{Store: store, Producer: producer},
		Order:    &handlers.OrderHandler{Store: store, Producer: producer},
		Admin:    &handlers.AdminHandler{Store: store},
		Payment:  &handlers.PaymentHandler{Provider: provider},
		Search:   &handlers.SearchHandler{Search: searchSvc},
		Tokens:   tokens,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", slog.String("error", err.Error()))
	}

	logger.Info("shutdown complete")
}
