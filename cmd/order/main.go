package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swiftmart/internal/cache"
	"swiftmart/internal/client"
	"swiftmart/internal/config"
	"swiftmart/internal/database"
	"swiftmart/internal/middleware"
	"swiftmart/internal/order"

	"github.com/go-chi/chi/v5"
)

const clientTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting order service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	productCache := cache.Cache(cache.Noop{})
	if cfg.Redis.Enabled {
		productCache = cache.NewRedisCache(cfg.Redis.Addr, "order", logger)
	}
	defer productCache.Close()

	products := client.NewProductClient(cfg.Services.ProductCatalogURL, clientTimeout, productCache, cfg.Redis.TTL, logger)
	promotions := client.NewPromotionsClient(cfg.Services.PromotionsURL, clientTimeout, cfg.Auth.InternalAPIKey, logger)
	inventory := client.NewInventoryClient(cfg.Services.InventoryURL, clientTimeout, cfg.Auth.InternalAPIKey, logger)
	notifier := client.NewNotificationClient(cfg.Services.NotificationURL, clientTimeout, cfg.Auth.InternalAPIKey, logger)

	repo := order.NewRepository(pool, logger)
	service := order.NewService(repo, products, promotions, inventory, notifier, logger)
	handler := order.NewHandler(service, logger)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS)

	router.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.Auth.JWTSecret, logger))

			r.Get("/cart", handler.GetCart)
			r.Post("/cart/items", handler.AddItem)
			r.Put("/cart/item", handler.UpdateItem)
			r.Delete("/cart/item/{productId}", handler.RemoveItem)
			r.Post("/cart/coupon", handler.ApplyCoupon)
			r.Post("/create-pending", handler.CreatePending)
			r.Post("/place", handler.Place)
			r.Get("/", handler.History)
			r.Get("/pending/batch", handler.BatchCandidates)
			r.Post("/batch/route", handler.BatchRoute)
			r.Get("/{orderId}", handler.Details)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.Auth.JWTSecret, logger))
			r.Use(middleware.RequireAdmin(logger))

			r.Get("/admin/all", handler.AdminList)
			r.Put("/admin/{orderId}/status", handler.UpdateStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.InternalAuth(cfg.Auth.InternalAPIKey, logger))

			r.Put("/internal/status/{orderId}", handler.UpdateStatus)
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received, starting graceful shutdown")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
