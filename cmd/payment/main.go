package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swiftmart/internal/client"
	"swiftmart/internal/config"
	"swiftmart/internal/database"
	"swiftmart/internal/middleware"
	"swiftmart/internal/payment"

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
	logger.Info().Msg("starting payment service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	repo := payment.NewRepository(pool, logger)
	gateway := payment.NewMockGateway()
	service := payment.NewService(repo, gateway, logger)
	handler := payment.NewHandler(service, logger)

	orders := client.NewOrderClient(cfg.Services.OrderURL, clientTimeout, cfg.Auth.InternalAPIKey, logger)
	worker := payment.NewOutboxWorker(repo, orders, cfg.Outbox, logger)
	go worker.Run(ctx)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS)

	router.Route("/api/payments", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.Auth.JWTSecret, logger))

		r.Post("/intent", handler.CreateIntent)
		r.Post("/finalize", handler.Finalize)
		r.Get("/order/{orderId}", handler.ListByOrder)
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

		// Stop the outbox worker before draining in-flight requests.
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
