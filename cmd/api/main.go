package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/playtimeuy/payments/internal/app"
	"github.com/playtimeuy/payments/internal/config"
	paymentsHttp "github.com/playtimeuy/payments/internal/http"
	checkoutHandler "github.com/playtimeuy/payments/internal/http/checkout"
	saleHandler "github.com/playtimeuy/payments/internal/http/sale"
	webhookHandler "github.com/playtimeuy/payments/internal/http/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcs, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build services", "error", err)
		os.Exit(1)
	}
	defer svcs.Close()

	if cfg.Admin.JWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set, admin sales API disabled")
	}

	if cfg.MercadoPago.WebhookSecret == "" {
		logger.Warn("MP_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	router := paymentsHttp.New(
		paymentsHttp.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AdminSecret:    cfg.Admin.JWTSecret,
		},
		checkoutHandler.NewHandler(svcs.Checkout),
		webhookHandler.NewHandler(svcs.Webhook, cfg.MercadoPago.WebhookSecret, cfg.MercadoPago.SignatureTolerance),
		saleHandler.NewHandler(svcs.Sales),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server", "port", srv.Addr, "env", cfg.App.Env)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
