// Package app wires the services shared by the API server and the sales console.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/playtimeuy/payments/internal/checkout"
	"github.com/playtimeuy/payments/internal/config"
	"github.com/playtimeuy/payments/internal/database"
	"github.com/playtimeuy/payments/internal/export"
	"github.com/playtimeuy/payments/internal/mercadopago"
	"github.com/playtimeuy/payments/internal/sale"
	"github.com/playtimeuy/payments/internal/sale/store"
	"github.com/playtimeuy/payments/internal/webhook"
)

type Services struct {
	Sales    *sale.Service
	Checkout *checkout.Service
	Webhook  *webhook.Service
	Export   *export.Service

	closers []func() error
}

// Close releases the database, Redis and HTTP clients.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("failed to close resource", "error", err)
		}
	}
}

func NewLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("app", cfg.App.Name)
}

func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	svcs := &Services{}

	repo, err := svcs.salesRepository(ctx, cfg)
	if err != nil {
		svcs.Close()
		return nil, err
	}

	referral, err := sale.NewSplitPolicy(cfg.Commission.ReferralPolicy, cfg.Commission.BasePrice, cfg.Commission.PlatformShare)
	if err != nil {
		svcs.Close()
		return nil, fmt.Errorf("configuring referral commission policy: %w", err)
	}

	creator, err := sale.NewSplitPolicy(cfg.Commission.CreatorPolicy, cfg.Commission.BasePrice, cfg.Commission.PlatformShare)
	if err != nil {
		svcs.Close()
		return nil, fmt.Errorf("configuring creator commission policy: %w", err)
	}

	mp, err := mercadopago.NewClient(mercadopago.Config{
		AccessToken: cfg.MercadoPago.AccessToken,
		BaseURL:     cfg.MercadoPago.BaseURL,
		Timeout:     cfg.MercadoPago.Timeout,
	})
	if err != nil {
		svcs.Close()
		return nil, fmt.Errorf("creating mercadopago client: %w", err)
	}

	svcs.closers = append(svcs.closers, mp.Close)

	dedup, err := svcs.deduper(ctx, cfg)
	if err != nil {
		svcs.Close()
		return nil, err
	}

	svcs.Sales = sale.NewService(repo, sale.Options{StickyTerminal: cfg.Webhook.StickyTerminal})
	svcs.Checkout = checkout.NewService(svcs.Sales, mp, checkout.Config{
		ReferralPolicy:  referral,
		CreatorPolicy:   creator,
		BasePrice:       cfg.Commission.BasePrice,
		Currency:        cfg.Checkout.Currency,
		DefaultTitle:    cfg.Checkout.Title,
		SiteURL:         cfg.Checkout.SiteURL,
		NotificationURL: cfg.MercadoPago.NotificationURL,
		PublicKey:       cfg.MercadoPago.PublicKey,
	}, logger)
	svcs.Webhook = webhook.NewService(svcs.Sales, mp, dedup, logger)
	svcs.Export = export.NewService(svcs.Sales)

	logger.Info("services ready",
		"sales_store", cfg.SalesStore,
		"referral_policy", referral.Name(),
		"creator_policy", creator.Name(),
		"sticky_terminal", cfg.Webhook.StickyTerminal,
		"dedup", cfg.Webhook.RedisURL != "",
	)

	return svcs, nil
}

func (s *Services) salesRepository(ctx context.Context, cfg *config.Config) (sale.Repository, error) {
	if cfg.SalesStore == config.StoreMemory {
		return store.NewMemory(), nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s.closers = append(s.closers, db.Close)

	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}

	return store.New(db), nil
}

func (s *Services) deduper(ctx context.Context, cfg *config.Config) (webhook.Deduper, error) {
	if cfg.Webhook.RedisURL == "" {
		return webhook.NopDeduper{}, nil
	}

	opts, err := redis.ParseURL(cfg.Webhook.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	s.closers = append(s.closers, client.Close)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return webhook.NewRedisDeduper(client, cfg.Webhook.DedupTTL), nil
}
