package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"PlayTimeUY"`
		Env  string `envconfig:"APP_ENV" default:"development"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"playtimeuy"`
	}

	SalesStore string `envconfig:"SALES_STORE" default:"postgres"`

	MercadoPago struct {
		AccessToken     string        `envconfig:"MP_ACCESS_TOKEN" required:"true"`
		PublicKey       string        `envconfig:"MP_PUBLIC_KEY"`
		BaseURL         string        `envconfig:"MP_BASE_URL" default:"https://api.mercadopago.com"`
		Timeout         time.Duration `envconfig:"MP_TIMEOUT" default:"15s"`
		NotificationURL string        `envconfig:"MP_NOTIFICATION_URL"`
		WebhookSecret   string        `envconfig:"MP_WEBHOOK_SECRET"`
		// SignatureTolerance bounds the age of the x-signature ts; 0 disables the check.
		SignatureTolerance time.Duration `envconfig:"MP_SIGNATURE_TOLERANCE" default:"10m"`
	}

	Checkout struct {
		SiteURL  string `envconfig:"SITE_URL" default:"http://localhost:5173"`
		Currency string `envconfig:"CHECKOUT_CURRENCY" default:"UYU"`
		Title    string `envconfig:"CHECKOUT_TITLE" default:"Suscripción mensual PlayTimeUY"`
	}

	Commission struct {
		ReferralPolicy string          `envconfig:"COMMISSION_POLICY_REFERRAL" default:"flat"`
		CreatorPolicy  string          `envconfig:"COMMISSION_POLICY_CREATOR" default:"percentage"`
		BasePrice      decimal.Decimal `envconfig:"BASE_PRICE" default:"750"`
		PlatformShare  decimal.Decimal `envconfig:"PLATFORM_SHARE" default:"0.20"`
	}

	Webhook struct {
		StickyTerminal bool          `envconfig:"WEBHOOK_STICKY_TERMINAL" default:"true"`
		RedisURL       string        `envconfig:"REDIS_URL"`
		DedupTTL       time.Duration `envconfig:"WEBHOOK_DEDUP_TTL" default:"24h"`
	}

	Admin struct {
		JWTSecret string `envconfig:"ADMIN_JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MercadoPago.AccessToken == "" {
		return errors.New("MP_ACCESS_TOKEN is required")
	}

	switch c.SalesStore {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("invalid SALES_STORE %q", c.SalesStore)
	}

	for env, policy := range map[string]string{
		"COMMISSION_POLICY_REFERRAL": c.Commission.ReferralPolicy,
		"COMMISSION_POLICY_CREATOR":  c.Commission.CreatorPolicy,
	} {
		if policy != "flat" && policy != "percentage" {
			return fmt.Errorf("invalid %s %q", env, policy)
		}
	}

	if !c.Commission.BasePrice.IsPositive() {
		return errors.New("BASE_PRICE must be positive")
	}

	return nil
}
