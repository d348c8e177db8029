// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	Store   StoreConfig
	Redis   RedisConfig
	NATS    NATSConfig
	Shopify ShopifyConfig
	Admin   AdminConfig
	Seed    SeedConfig

	EncryptionKey string
}

type AppConfig struct {
	Env                 string
	Port                string
	CORSAllowedOrigins  []string
	WebhookMaxBodyBytes int64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// StoreConfig selects the record store; Driver is mongo or memory
type StoreConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
}

// RedisConfig enables the tenant cache when URL is set
type RedisConfig struct {
	URL       string
	TenantTTL time.Duration
}

type NATSConfig struct {
	URL      string
	Stream   string
	Consumer string
}

// ShopifyConfig configures the Admin API client and webhook verification
type ShopifyConfig struct {
	APIVersion     string
	HTTPTimeout    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	SyncPageSize   int
	// WebhookSecret verifies webhooks of tenants without their own secret
	WebhookSecret string
}

// AdminConfig holds the Basic auth credentials of the admin routes
type AdminConfig struct {
	Username string
	Password string
}

// SeedConfig describes a tenant created at startup when both fields are set
type SeedConfig struct {
	ShopDomain  string
	AccessToken string
}

// Enabled reports whether a startup tenant is configured
func (s SeedConfig) Enabled() bool {
	return s.ShopDomain != "" && s.AccessToken != ""
}

// LoadDotEnv loads .env into the environment when the file exists
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return err
	}
	return godotenv.Load()
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	r := &reader{}
	cfg := &Config{
		App: AppConfig{
			Env:                 r.str("APP_ENV", "development"),
			Port:                r.str("PORT", "4000"),
			CORSAllowedOrigins:  r.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
			WebhookMaxBodyBytes: int64(r.integer("WEBHOOK_MAX_BODY_BYTES", 5<<20)),
		},
		Log: LogConfig{
			Level:  r.str("LOG_LEVEL", "info"),
			Format: r.str("LOG_FORMAT", "json"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(r.str("STORE_DRIVER", "mongo")),
			MongoURI:      r.str("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDatabase: r.str("MONGODB_DATABASE", "shopify_ingest"),
		},
		Redis: RedisConfig{
			URL:       r.str("REDIS_URL", ""),
			TenantTTL: r.duration("TENANT_CACHE_TTL", 5*time.Minute),
		},
		NATS: NATSConfig{
			URL:      r.str("NATS_URL", "nats://localhost:4222"),
			Stream:   r.str("NATS_STREAM", "DATA_INGESTION"),
			Consumer: r.str("NATS_CONSUMER", "ingestion_worker"),
		},
		Shopify: ShopifyConfig{
			APIVersion:     r.str("SHOPIFY_API_VERSION", "2023-10"),
			HTTPTimeout:    r.duration("SHOPIFY_HTTP_TIMEOUT", 30*time.Second),
			RateLimitRPS:   r.float("SHOPIFY_RATE_LIMIT_RPS", 2),
			RateLimitBurst: r.integer("SHOPIFY_RATE_LIMIT_BURST", 4),
			SyncPageSize:   r.integer("SYNC_PAGE_SIZE", 10),
			WebhookSecret:  r.str("SHOPIFY_API_SECRET", ""),
		},
		Admin: AdminConfig{
			Username: r.str("ADMIN_USERNAME", "admin"),
			Password: r.str("ADMIN_PASSWORD", "admin123"),
		},
		Seed: SeedConfig{
			ShopDomain:  r.str("SHOP_DOMAIN", ""),
			AccessToken: r.str("SHOPIFY_ACCESS_TOKEN", ""),
		},
		EncryptionKey: r.str("ENCRYPTION_KEY", ""),
	}
	if err := cfg.validate(); err != nil {
		r.errs = append(r.errs, err)
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.EncryptionKey == "" {
		errs = append(errs, errors.New("ENCRYPTION_KEY is required"))
	}
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be mongo or memory, got %q", c.Store.Driver))
	}
	if c.Shopify.SyncPageSize <= 0 || c.Shopify.SyncPageSize > 250 {
		errs = append(errs, fmt.Errorf("SYNC_PAGE_SIZE must be between 1 and 250, got %d", c.Shopify.SyncPageSize))
	}
	if c.App.WebhookMaxBodyBytes <= 0 {
		errs = append(errs, errors.New("WEBHOOK_MAX_BODY_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// reader collects parse errors so Load reports every bad variable at once
type reader struct {
	errs []error
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (r *reader) list(key string, def []string) []string {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
