package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string        `env:"APP_NAME" envDefault:"PictoCat"`
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RedisURL       string        `env:"REDIS_URL"`
	ShutdownPeriod time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// JWTSecret verifies bearer tokens issued by the identity provider.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	// WebhookSecret verifies signup webhooks. Empty disables verification.
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	// TokenTTL is the lifetime of tokens minted by cmd/devtoken.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	CatalogCacheTTL     time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"1h"`
	StarterImageCount   int           `env:"STARTER_IMAGE_COUNT" envDefault:"8"`
	SaveRateLimitPerMin int           `env:"SAVE_RATE_LIMIT_PER_MIN" envDefault:"120"`
	// SeedCatalog defaults to true in development.
	SeedCatalog *bool `env:"SEED_CATALOG"`
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	// whole-second overrides kept for existing deployments
	for key, target := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT_SECONDS": &cfg.ShutdownPeriod,
		"IDEMPOTENCY_TTL_SECONDS":  &cfg.IdempotencyTTL,
	} {
		if v := os.Getenv(key); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			*target = time.Duration(seconds) * time.Second
		}
	}

	if cfg.StarterImageCount < 0 {
		return Config{}, fmt.Errorf("STARTER_IMAGE_COUNT must not be negative")
	}
	if cfg.SeedCatalog == nil {
		seed := cfg.IsDev()
		cfg.SeedCatalog = &seed
	}

	// development falls back to in-memory stores
	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set")
		}
	}

	return cfg, nil
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// ShouldSeedCatalog reports whether the master catalog is inserted at startup.
func (c Config) ShouldSeedCatalog() bool {
	return c.SeedCatalog != nil && *c.SeedCatalog
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}
