// Package config loads server configuration with viper: environment
// variables take precedence, an optional .env file fills the rest, and the
// file is watched so long-running processes pick up edits without a
// restart.
package config

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	Debug      bool   `mapstructure:"DEBUG"`

	DBPath    string `mapstructure:"DB_PATH"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	// TokenKey must be exactly 32 bytes (PASETO symmetric key).
	TokenKey      string        `mapstructure:"TOKEN_KEY"`
	TokenDuration time.Duration `mapstructure:"TOKEN_DURATION"`

	// IdentityTokeninfoURL is the external identity provider's tokeninfo
	// endpoint used by the sync-user flow.
	IdentityTokeninfoURL string `mapstructure:"IDENTITY_TOKENINFO_URL"`

	StripeAPIBase      string `mapstructure:"STRIPE_API_BASE"`
	StripeSecretKey    string `mapstructure:"STRIPE_SECRET_KEY"`
	CheckoutSuccessURL string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string `mapstructure:"CHECKOUT_CANCEL_URL"`

	// AdminReadOnly disables catalog mutations, for demo deployments.
	AdminReadOnly bool `mapstructure:"ADMIN_READ_ONLY"`

	// AdminEmail/AdminPassword seed an admin account on startup when both
	// are set and the account does not exist yet.
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	OTELEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELEnvironment string `mapstructure:"OTEL_ENVIRONMENT"`
	ServiceName     string `mapstructure:"SERVICE_NAME"`
}

var (
	mu      sync.RWMutex
	current *Config
)

// Load reads configuration once and registers the file watcher. envFile may
// be empty, in which case only environment variables and defaults apply.
func Load(envFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_PATH", "./data/storefront.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("TOKEN_DURATION", 24*time.Hour)
	v.SetDefault("IDENTITY_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo")
	v.SetDefault("STRIPE_API_BASE", "https://api.stripe.com")
	v.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/payment-success?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cart")
	v.SetDefault("ADMIN_READ_ONLY", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_ENVIRONMENT", "local")
	v.SetDefault("SERVICE_NAME", "storefront")

	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", envFile, err)
		}
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			cf := &Config{}
			if err := v.Unmarshal(cf); err != nil {
				slog.Error("config reload failed", "file", e.Name, "error", err)
				return
			}
			mu.Lock()
			current = cf
			mu.Unlock()
			slog.Info("config reloaded", "file", e.Name)
		})
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	mu.Lock()
	current = cf
	mu.Unlock()
	return cf, nil
}

// Current returns the most recently loaded configuration. Valid only after
// a successful Load.
func Current() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
