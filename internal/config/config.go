package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string `env:"ENV" envDefault:"development"` // "development", "production", etc.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3000"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// Database. DatabaseURL wins over the GG_DB_* parts when both are set.
	DatabaseURL      string        `env:"DATABASE_URL"`
	DBHost           string        `env:"GG_DB_HOST"`
	DBUser           string        `env:"GG_DB_UN"`
	DBPassword       string        `env:"GG_DB_PW"`
	DBName           string        `env:"GG_DB_NAME" envDefault:"giphygetter"`
	DBConnectBackoff time.Duration `env:"DB_CONNECT_BACKOFF" envDefault:"1s"`

	// Giphy
	GiphyAPIKey    string        `env:"GIPHY_API_KEY"`
	GiphyBaseURL   string        `env:"GIPHY_BASE_URL" envDefault:"https://api.giphy.com"`
	GiphyImageSize string        `env:"GIPHY_IMAGE_SIZE" envDefault:"fixed_height"`
	GiphyTimeout   time.Duration `env:"GIPHY_TIMEOUT" envDefault:"5s"`

	// Delivery
	TempDir           string        `env:"TEMP_DIR" envDefault:"/var/tmp/"`
	GifMaxBytes       int64         `env:"GIF_MAX_BYTES" envDefault:"20971520"`
	TempMaxAge        time.Duration `env:"TEMP_MAX_AGE" envDefault:"10m"`
	TempSweepInterval time.Duration `env:"TEMP_SWEEP_INTERVAL" envDefault:"5m"`

	// Slack app
	SlackClientID      string `env:"GG_CLIENT_ID"`
	SlackClientSecret  string `env:"GG_CLIENT_SECRET"`
	SlackRedirectURI   string `env:"GG_REDIRECT_URI"`
	SlackSigningSecret string `env:"SLACK_SIGNING_SECRET"`

	// Session
	SessionSecret string `env:"SESSION_SECRET" envDefault:"change-me-in-production-min-32-chars"` // Used for signing cookies (min 32 chars)

	// Shared storage for rate limiting and sessions, e.g. "redis://localhost:6379/0"
	RedisURL     string `env:"REDIS_URL"`
	RateLimitMax int    `env:"RATE_LIMIT_MAX" envDefault:"100"` // requests per minute per IP

	// TLS
	TLSEnabled  bool   `env:"TLS_ENABLED"`
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
}

// Load reads .env (if present) and parses environment variables into Config.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// DatabaseDSN returns the Postgres connection string, or "" when no database
// is configured.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBHost == "" {
		return ""
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     c.DBHost,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	if c.DBUser != "" {
		if c.DBPassword != "" {
			u.User = url.UserPassword(c.DBUser, c.DBPassword)
		} else {
			u.User = url.User(c.DBUser)
		}
	}
	return u.String()
}

// IsOAuthEnabled returns true if the Slack install flow is configured.
func (c *Config) IsOAuthEnabled() bool {
	return c.SlackClientID != "" && c.SlackClientSecret != ""
}

// IsRedisEnabled returns true if shared Redis storage is configured.
func (c *Config) IsRedisEnabled() bool {
	return c.RedisURL != ""
}
