package config

import (
	"errors"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultDBPath    = "./quotedesk.db"
	defaultPort      = "8080"
	defaultEnv       = "dev"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	defaultEnvFile   = ".env"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	LogLevel      string
	LogFormat     string
	// DefaultCommissionRate pre-fills new quotes; it is still bounded by the agent maximum.
	DefaultCommissionRate decimal.Decimal
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production injects real environment variables.
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = defaultEnvFile
	}
	_ = loadDotEnv(envFile)

	cfg := Config{
		Env:           strings.ToLower(os.Getenv("APP_ENV")),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}

	cfg.DefaultCommissionRate = decimal.Zero
	if raw := strings.TrimSpace(os.Getenv("DEFAULT_COMMISSION_RATE")); raw != "" {
		if rate, err := decimal.NewFromString(raw); err == nil && !rate.IsNegative() {
			cfg.DefaultCommissionRate = rate
		}
	}

	return cfg
}

// IsDev reports whether the application runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development" || c.Env == "local"
}

// ErrMissingSessionSecret is returned by Validate outside development when no session
// signing key is configured.
var ErrMissingSessionSecret = errors.New("config: SESSION_SECRET is required outside dev")

// Validate reports configuration the server must not start with.
func (c Config) Validate() error {
	if !c.IsDev() && c.SessionSecret == "" {
		return ErrMissingSessionSecret
	}
	return nil
}

// Warnings lists configuration gaps worth logging at startup.
func (c Config) Warnings() []string {
	var warnings []string
	if c.AdminEmail == "" {
		warnings = append(warnings, "ADMIN_EMAIL is not set")
	}
	if c.AdminPassword == "" {
		warnings = append(warnings, "ADMIN_PASSWORD is not set")
	}
	if c.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set")
	}
	return warnings
}
