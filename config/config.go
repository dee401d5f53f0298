package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// DevJWTSecret is the fallback signing key for local development only.
// Config validation refuses to start staging/production without an
// explicit JWT_SECRET, so this value never signs real tokens.
const DevJWTSecret = "local-dev-secret-do-not-use-in-prod"

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	JWTSecret  string `env:"JWT_SECRET" validate:"required_if=Env production,required_if=Env staging,omitempty,min=32"`
	CORSOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000" validate:"required,url"`

	RequestTimeoutSec int `env:"REQUEST_TIMEOUT_SEC" envDefault:"5" validate:"min=1,max=60"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Debug reports whether internal error details may be echoed in
// responses.
func (c *Config) Debug() bool {
	return c.Env == "local"
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
