package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const defaultGatewaySecret = "change-me-gateway-secret"

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Unset or empty keeps submissions out of the database entirely.
	DatabaseURL string `env:"DATABASE_URL"`

	// Empty GatewayURL logs submissions instead of posting them. Several
	// comma separated receivers each get every submission.
	GatewayURL       string        `env:"GATEWAY_URL"`
	GatewaySecret    string        `env:"GATEWAY_SECRET" envDefault:"change-me-gateway-secret"`
	GatewayTimeout   time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	GatewayQueueSize int           `env:"GATEWAY_QUEUE_SIZE" envDefault:"64"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	InternalToken  string        `env:"INTERNAL_TOKEN"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file, then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be > 0")
	}
	if cfg.GatewayQueueSize <= 0 {
		return fmt.Errorf("GATEWAY_QUEUE_SIZE must be > 0")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	for _, raw := range cfg.GatewayURLs() {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("GATEWAY_URL must be an absolute http(s) URL: %q", raw)
		}
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if f := strings.ToLower(cfg.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}

	if cfg.IsProdLike() {
		if len(cfg.GatewayURLs()) == 0 {
			return fmt.Errorf("in prod/release GATEWAY_URL must be set")
		}
		if isEmptyOrDefault(cfg.GatewaySecret, defaultGatewaySecret) {
			return fmt.Errorf("in prod/release GATEWAY_SECRET must be set and not default")
		}
		if strings.TrimSpace(cfg.InternalToken) == "" {
			return fmt.Errorf("in prod/release INTERNAL_TOKEN must be set")
		}
	}

	return nil
}

// GatewayURLs splits GATEWAY_URL into its receivers.
func (c *Config) GatewayURLs() []string {
	return lo.Compact(lo.Map(strings.Split(c.GatewayURL, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c *Config) ConfigureLogging() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if strings.ToLower(c.LogFormat) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.WithFields(log.Fields{
		"env":      c.AppEnv,
		"addr":     c.HTTPAddr,
		"outbox":   c.DatabaseURL != "",
		"gateways": len(c.GatewayURLs()),
	}).Info("configuration loaded")
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
