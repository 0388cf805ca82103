// Package config loads runtime settings for the cart binaries: defaults,
// then an optional YAML file, then environment overrides.
//
// Catalog, promotional item and threshold are not configuration; they are
// fixed in the cart domain.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`

	// RedisAddr empty means the in-memory replay cache is used.
	RedisAddr      string        `yaml:"redis_addr"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`

	// JournalPath empty disables the SQLite journal.
	JournalPath string `yaml:"journal_path"`

	Tracing TracingConfig `yaml:"tracing"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the settings used when nothing else is provided.
func Default() Config {
	return Config{
		AppEnv:         "dev",
		LogLevel:       "info",
		HTTPAddr:       ":8080",
		GRPCAddr:       ":9090",
		IdempotencyTTL: 10 * time.Minute,
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			ServiceName: "cart-api",
		},
	}
}

// Load reads path if it exists, applies env overrides and validates.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the binaries cannot start with.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: http_addr is required")
	}
	if c.GRPCAddr == "" {
		return errors.New("config: grpc_addr is required")
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("config: idempotency_ttl must be positive, got %s", c.IdempotencyTTL)
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return errors.New("config: tracing.service_name is required when tracing is enabled")
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.AppEnv, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.GRPCAddr, "GRPC_ADDR")
	setString(&c.RedisAddr, "REDIS_ADDR")
	setString(&c.JournalPath, "JOURNAL_PATH")
	setString(&c.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Tracing.ServiceName, "OTEL_SERVICE_NAME")

	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: IDEMPOTENCY_TTL: %w", err)
		}
		c.IdempotencyTTL = d
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: TRACING_ENABLED: %w", err)
		}
		c.Tracing.Enabled = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
