package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	APIURL      string
	LogLevel    string
	LogFile     string
	NATSURL     string
	MetricsAddr string
	HTTPTimeout time.Duration
}

// Load reads the client configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:      os.Getenv("TODO_API_URL"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		NATSURL:     os.Getenv("NATS_URL"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),
	}

	// Validation
	var missing []string
	if cfg.APIURL == "" {
		missing = append(missing, "TODO_API_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required env vars: %v", missing)
	}

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: want a non-negative Go duration", raw)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

type FakeAPIConfig struct {
	HTTPAddr string
	LogLevel string
}

// LoadFakeAPI reads the configuration of the local fake backend.
func LoadFakeAPI() (*FakeAPIConfig, error) {
	cfg := &FakeAPIConfig{
		HTTPAddr: os.Getenv("HTTP_ADDR"),
		LogLevel: envOr("LOG_LEVEL", "info"),
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("missing required env vars: %v", []string{"HTTP_ADDR"})
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
