// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store driver names accepted for STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	APISecret   string
	GatewayURL  string
	StoreDriver string
	DatabaseURL string
	DBPath      string

	SessionID   string
	CountryCode string

	ReconnectDelay time.Duration
	DialRetryDelay time.Duration
	SendDelayMin   time.Duration
	SendDelayMax   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		APISecret:      getEnv("API_SECRET", ""),
		GatewayURL:     getEnv("GATEWAY_URL", ""),
		StoreDriver:    getEnv("STORE_DRIVER", DriverPostgres),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/sessions.db"),
		SessionID:      getEnv("SESSION_ID", "default"),
		CountryCode:    getEnv("COUNTRY_CODE", "55"),
		ReconnectDelay: getEnvDuration("RECONNECT_DELAY", 5*time.Second),
		DialRetryDelay: getEnvDuration("DIAL_RETRY_DELAY", 10*time.Second),
		SendDelayMin:   getEnvDuration("SEND_DELAY_MIN", 1*time.Second),
		SendDelayMax:   getEnvDuration("SEND_DELAY_MAX", 3*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.APISecret == "" {
		return fmt.Errorf("API_SECRET cannot be empty")
	}
	if c.GatewayURL == "" {
		return fmt.Errorf("GATEWAY_URL cannot be empty")
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL cannot be empty when STORE_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty when STORE_DRIVER is %q", DriverSQLite)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionID == "" {
		return fmt.Errorf("SESSION_ID cannot be empty")
	}
	if c.CountryCode == "" {
		return fmt.Errorf("COUNTRY_CODE cannot be empty")
	}
	if c.SendDelayMin <= 0 || c.SendDelayMax <= c.SendDelayMin {
		return fmt.Errorf("send delay window must satisfy 0 < SEND_DELAY_MIN < SEND_DELAY_MAX")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
