// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Supported database drivers
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, cgo
)

// Config holds application configuration
type Config struct {
	DataDir     string // Directory holding the ledger database (always absolute)
	DBDriver    string
	BusyTimeout time.Duration
	Port        int
	LogLevel    string
	DevMode     bool
	CORSOrigins []string
	AccountName string
	SeedBalance decimal.Decimal
	Yahoo       YahooConfig
}

// YahooConfig holds market data client settings
type YahooConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	seed, err := decimal.NewFromString(getEnv("SEED_BALANCE", "100000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_BALANCE: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		DBDriver:    getEnv("DB_DRIVER", DriverModernc),
		BusyTimeout: time.Duration(getEnvAsInt("BUSY_TIMEOUT_MS", 5000)) * time.Millisecond,
		Port:        getEnvAsInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		AccountName: getEnv("ACCOUNT_NAME", "Default User"),
		SeedBalance: seed,
		Yahoo: YahooConfig{
			BaseURL: strings.TrimSuffix(getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"), "/"),
			Timeout: time.Duration(getEnvAsInt("YAHOO_TIMEOUT_SECONDS", 30)) * time.Second,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DBDriver != DriverModernc && c.DBDriver != DriverMattn {
		return fmt.Errorf("unsupported DB_DRIVER %q (want %q or %q)", c.DBDriver, DriverModernc, DriverMattn)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.SeedBalance.IsNegative() {
		return fmt.Errorf("SEED_BALANCE must not be negative, got %s", c.SeedBalance)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("BUSY_TIMEOUT_MS must not be negative")
	}
	if c.Yahoo.BaseURL == "" {
		return fmt.Errorf("YAHOO_BASE_URL is required")
	}
	return nil
}

// DatabasePath returns the location of the ledger database file
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "portfolio.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
