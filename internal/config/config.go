package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultGRPCAddr = ":8080"
	defaultAPIToken = "dev-token"
)

// Config holds the server configuration read from the environment
type Config struct {
	GRPCAddr string
	APIToken string

	// Database
	DBConnStr     string
	RunMigrations bool

	// Projection cache
	CacheSize int
	CacheTTL  time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Optional YAML file replacing the embedded tax-year defaults
	TaxYearsFile string
}

// Load reads configuration from a .env file (if present) and the environment
func Load() *Config {
	// Missing .env is fine: containers pass plain env vars
	_ = godotenv.Load()

	return &Config{
		GRPCAddr:      getEnv("GRPC_ADDR", defaultGRPCAddr),
		APIToken:      getEnv("API_TOKEN", defaultAPIToken),
		DBConnStr:     dbConnStr(),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		CacheSize:     getEnvInt("CACHE_SIZE", 256),
		CacheTTL:      getEnvDuration("CACHE_TTL", 10*time.Minute),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		TaxYearsFile:  getEnv("TAX_YEARS_FILE", ""),
	}
}

// dbConnStr prefers DB_CONN_STR and otherwise builds a DSN from the individual DB_* vars
func dbConnStr() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "wealthflow"),
	)
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var errors []string

	if _, port, err := net.SplitHostPort(c.GRPCAddr); err != nil {
		errors = append(errors, fmt.Sprintf("invalid grpc address '%s': must be host:port", c.GRPCAddr))
	} else if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		errors = append(errors, fmt.Sprintf("invalid grpc port '%s': must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.APIToken) == "" {
		errors = append(errors, "API token is required")
	}

	if strings.TrimSpace(c.DBConnStr) == "" {
		errors = append(errors, "database connection string is required")
	}

	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be zero (disabled) or positive", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache ttl %v: must be at least 1 second", c.CacheTTL))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.TaxYearsFile != "" {
		if _, err := os.Stat(c.TaxYearsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("tax years file does not exist: %s", c.TaxYearsFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
