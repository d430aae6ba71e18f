package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Profiles
	DefaultProfile string
	SnapshotsKept  int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Export
	ExportDir           string
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	SweepInterval time.Duration

	// Cache
	TotalsCacheSize int
	TotalsCacheTTL  time.Duration

	// Rate limiting of mutating requests, per client IP
	MutationRateLimit  int
	MutationRateWindow time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/pockets.db"),

		DefaultProfile: getEnv("DEFAULT_PROFILE", "default"),
		SnapshotsKept:  getEnvInt("SNAPSHOTS_KEPT", 50),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pockets"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "snapshot_exports"),

		ExportDir:           getEnv("EXPORT_DIR", "./data/exports"),
		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", ""),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Minute),

		TotalsCacheSize: getEnvInt("TOTALS_CACHE_SIZE", 128),
		TotalsCacheTTL:  getEnvDuration("TOTALS_CACHE_TTL", 5*time.Minute),

		MutationRateLimit:  getEnvInt("MUTATION_RATE_LIMIT", 60),
		MutationRateWindow: getEnvDuration("MUTATION_RATE_WINDOW", time.Minute),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate SQLite configuration
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DefaultProfile == "" {
		errors = append(errors, "default profile name cannot be empty")
	}

	if c.SnapshotsKept < 1 {
		errors = append(errors, fmt.Sprintf("invalid snapshots kept %d: must be at least 1", c.SnapshotsKept))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ExportDir == "" {
		errors = append(errors, "export directory cannot be empty")
	}

	// The spreadsheet writer is optional; the sheets client defaults the
	// sheet name and checks credentials itself.

	// Validate worker configuration
	if c.SweepInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sweep interval %v: must be at least 1 second", c.SweepInterval))
	} else if c.SweepInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sweep interval %v: must be at most 24 hours", c.SweepInterval))
	}

	// Validate cache configuration
	if c.TotalsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid totals cache size %d: must be at least 1", c.TotalsCacheSize))
	}
	if c.TotalsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid totals cache TTL %v: must be at least 1 second", c.TotalsCacheTTL))
	}

	// Validate rate limiting
	if c.MutationRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid mutation rate limit %d: must be at least 1", c.MutationRateLimit))
	}
	if c.MutationRateWindow < time.Second {
		errors = append(errors, fmt.Sprintf("invalid mutation rate window %v: must be at least 1 second", c.MutationRateWindow))
	} else if c.MutationRateWindow > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mutation rate window %v: must be at most 1 hour", c.MutationRateWindow))
	}

	// Return combined errors
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
