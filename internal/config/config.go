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

	// Transaction source selection
	DataSource string

	// Auth
	JWTSecret string

	// Pluggy open-banking API
	PluggyClientID     string
	PluggyClientSecret string
	PluggyItemID       string
	PluggyBaseURL      string

	// Market quotes
	BrapiToken string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// Category rules
	RulesetPath string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Quote cache
	QuoteCacheTTL time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/financehub.db"),

		DataSource: getEnv("DATA_SOURCE", "sqlite"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		PluggyClientID:     getEnv("PLUGGY_CLIENT_ID", ""),
		PluggyClientSecret: getEnv("PLUGGY_CLIENT_SECRET", ""),
		PluggyItemID:       getEnv("PLUGGY_ITEM_ID", ""),
		PluggyBaseURL:      getEnv("PLUGGY_BASE_URL", "https://api.pluggy.ai"),

		BrapiToken: getEnv("BRAPI_TOKEN", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "financehub"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_transactions"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		RulesetPath: getEnv("CATEGORY_RULESET_PATH", ""),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 50),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		QuoteCacheTTL: getEnvDuration("QUOTE_CACHE_TTL", 5*time.Minute),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET must be set")
	} else if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 bytes")
	}

	validSources := []string{"sqlite", "pluggy"}
	isValidSource := false
	for _, source := range validSources {
		if c.DataSource == source {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, validSources))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.DataSource == "pluggy" {
		if c.PluggyClientID == "" {
			errors = append(errors, "PLUGGY_CLIENT_ID is required when using the pluggy data source")
		}
		if c.PluggyClientSecret == "" {
			errors = append(errors, "PLUGGY_CLIENT_SECRET is required when using the pluggy data source")
		}
		if c.PluggyItemID == "" {
			errors = append(errors, "PLUGGY_ITEM_ID is required when using the pluggy data source")
		}
		if parsedURL, err := url.Parse(c.PluggyBaseURL); err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid Pluggy base URL '%s'", c.PluggyBaseURL))
		}
	}

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

		// The export worker only makes sense with a spreadsheet target.
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when AMQP export is enabled")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when AMQP export is enabled")
		}
		hasCredsFile := c.GoogleCredentialsFile != ""
		hasCredsJSON := c.GoogleCredentialsJSON != ""
		if !hasCredsFile && !hasCredsJSON {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided when AMQP export is enabled")
		}
		if hasCredsFile {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.RulesetPath != "" {
		if _, err := os.Stat(c.RulesetPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("category ruleset file does not exist: %s", c.RulesetPath))
		}
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.QuoteCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid quote cache TTL %v: must not be negative", c.QuoteCacheTTL))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
