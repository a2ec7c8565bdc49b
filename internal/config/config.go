package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"tabswitch/internal/infrastructure/logging"
)

// Config holds all runtime configuration for the tab switcher.
type Config struct {
	// Discovery settings
	Workers          int
	DiscoveryTimeout time.Duration

	// HTTP control API
	APIEnabled bool
	APIAddr    string

	// Tab preview enrichment
	EnrichmentEnabled bool

	// Logging
	LogFile      string
	LogMaxSizeMB int
	LogMaxFiles  int
}

// Load reads configuration from environment variables and an optional
// .env file. Workers of 0 means "use hardware concurrency".
func Load(logger logging.Logger) (*Config, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err.Error())
	}

	cfg := &Config{
		Workers:           getEnvIntOrDefault("TABSWITCH_WORKERS", 0),
		DiscoveryTimeout:  time.Duration(getEnvIntOrDefault("TABSWITCH_DISCOVERY_TIMEOUT_MS", 5000)) * time.Millisecond,
		APIEnabled:        getEnvBoolOrDefault("TABSWITCH_API_ENABLED", false),
		APIAddr:           getEnvOrDefault("TABSWITCH_API_ADDR", "127.0.0.1:9320"),
		EnrichmentEnabled: getEnvBoolOrDefault("TABSWITCH_ENRICH_ENABLED", true),
		LogFile:           getEnvOrDefault("TABSWITCH_LOG_FILE", ""),
		LogMaxSizeMB:      getEnvIntOrDefault("TABSWITCH_LOG_MAX_SIZE_MB", 10),
		LogMaxFiles:       getEnvIntOrDefault("TABSWITCH_LOG_MAX_FILES", 3),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
