package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	State  StateConfig
	Import ImportConfig
	Log    LogConfig
}

// StateConfig controls where persisted application state lives.
type StateConfig struct {
	Dir string
}

// ImportConfig controls remote spreadsheet fetching.
type ImportConfig struct {
	FetchTimeoutSeconds int
	MaxDownloadBytes    int64
}

type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := &Config{
		State: StateConfig{
			Dir: getEnv("FINCORE_STATE_DIR", defaultStateDir()),
		},
		Import: ImportConfig{
			FetchTimeoutSeconds: getEnvAsInt("FINCORE_FETCH_TIMEOUT_SECONDS", 30),
			MaxDownloadBytes:    getEnvAsInt64("FINCORE_MAX_DOWNLOAD_BYTES", 20<<20),
		},
		Log: LogConfig{
			Level: getEnv("FINCORE_LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("FINCORE_LOG_JSON", false),
		},
	}

	return cfg, nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fincore"
	}
	return filepath.Join(home, ".fincore")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
