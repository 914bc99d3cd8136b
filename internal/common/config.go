package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Prediction PredictionConfig
	Address    AddressConfig
	Extract    ExtractConfig
	History    HistoryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// PredictionConfig holds the rent-prediction endpoint configuration
type PredictionConfig struct {
	URL     string
	Timeout time.Duration
}

// AddressConfig holds the postal-code lookup service configuration.
// The feature is optional; missing credentials disable it.
type AddressConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// ExtractConfig holds the image field-extraction configuration.
// The feature is optional; a missing API key disables it.
type ExtractConfig struct {
	Model   string
	APIKey  string
	Timeout time.Duration
}

// HistoryConfig holds the judgment history storage configuration.
// Driver is "slotfile" (default), "sqlite" or "postgres".
type HistoryConfig struct {
	Driver   string
	SlotPath string
	DSN      string
	MaxItems int
}

// LoadConfig loads configuration from the environment. A .env file in the
// working directory is honored when present but never required.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8090"),
		},
		Prediction: PredictionConfig{
			URL:     getEnv("PREDICT_URL", "http://localhost:8000/api/v1/predict"),
			Timeout: getEnvAsDuration("PREDICT_TIMEOUT", 30*time.Second),
		},
		Address: AddressConfig{
			BaseURL:      getEnv("ADDRESS_API_URL", ""),
			ClientID:     getEnv("ADDRESS_CLIENT_ID", ""),
			ClientSecret: getEnv("ADDRESS_CLIENT_SECRET", ""),
			Timeout:      getEnvAsDuration("ADDRESS_TIMEOUT", 10*time.Second),
		},
		Extract: ExtractConfig{
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
		},
		History: HistoryConfig{
			Driver:   getEnv("HISTORY_DRIVER", "slotfile"),
			SlotPath: getEnv("HISTORY_PATH", "./ai-rent-navi-history.json"),
			DSN:      getEnv("HISTORY_DSN", ""),
			MaxItems: getEnvAsInt("HISTORY_MAX_ITEMS", 50),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks configuration required for the core judgment path.
// Optional features report their own readiness via the *Enabled methods.
func (c *Config) Validate() error {
	if c.Prediction.URL == "" {
		return NewAppError("CONFIG_ERROR", "PREDICT_URL is required", ErrInvalidInput)
	}
	if c.History.MaxItems <= 0 {
		return NewAppError("CONFIG_ERROR", "HISTORY_MAX_ITEMS must be positive", ErrInvalidInput)
	}
	switch c.History.Driver {
	case "slotfile", "sqlite", "postgres":
	default:
		return NewAppError("CONFIG_ERROR", "HISTORY_DRIVER must be slotfile, sqlite or postgres", ErrInvalidInput)
	}
	if c.History.Driver == "postgres" && c.History.DSN == "" {
		return NewAppError("CONFIG_ERROR", "HISTORY_DSN is required for the postgres driver", ErrInvalidInput)
	}
	return nil
}

// ExtractEnabled reports whether the image extraction feature can run.
func (c *Config) ExtractEnabled() bool {
	return c.Extract.APIKey != ""
}

// AddressEnabled reports whether the postal lookup feature can run.
func (c *Config) AddressEnabled() bool {
	return c.Address.BaseURL != "" && c.Address.ClientID != "" && c.Address.ClientSecret != ""
}
