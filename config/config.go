package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"linkpay/templates"
)

// Default configuration values
const (
	DefaultPort       = "3000"
	DefaultDataDir    = "./data"
	DefaultAPIBaseURL = "http://localhost:4000/api/v1"
)

// Timing constants for the checkout flow.
const (
	// StatusPollInterval is the cadence of backend status polling while the
	// checkout is in a non-terminal, non-expired state.
	StatusPollInterval = 5 * time.Second

	// CountdownInterval is how often the expiry countdown is recomputed.
	CountdownInterval = 1 * time.Second

	// ConfirmingDelay and ReceivedDelay drive the processing animation
	// steps after settlement is confirmed.
	ConfirmingDelay = 2 * time.Second
	ReceivedDelay   = 8 * time.Second

	// RedirectDelay is the pause after the "received" step before the
	// customer is sent to the success view.
	RedirectDelay = 2 * time.Second

	// SessionTTL bounds how long an abandoned checkout session is kept.
	SessionTTL = 1 * time.Hour
)

// StoredPaymentKey is the fixed key under which the last settled PaymentData
// is persisted so the success view can render without a redirect-time fetch.
const StoredPaymentKey = "payment-checkout"

// Config holds the application configuration
var Config templates.AppConfig

// Load loads the application configuration from .env, the JSON config file,
// and environment variable overrides, in increasing precedence. A missing
// config file is created with defaults rather than treated as fatal.
func Load() error {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	dataDir := os.Getenv("CHECKOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	configPath := filepath.Join(dataDir, "config.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Config = templates.AppConfig{
			APIBaseURL: DefaultAPIBaseURL,
			Port:       DefaultPort,
			DataDir:    dataDir,
		}
		if err := saveConfig(configPath); err != nil {
			return fmt.Errorf("error writing default configuration: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("error reading configuration file: %w", err)
		}
		if err := json.Unmarshal(data, &Config); err != nil {
			return fmt.Errorf("error parsing configuration file: %w", err)
		}
	}

	// Apply fallbacks for critical values
	if Config.Port == "" {
		Config.Port = DefaultPort
	}
	if Config.DataDir == "" {
		Config.DataDir = dataDir
	}
	if Config.APIBaseURL == "" {
		Config.APIBaseURL = DefaultAPIBaseURL
	}

	// Environment variables override the config file
	if env := os.Getenv("CHECKOUT_API_BASE_URL"); env != "" {
		Config.APIBaseURL = env
	}
	if env := os.Getenv("CHECKOUT_PORT"); env != "" {
		Config.Port = env
	}
	if env := os.Getenv("CHECKOUT_WEBSITE_NAME"); env != "" {
		Config.WebsiteName = env
	}

	return nil
}

// saveConfig saves the configuration to file
func saveConfig(path string) error {
	jsonData, err := json.MarshalIndent(Config, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling configuration: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0600); err != nil {
		return fmt.Errorf("error writing configuration file: %w", err)
	}

	return nil
}

// GetAPIBaseURL returns the payment backend base URL, checking the
// environment variable first.
func GetAPIBaseURL() string {
	if env := os.Getenv("CHECKOUT_API_BASE_URL"); env != "" {
		return env
	}
	return Config.APIBaseURL
}
