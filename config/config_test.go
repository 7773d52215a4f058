package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHECKOUT_DATA_DIR", dir)
	t.Setenv("CHECKOUT_API_BASE_URL", "")
	t.Setenv("CHECKOUT_PORT", "")
	t.Setenv("CHECKOUT_WEBSITE_NAME", "")

	if err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Errorf("default config file not written: %v", err)
	}
	if Config.Port != DefaultPort {
		t.Errorf("port = %q, want %q", Config.Port, DefaultPort)
	}
	if Config.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("api base url = %q, want %q", Config.APIBaseURL, DefaultAPIBaseURL)
	}
	if Config.DataDir != dir {
		t.Errorf("data dir = %q, want %q", Config.DataDir, dir)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHECKOUT_DATA_DIR", dir)
	t.Setenv("CHECKOUT_API_BASE_URL", "https://api.example/api/v1")
	t.Setenv("CHECKOUT_PORT", "8080")
	t.Setenv("CHECKOUT_WEBSITE_NAME", "pay.example")

	if err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if Config.APIBaseURL != "https://api.example/api/v1" {
		t.Errorf("api base url = %q", Config.APIBaseURL)
	}
	if got := GetAPIBaseURL(); got != "https://api.example/api/v1" {
		t.Errorf("GetAPIBaseURL() = %q", got)
	}
	if Config.Port != "8080" {
		t.Errorf("port = %q", Config.Port)
	}
	if Config.WebsiteName != "pay.example" {
		t.Errorf("website name = %q", Config.WebsiteName)
	}
}
