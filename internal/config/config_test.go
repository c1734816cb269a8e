package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.DBPath == "" {
		t.Error("Expected a default DB path")
	}
	if cfg.Supplier.RefreshInterval != 24*time.Hour {
		t.Errorf("Expected 24h refresh interval, got %s", cfg.Supplier.RefreshInterval)
	}
	if cfg.SupplierEnabled() {
		t.Error("Supplier must be disabled without an API key")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PERPLEXITY_API_KEY", "key")
	t.Setenv("TOPIC_REFRESH_INTERVAL", "1h")
	t.Setenv("TOPIC_REFRESH_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %q", cfg.Port)
	}
	if !cfg.SupplierEnabled() {
		t.Error("Supplier must be enabled with an API key")
	}
	if cfg.Supplier.RefreshInterval != time.Hour {
		t.Errorf("Expected 1h refresh interval, got %s", cfg.Supplier.RefreshInterval)
	}
	if cfg.Supplier.RefreshCount != 3 {
		t.Errorf("Expected refresh count 3, got %d", cfg.Supplier.RefreshCount)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: "", DBPath: "x", Supplier: SupplierConfig{RequestTimeout: time.Second, RefreshInterval: time.Hour}}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected empty port to fail validation")
	}

	cfg = &Config{Port: "8080", DBPath: "", Supplier: SupplierConfig{RequestTimeout: time.Second, RefreshInterval: time.Hour}}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected empty DB path to fail validation")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{FrontendURL: ""}
	if !cfg.IsDevelopment() {
		t.Error("Empty frontend URL means development")
	}

	cfg.FrontendURL = "http://localhost:5173"
	if !cfg.IsDevelopment() {
		t.Error("localhost frontend means development")
	}

	cfg.FrontendURL = "https://debatkamer.example"
	if cfg.IsDevelopment() {
		t.Error("Public frontend URL means production")
	}
}
