package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "CORS_ORIGINS", "FREE_SHIPPING_OVER_CENTS", "SHIPPING_FEE_CENTS", "TAX_RATE_BPS", "DELIVERY_DAYS", "DEFAULT_COUNTRY"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.Pricing.FreeShippingOverCents != 5000 || cfg.Pricing.ShippingFeeCents != 999 || cfg.Pricing.TaxRateBasisPoints != 800 {
		t.Fatalf("unexpected pricing %+v", cfg.Pricing)
	}
	if cfg.Pricing.DeliveryOffset != 7*24*time.Hour {
		t.Fatalf("unexpected delivery offset %v", cfg.Pricing.DeliveryOffset)
	}
	if cfg.DefaultCountry != "US" || len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FREE_SHIPPING_OVER_CENTS", "10000")
	t.Setenv("TAX_RATE_BPS", "not-a-number")
	t.Setenv("DELIVERY_DAYS", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "2")

	cfg := FromEnv()
	if cfg.Pricing.FreeShippingOverCents != 10000 {
		t.Fatalf("expected override, got %d", cfg.Pricing.FreeShippingOverCents)
	}
	if cfg.Pricing.TaxRateBasisPoints != 800 {
		t.Fatalf("invalid value should fall back to default, got %d", cfg.Pricing.TaxRateBasisPoints)
	}
	if cfg.Pricing.DeliveryOffset != 72*time.Hour {
		t.Fatalf("unexpected delivery offset %v", cfg.Pricing.DeliveryOffset)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DEFAULT_COUNTRY=DE\nHTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("DEFAULT_COUNTRY", "")
	os.Unsetenv("DEFAULT_COUNTRY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultCountry != "DE" {
		t.Fatalf("expected country from file, got %q", cfg.DefaultCountry)
	}
	if cfg.HTTPAddr != ":7000" {
		t.Fatalf("environment should win, got %q", cfg.HTTPAddr)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}
