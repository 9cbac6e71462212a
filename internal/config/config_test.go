package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
razorpay:
  key_id: rzp_test_abc
  timeout: 3s
pricing:
  unit_price_cents: 7
  fx_rate_minor: 80
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Razorpay.KeyID != "rzp_test_abc" {
		t.Fatalf("unexpected razorpay key id: %s", cfg.Razorpay.KeyID)
	}
	if cfg.Razorpay.Timeout != 3*time.Second {
		t.Fatalf("unexpected razorpay timeout: %s", cfg.Razorpay.Timeout)
	}
	if cfg.Pricing.UnitPriceCents != 7 {
		t.Fatalf("unexpected unit price: %d", cfg.Pricing.UnitPriceCents)
	}
	if cfg.Pricing.FXRateMinor != 80 {
		t.Fatalf("unexpected fx rate: %f", cfg.Pricing.FXRateMinor)
	}

	// Untouched sections keep defaults.
	if cfg.Pricing.Currency != "INR" {
		t.Fatalf("unexpected currency: %s", cfg.Pricing.Currency)
	}
	if cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected read timeout: %s", cfg.HTTP.ReadTimeout)
	}
}

func TestLoadEnvOverridesWinOverYAML(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
razorpay:
  key_id: rzp_yaml
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	t.Setenv("RAZORPAY_ID_KEY", "rzp_env")
	t.Setenv("PRICING_UNIT_PRICE_CENTS", "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Razorpay.KeyID != "rzp_env" {
		t.Fatalf("env override lost: %s", cfg.Razorpay.KeyID)
	}
	if cfg.Pricing.UnitPriceCents != 0 {
		t.Fatalf("unit price env override lost: %d", cfg.Pricing.UnitPriceCents)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Pricing.UnitPriceCents != 5 {
		t.Fatalf("unexpected default unit price: %d", cfg.Pricing.UnitPriceCents)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
		"JWT_SECRET", "JWT_ACCESS_TTL",
		"RAZORPAY_ID_KEY", "RAZORPAY_SECRET_KEY", "RAZORPAY_WEBHOOK_SECRET", "RAZORPAY_TIMEOUT",
		"PRICING_UNIT_PRICE_CENTS", "PRICING_FX_RATE_MINOR", "PRICING_CURRENCY",
	} {
		t.Setenv(key, "")
	}
}
