package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Backend.BaseURL != "http://localhost:3001" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "http://localhost:3001")
	}
	if cfg.Checkout.PaymentVariant != "dropin" {
		t.Errorf("Checkout.PaymentVariant = %q, want %q", cfg.Checkout.PaymentVariant, "dropin")
	}
	if cfg.Checkout.ClientTokenTTL != 5*time.Minute {
		t.Errorf("Checkout.ClientTokenTTL = %v, want %v", cfg.Checkout.ClientTokenTTL, 5*time.Minute)
	}
	if cfg.Processor.Environment != "sandbox" {
		t.Errorf("Processor.Environment = %q, want %q", cfg.Processor.Environment, "sandbox")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("PAYMENT_VARIANT", "card")
	t.Setenv("CLIENT_TOKEN_TTL_MINUTES", "2")
	t.Setenv("API_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Errorf("Backend.BaseURL = %q, want trailing slash trimmed", cfg.Backend.BaseURL)
	}
	if cfg.Checkout.PaymentVariant != "card" {
		t.Errorf("Checkout.PaymentVariant = %q, want %q", cfg.Checkout.PaymentVariant, "card")
	}
	if cfg.Checkout.ClientTokenTTL != 2*time.Minute {
		t.Errorf("Checkout.ClientTokenTTL = %v, want %v", cfg.Checkout.ClientTokenTTL, 2*time.Minute)
	}
	if cfg.Backend.Timeout != 30*time.Second {
		t.Errorf("Backend.Timeout = %v, want fallback to default", cfg.Backend.Timeout)
	}
}
