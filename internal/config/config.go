package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	Backend   BackendConfig
	Processor ProcessorConfig
	Checkout  CheckoutConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type SessionConfig struct {
	Secret string
}

// BackendConfig points the storefront at the marketplace REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ProcessorConfig holds the payment processor credentials shared by the
// direct-tokenization and hosted drop-in gateways.
type ProcessorConfig struct {
	PublicKey   string
	SecretKey   string
	Environment string // "sandbox" or "production"
}

type CheckoutConfig struct {
	// PaymentVariant selects the active gateway: "card" or "dropin".
	PaymentVariant string
	// ClientTokenTTL bounds how long a minted payment client token is
	// served from the broker cache.
	ClientTokenTTL time.Duration
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3001"), "/"),
			Timeout: time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Processor: ProcessorConfig{
			PublicKey:   getEnv("PROCESSOR_PUBLIC_KEY", ""),
			SecretKey:   getEnv("PROCESSOR_SECRET_KEY", ""),
			Environment: getEnv("PROCESSOR_ENVIRONMENT", "sandbox"),
		},
		Checkout: CheckoutConfig{
			PaymentVariant: getEnv("PAYMENT_VARIANT", "dropin"),
			ClientTokenTTL: time.Duration(getEnvAsInt("CLIENT_TOKEN_TTL_MINUTES", 5)) * time.Minute,
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
