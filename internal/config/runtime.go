package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultDatabaseURL   = "villabook.db"
	defaultPort          = "8080"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTAccessTTL  = "15m"
	defaultCurrency      = "eur"
	defaultHoldWindow    = "30m"
	defaultSweepInterval = "5m"
	defaultGatewayURL    = "https://api.gateway.example"
)

type RuntimeConfig struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	JWTSecret     string
	JWTAccessTTL  time.Duration
	Currency      string
	HoldWindow    time.Duration
	SweepInterval time.Duration

	GatewayBaseURL       string
	GatewayAPIKey        string
	GatewayWebhookSecret string
	CheckoutSuccessURL   string
	CheckoutCancelURL    string

	CORSOrigins []string
}

func LoadRuntimeConfig() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.Currency = strings.ToLower(strings.TrimSpace(getEnv("CURRENCY", defaultCurrency)))

	cfg.GatewayBaseURL = strings.TrimSpace(getEnv("GATEWAY_BASE_URL", defaultGatewayURL))
	cfg.GatewayAPIKey = strings.TrimSpace(os.Getenv("GATEWAY_API_KEY"))
	cfg.GatewayWebhookSecret = strings.TrimSpace(os.Getenv("GATEWAY_WEBHOOK_SECRET"))
	cfg.CheckoutSuccessURL = strings.TrimSpace(getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"))
	cfg.CheckoutCancelURL = strings.TrimSpace(getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"))

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.HoldWindow, err = parseDurationEnv("BOOKING_HOLD_WINDOW", defaultHoldWindow)
	if err != nil {
		return nil, err
	}
	cfg.SweepInterval, err = parseDurationEnv("EXPIRY_SWEEP_INTERVAL", defaultSweepInterval)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *RuntimeConfig) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.HoldWindow <= 0 {
		return fmt.Errorf("BOOKING_HOLD_WINDOW must be > 0")
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_INTERVAL must be > 0")
	}
	if len(cfg.Currency) != 3 {
		return fmt.Errorf("CURRENCY must be a 3-letter code")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.GatewayAPIKey == "" {
			return fmt.Errorf("in prod/release GATEWAY_API_KEY must be set")
		}
		if cfg.GatewayWebhookSecret == "" {
			return fmt.Errorf("in prod/release GATEWAY_WEBHOOK_SECRET must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
