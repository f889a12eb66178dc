package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL      string
	Addr             string
	JWTSecret        string
	TokenTTL         time.Duration
	DBConnectTimeout time.Duration
	AllowedOrigins   string
	AdminUsername    string
	AdminPassword    string
	LogLevel         string
	LogFormat        string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	ttl, err := parseTokenTTL(envOrDefault("TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, err
	}

	connectTimeout, err := time.ParseDuration(envOrDefault("DB_CONNECT_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONNECT_TIMEOUT: %w", err)
	}

	addr := fmt.Sprintf(":%s", envOrDefault("PORT", "8080"))

	return Config{
		DatabaseURL:      dsn,
		Addr:             addr,
		JWTSecret:        secret,
		TokenTTL:         ttl,
		DBConnectTimeout: connectTimeout,
		AllowedOrigins:   envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		AdminUsername:    os.Getenv("ADMIN_USERNAME"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseTokenTTL accepts any duration string; "0" disables token expiry.
func parseTokenTTL(raw string) (time.Duration, error) {
	if raw == "0" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse TOKEN_TTL: %w", err)
	}
	if ttl < 0 {
		return 0, errors.New("TOKEN_TTL must not be negative")
	}
	return ttl, nil
}
