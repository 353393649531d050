package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables. A .env file in
// the working directory is loaded first (ok if missing in prod).
//
// Recognized variables:
//
//	APP_ENV         - environment name ("dev", "prod", ...)
//	ADDRESS         - HTTP bind address
//	DATABASE_DSN    - PostgreSQL DSN
//	SECRET_KEY      - JWT HMAC secret
//	TOKEN_VALIDITY  - session token lifetime, e.g. "24h"
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.EndpointAddr = getEnv("ADDRESS", cfg.EndpointAddr)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.SecretKey = getEnv("SECRET_KEY", cfg.SecretKey)

	if v := os.Getenv("TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenValidityDuration = d
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
