package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config centralises runtime configuration read from the environment.
type Config struct {
	Addr          string
	PGDSN         string
	AMQPURL       string
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	SweepInterval time.Duration
	RateBurst     int
	RatePerSec    int
}

// Load reads configuration from environment variables. The JWT secret has no
// default: the process must not come up able to mint unverifiable tokens.
func Load() (Config, error) {
	cfg := Config{
		Addr:          getEnv("SWIFTRIDE_ADDR", ":8080"),
		PGDSN:         getEnv("SWIFTRIDE_PG_DSN", ""),
		AMQPURL:       getEnv("SWIFTRIDE_AMQP_URL", ""),
		JWTSecret:     getEnv("SWIFTRIDE_JWT_SECRET", ""),
		JWTIssuer:     getEnv("SWIFTRIDE_JWT_ISSUER", "swiftride"),
		TokenTTL:      getDurationEnv("SWIFTRIDE_TOKEN_TTL", 24*time.Hour),
		SweepInterval: getDurationEnv("SWIFTRIDE_SWEEP_INTERVAL", 10*time.Minute),
		RateBurst:     getIntEnv("SWIFTRIDE_RATE_BURST", 20),
		RatePerSec:    getIntEnv("SWIFTRIDE_RATE_PER_SEC", 10),
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("SWIFTRIDE_JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("SWIFTRIDE_TOKEN_TTL must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
