package config

import (
	"testing"
	"time"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SWIFTRIDE_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without SWIFTRIDE_JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SWIFTRIDE_JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttl: %s", cfg.TokenTTL)
	}
	if cfg.JWTIssuer != "swiftride" {
		t.Fatalf("unexpected issuer: %s", cfg.JWTIssuer)
	}
	if cfg.RateBurst != 20 || cfg.RatePerSec != 10 {
		t.Fatalf("unexpected rate defaults: %d/%d", cfg.RateBurst, cfg.RatePerSec)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SWIFTRIDE_JWT_SECRET", "s3cret")
	t.Setenv("SWIFTRIDE_TOKEN_TTL", "1h30m")
	t.Setenv("SWIFTRIDE_ADDR", ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Fatalf("unexpected token ttl: %s", cfg.TokenTTL)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
}
