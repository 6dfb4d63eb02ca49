package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://va:va@localhost:5432/va?sslmode=disable")
	t.Setenv("SECRET_KEY", "test-secret")
}

func TestLoad_WithAllVariables(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("TOKEN_TTL_MINUTES", "60")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Expected RedisAddr localhost:6379, got %s", cfg.RedisAddr)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("Expected NATSURL nats://localhost:4222, got %s", cfg.NATSURL)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("Expected HTTPAddr :9000, got %s", cfg.HTTPAddr)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("Expected TokenTTL 1h, got %s", cfg.TokenTTL)
	}

	expectedOrigins := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.CORSOrigins) != len(expectedOrigins) {
		t.Fatalf("Expected %d origins, got %d", len(expectedOrigins), len(cfg.CORSOrigins))
	}
	for i, origin := range expectedOrigins {
		if cfg.CORSOrigins[i] != origin {
			t.Errorf("Expected origin[%d] = %s, got %s", i, origin, cfg.CORSOrigins[i])
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("NATS_URL")
	os.Unsetenv("HTTP_ADDR")
	os.Unsetenv("TOKEN_TTL_MINUTES")
	os.Unsetenv("CORS_ORIGINS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTPAddr != ":8000" {
		t.Errorf("Expected default HTTPAddr :8000, got %s", cfg.HTTPAddr)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("Expected default TokenTTL 24h, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("Expected default CORS origins [*], got %v", cfg.CORSOrigins)
	}
	if cfg.RedisAddr != "" || cfg.NATSURL != "" {
		t.Error("Expected cache and bus addresses to default to empty")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing DATABASE_URL",
			setup: func(t *testing.T) {
				os.Unsetenv("DATABASE_URL")
				t.Setenv("SECRET_KEY", "test-secret")
			},
		},
		{
			name: "missing SECRET_KEY",
			setup: func(t *testing.T) {
				t.Setenv("DATABASE_URL", "postgres://localhost/va")
				os.Unsetenv("SECRET_KEY")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			if _, err := Load(); err == nil {
				t.Error("Expected Load() to fail")
			}
		})
	}
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	setRequiredEnv(t)

	for _, v := range []string{"abc", "-5", "0"} {
		t.Setenv("TOKEN_TTL_MINUTES", v)
		if _, err := Load(); err == nil {
			t.Errorf("Expected Load() to fail for TOKEN_TTL_MINUTES=%q", v)
		}
	}
}
