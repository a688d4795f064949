package config

import (
	"testing"
)

// TestParseIntEnv проверяет разбор целого из ENV с дефолтом.
func TestParseIntEnv(t *testing.T) {
	t.Setenv("ENGINE_MAX_PAYOFF_MONTHS", "360")

	got, err := parseIntEnv("ENGINE_MAX_PAYOFF_MONTHS", 600)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 360 {
		t.Fatalf("expected 360, got %d", got)
	}

	got, err = parseIntEnv("MISSING_ENV", 600)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 600 {
		t.Fatalf("expected fallback 600, got %d", got)
	}
}

// TestParseIntEnvInvalid проверяет ошибки на нечисловых и неположительных значениях.
func TestParseIntEnvInvalid(t *testing.T) {
	t.Setenv("ENGINE_PREDICTION_HORIZON_DAYS", "ninety")
	if _, err := parseIntEnv("ENGINE_PREDICTION_HORIZON_DAYS", 90); err == nil {
		t.Fatal("expected error for non-integer value")
	}

	t.Setenv("ENGINE_PREDICTION_HORIZON_DAYS", "0")
	if _, err := parseIntEnv("ENGINE_PREDICTION_HORIZON_DAYS", 90); err == nil {
		t.Fatal("expected error for zero value")
	}
}

// TestValidateEngineConfig проверяет валидацию политик ядра.
func TestValidateEngineConfig(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Host: "localhost", User: "budget", Name: "envelope_budget", MaxOpenConns: 10, MaxIdleConns: 5},
		Auth: AuthConfig{
			JWTSecret:          "secret",
			AccessTokenTTL:     1,
			RefreshTokenTTL:    1,
			RateLimitPerMinute: 60,
			RateLimitBurst:     10,
		},
		Engine: EngineConfig{PredictionHorizonDays: 90, MaxPayoffMonths: 600, GapToleranceCents: 5000},
	}

	if err := cfg.validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg.Engine.GapToleranceCents = 0
	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for zero gap tolerance")
	}
}
