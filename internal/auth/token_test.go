package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestTokenPairRoundTrip проверяет выпуск и разбор пары токенов.
func TestTokenPairRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", "envelope-budget", time.Minute, time.Hour)
	userID := uuid.New()

	pair, err := manager.NewTokenPair(userID, uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := manager.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("expected valid access token, got %v", err)
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject %s, got %s", userID, claims.Subject)
	}
}

// TestTokenTypeMismatch проверяет отказ при подмене типа токена.
func TestTokenTypeMismatch(t *testing.T) {
	manager := NewTokenManager("test-secret", "envelope-budget", time.Minute, time.Hour)

	pair, err := manager.NewTokenPair(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := manager.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Fatalf("expected token type mismatch, got %v", err)
	}
}

// TestCompareTokenHash проверяет сравнение хэша refresh-токена.
func TestCompareTokenHash(t *testing.T) {
	hash := HashToken("opaque-refresh-token")

	if !CompareTokenHash(hash, "opaque-refresh-token") {
		t.Fatal("expected matching hash")
	}
	if CompareTokenHash(hash, "another-token") {
		t.Fatal("expected mismatch for different token")
	}
}
