package utils

import (
	"errors"
	"testing"
	"time"

	"notsolong/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:  "test-secret",
		JWTIssuer:     "notsolong-test",
		JWTAccessTTL:  time.Minute,
		JWTRefreshTTL: time.Hour,
	}
}

func TestTokenPairRoundTrip(t *testing.T) {
	cfg := testConfig()
	pair, err := GenerateTokenPair(cfg, 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := ParseToken(cfg, pair.Access, TokenTypeAccess)
	if err != nil || userID != 42 {
		t.Fatalf("parse access: id %d, err %v", userID, err)
	}
	userID, err = ParseToken(cfg, pair.Refresh, TokenTypeRefresh)
	if err != nil || userID != 42 {
		t.Fatalf("parse refresh: id %d, err %v", userID, err)
	}
}

func TestTokenTypeEnforced(t *testing.T) {
	cfg := testConfig()
	pair, err := GenerateTokenPair(cfg, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ParseToken(cfg, pair.Refresh, TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("refresh-as-access error = %v, want ErrWrongTokenType", err)
	}
	if _, err := ParseToken(cfg, pair.Access, TokenTypeRefresh); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("access-as-refresh error = %v, want ErrWrongTokenType", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.JWTAccessTTL = -time.Minute
	pair, err := GenerateTokenPair(cfg, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(cfg, pair.Access, TokenTypeAccess); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	cfg := testConfig()
	pair, err := GenerateTokenPair(cfg, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := testConfig()
	other.JWTSecretKey = "different-secret"
	if _, err := ParseToken(other, pair.Access, TokenTypeAccess); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}
