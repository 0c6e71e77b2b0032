package auth

import (
	"testing"
	"time"

	"github.com/adoptly/adoptly-backend/pkg/config"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "adoptly-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: userID, Username: "ravi"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id mismatch: %s", claims.UserID)
	}
	if claims.Username != "ravi" {
		t.Fatalf("username mismatch: %q", claims.Username)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("issuer mismatch: %q", claims.Issuer)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Username: "x"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{UserID: uuid.New(), Username: "x"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}

	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
