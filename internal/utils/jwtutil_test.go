package utils

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, exp, err := GenerateToken(secret, 7, "fatima", "admin", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) < 55*time.Minute {
		t.Errorf("expiry too close: %s", exp)
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserId != 7 || claims.Username != "fatima" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ParseToken([]byte("other-secret"), token); err == nil {
		t.Error("token accepted with the wrong secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, _, err := GenerateToken(secret, 1, "samir", "seller", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseToken(secret, token); err == nil {
		t.Error("expired token accepted")
	}
}
