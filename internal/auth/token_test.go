package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	now := time.Now()

	raw, expires, err := tokens.Issue(42, "session-1", now)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected expiry %v, got %v", now.Add(time.Hour), expires)
	}

	claims, err := tokens.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UID != 42 {
		t.Errorf("Expected uid 42, got %d", claims.UID)
	}
	if claims.ID != "session-1" {
		t.Errorf("Expected jti session-1, got %s", claims.ID)
	}
	if claims.Issuer != Issuer {
		t.Errorf("Expected issuer %s, got %s", Issuer, claims.Issuer)
	}
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	good, _, err := tokens.Issue(1, "s", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	expired, _, err := tokens.Issue(1, "s", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ID:        "s",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tests := map[string]struct {
		tokens *Tokens
		raw    string
	}{
		"wrong secret": {NewTokens("other", time.Hour), good},
		"expired":      {tokens, expired},
		"other issuer": {tokens, otherIssuer},
		"garbage":      {tokens, "not-a-token"},
		"empty":        {tokens, ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tt.tokens.Parse(tt.raw)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("correct horse", hash) {
		t.Error("Expected password to match")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("Expected wrong password to fail")
	}
}
