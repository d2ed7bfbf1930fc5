package sandbox

import (
	"errors"
	"testing"
	"time"

	"github.com/alexbotov/sumup/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T, ttl time.Duration) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(&config.AuthConfig{
		JWTSecret:    "issuer-secret",
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		TokenTTL:     ttl,
	})
	if err != nil {
		t.Fatalf("Failed to create issuer: %v", err)
	}
	return issuer
}

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := newTestIssuer(t, 10*time.Minute)

	issued, err := issuer.Issue(testClientID, testClientSecret)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if issued.TokenType != "Bearer" {
		t.Errorf("Expected Bearer, got %s", issued.TokenType)
	}
	if issued.ExpiresIn != 600 {
		t.Errorf("Expected 600 seconds, got %d", issued.ExpiresIn)
	}
	if issued.Scope != defaultScopes {
		t.Errorf("Expected scope %q, got %q", defaultScopes, issued.Scope)
	}

	client, err := issuer.Validate(issued.AccessToken)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if client != testClientID {
		t.Errorf("Expected client %s, got %s", testClientID, client)
	}
}

func TestTokenIssuer_UniqueTokens(t *testing.T) {
	issuer := newTestIssuer(t, time.Minute)

	first, _ := issuer.Issue(testClientID, testClientSecret)
	second, _ := issuer.Issue(testClientID, testClientSecret)
	if first.AccessToken == second.AccessToken {
		t.Error("Tokens issued in the same second should differ")
	}
}

func TestTokenIssuer_RejectsCredentials(t *testing.T) {
	issuer := newTestIssuer(t, time.Minute)

	tests := []struct {
		name   string
		client string
		secret string
	}{
		{"wrong secret", testClientID, "nope"},
		{"wrong client", "someone-else", testClientSecret},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Issue(tt.client, tt.secret)
			if !errors.Is(err, ErrInvalidClient) {
				t.Errorf("Expected ErrInvalidClient, got %v", err)
			}
		})
	}
}

func TestTokenIssuer_RejectsTokens(t *testing.T) {
	issuer := newTestIssuer(t, time.Minute)
	other := &TokenIssuer{secret: []byte("another-secret"), clientID: testClientID, ttl: time.Minute}

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testClientID,
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString(issuer.secret)

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testClientID,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(other.secret)

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(issuer.secret)

	tests := map[string]string{
		"garbage":    "not.a.token",
		"expired":    expired,
		"foreign":    foreign,
		"no subject": noSubject,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := issuer.Validate(token); err == nil {
				t.Error("Expected validation to fail")
			}
		})
	}
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	issuer := newTestIssuer(t, 0)
	if issuer.ttl != time.Hour {
		t.Errorf("Expected default ttl of 1h, got %v", issuer.ttl)
	}
}
