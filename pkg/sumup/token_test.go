package sumup

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessToken_AuthHeaders(t *testing.T) {
	token := NewAccessToken("abc", "", 3600, "payments", "readers")

	if token.Type != "Bearer" {
		t.Errorf("Expected default type Bearer, got %s", token.Type)
	}
	if got := token.AuthHeaders()["Authorization"]; got != "Bearer abc" {
		t.Errorf("Expected 'Bearer abc', got '%s'", got)
	}

	custom := NewAccessToken("xyz", "MAC", 60)
	if got := custom.AuthHeaders()["Authorization"]; got != "MAC xyz" {
		t.Errorf("Expected 'MAC xyz', got '%s'", got)
	}

	literal := &AccessToken{Value: "raw"}
	if got := literal.AuthHeaders()["Authorization"]; got != "Bearer raw" {
		t.Errorf("Expected 'Bearer raw', got '%s'", got)
	}
}

func TestAccessToken_ExpiresAt(t *testing.T) {
	t.Run("JWT", func(t *testing.T) {
		exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "client",
			"exp": exp.Unix(),
		}).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}

		token := NewAccessToken(signed, "Bearer", 0)
		if !token.ExpiresAt().Equal(exp) {
			t.Errorf("Expected %v, got %v", exp, token.ExpiresAt())
		}
		if token.Expired(time.Now()) {
			t.Error("Token should not be expired yet")
		}
		if !token.Expired(exp.Add(time.Second)) {
			t.Error("Token should be expired after exp")
		}
	})

	t.Run("Opaque", func(t *testing.T) {
		token := NewAccessToken("opaque-token", "Bearer", 60)
		left := time.Until(token.ExpiresAt())
		if left <= 0 || left > time.Minute {
			t.Errorf("Expected expiry within a minute, got %v", left)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		token := &AccessToken{Value: "opaque"}
		if !token.ExpiresAt().IsZero() {
			t.Errorf("Expected zero expiry, got %v", token.ExpiresAt())
		}
		if token.Expired(time.Now()) {
			t.Error("Unknown expiry must not report expired")
		}
	})
}

func TestStandardHeaders_FreshRequestID(t *testing.T) {
	a := StandardHeaders()["X-Request-Id"]
	b := StandardHeaders()["X-Request-Id"]
	if a == "" || a == b {
		t.Errorf("Expected distinct request ids, got '%s' and '%s'", a, b)
	}
}
