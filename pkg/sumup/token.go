package sumup

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a bearer token obtained outside the SDK.
// The SDK only turns it into headers; it never refreshes it.
type AccessToken struct {
	Value     string
	Type      string
	ExpiresIn int
	Scopes    []string

	issuedAt time.Time
}

// NewAccessToken creates a token that was issued now
func NewAccessToken(value, tokenType string, expiresIn int, scopes ...string) *AccessToken {
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &AccessToken{
		Value:     value,
		Type:      tokenType,
		ExpiresIn: expiresIn,
		Scopes:    scopes,
		issuedAt:  time.Now(),
	}
}

// AuthHeaders returns the Authorization header for the token
func (t *AccessToken) AuthHeaders() map[string]string {
	tokenType := t.Type
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return map[string]string{
		"Authorization": tokenType + " " + t.Value,
	}
}

// ExpiresAt returns when the token stops being accepted. For JWT tokens the
// exp claim is read without verifying the signature; otherwise the time is
// derived from ExpiresIn. The zero time means unknown.
func (t *AccessToken) ExpiresAt() time.Time {
	if strings.Count(t.Value, ".") == 2 {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(t.Value, claims); err == nil {
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				return exp.Time
			}
		}
	}
	if t.ExpiresIn > 0 && !t.issuedAt.IsZero() {
		return t.issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return time.Time{}
}

// Expired reports whether the token is past its expiry at now.
// Tokens with an unknown expiry never report expired.
func (t *AccessToken) Expired(now time.Time) bool {
	exp := t.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}
