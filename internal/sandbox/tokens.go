package sandbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexbotov/sumup/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidClient = errors.New("invalid client credentials")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// defaultScopes are granted to every sandbox token
const defaultScopes = "payments readers.read readers.write"

// TokenIssuer grants bearer tokens for the client-credentials flow and
// validates them on every API call.
type TokenIssuer struct {
	secret     []byte
	clientID   string
	secretHash []byte
	ttl        time.Duration
}

// IssuedToken is the body of a successful token response
type IssuedToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// NewTokenIssuer creates an issuer for the configured client.
// Only a bcrypt hash of the client secret is kept.
func NewTokenIssuer(cfg *config.AuthConfig) (*TokenIssuer, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.ClientSecret), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &TokenIssuer{
		secret:     []byte(cfg.JWTSecret),
		clientID:   cfg.ClientID,
		secretHash: hash,
		ttl:        ttl,
	}, nil
}

// Issue checks the client credentials and signs a new token
func (t *TokenIssuer) Issue(clientID, clientSecret string) (*IssuedToken, error) {
	if clientID != t.clientID {
		return nil, ErrInvalidClient
	}
	if err := bcrypt.CompareHashAndPassword(t.secretHash, []byte(clientSecret)); err != nil {
		return nil, ErrInvalidClient
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   clientID,
		"jti":   uuid.NewString(),
		"scope": defaultScopes,
		"exp":   now.Add(t.ttl).Unix(),
		"iat":   now.Unix(),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(t.ttl.Seconds()),
		Scope:       defaultScopes,
	}, nil
}

// Validate parses a token and returns the client it was issued to
func (t *TokenIssuer) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
