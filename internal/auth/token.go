// internal/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// minKeyLen guards against weak signing keys at construction time.
const minKeyLen = 32

// TokenService issues and verifies HS256 bearer tokens. It is stateless:
// validity derives from the signature and expiry alone.
type TokenService struct {
	key []byte
	ttl time.Duration
}

// NewTokenService validates the signing secret and returns a service issuing
// tokens with the given lifetime.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minKeyLen {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", minKeyLen, len(secret))
	}
	return &TokenService{key: []byte(secret), ttl: ttl}, nil
}

// Issue produces a signed token with the username as subject.
func (t *TokenService) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the subject username.
func (t *TokenService) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
