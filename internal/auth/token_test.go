// internal/auth/token_test.go
package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func TestNewTokenServiceRejectsShortKey(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestTokenIssueVerify(t *testing.T) {
	tokens, err := NewTokenService(testSigningKey, time.Hour)
	require.NoError(t, err)

	signed, err := tokens.Issue("alice")
	require.NoError(t, err)

	subject, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenVerifyExpired(t *testing.T) {
	tokens, err := NewTokenService(testSigningKey, -time.Minute)
	require.NoError(t, err)

	signed, err := tokens.Issue("alice")
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenVerifyTampered(t *testing.T) {
	tokens, err := NewTokenService(testSigningKey, time.Hour)
	require.NoError(t, err)

	signed, err := tokens.Issue("alice")
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = tokens.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifyWrongKey(t *testing.T) {
	issuer, err := NewTokenService(testSigningKey, time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService(strings.Repeat("z", 32), time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifyGarbage(t *testing.T) {
	tokens, err := NewTokenService(testSigningKey, time.Hour)
	require.NoError(t, err)

	_, err = tokens.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
