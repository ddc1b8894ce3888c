package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "u@example.com", 30)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), tok.Exp, 5*time.Second)

	sub, err := ParseSubject(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "u@example.com", sub)
}

func TestParseSubjectRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "u@example.com", 30)
	require.NoError(t, err)

	_, err = ParseSubject("another-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSubjectRejectsExpired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, "u@example.com", -1)
	require.NoError(t, err)

	_, err = ParseSubject(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSubjectRejectsMissingSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"exp": time.Now().UTC().Add(time.Hour).Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseSubject(testSecret, raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSubjectRejectsMalformed(t *testing.T) {
	_, err := ParseSubject(testSecret, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
