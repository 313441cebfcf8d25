package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := VerifyToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "secret", time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), "secret", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(token, "secret")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, err := VerifyToken("not-a-token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
