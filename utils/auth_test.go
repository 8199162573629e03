package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "customer", "test-secret", time.Hour)
	require.NoError(t, err)

	userID, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)

	_, err = ValidateToken("not-a-token", "test-secret")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken(7, "customer", "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "test-secret")
	assert.Error(t, err)
}

func TestGenerateResetToken(t *testing.T) {
	token, tokenHash, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, tokenHash)

	// The stored hash must be recomputable from the plain token
	assert.Equal(t, tokenHash, HashResetToken(token))

	token2, _, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}
