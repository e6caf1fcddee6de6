package auth

import (
	"testing"

	"github.com/dukerupert/shopwrench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "mySecurePassword123", hash)
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	require.Error(t, err)
	assert.Equal(t, shopwrench.EINVALID, shopwrench.ErrorCode(err))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("mySecurePassword123", hash))

	err = VerifyPassword("wrongPassword", hash)
	require.Error(t, err)
	assert.Equal(t, shopwrench.EUNAUTHORIZED, shopwrench.ErrorCode(err))
}

func TestHashPasswordSalted(t *testing.T) {
	hash1, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)
	hash2, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)

	// bcrypt salts, so two hashes of the same password differ but both verify
	assert.NotEqual(t, hash1, hash2)
	assert.NoError(t, VerifyPassword("mySecurePassword123", hash1))
	assert.NoError(t, VerifyPassword("mySecurePassword123", hash2))
}

func TestGenerateToken(t *testing.T) {
	t1, err := GenerateToken()
	require.NoError(t, err)
	t2, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEmpty(t, t1)
	assert.NotEqual(t, t1, t2)
}
