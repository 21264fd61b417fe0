package utils

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "AdPayGo2025SecureKey123456789012"

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	enc, err := c.Encrypt("0123456789")
	require.NoError(t, err)
	assert.NotEqual(t, "0123456789", enc)

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", dec)

	empty, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNewCipherRejectsShortKey(t *testing.T) {
	_, err := NewCipher("short")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("secret1", hash))
	assert.False(t, CheckPasswordHash("secret2", hash))
}

func TestTokenManager(t *testing.T) {
	m, err := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	require.NoError(t, err)

	token, err := m.Generate(7, "a@b.com", RoleUser)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.False(t, claims.IsAdmin())

	other, err := NewTokenManager("another-secret-another-secret-xx", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	for i := 0; i < 100; i++ {
		code, err := RandomCode(8)
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestUniqueCodeExhausts(t *testing.T) {
	calls := 0
	_, err := UniqueCode(context.Background(), 6, 3, func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, 3, calls)

	code, err := UniqueCode(context.Background(), 6, 3, func(context.Context, string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestFormatValidationError(t *testing.T) {
	type req struct {
		Email    string `json:"email" validate:"required,email"`
		UserType string `json:"userType" validate:"required,oneof=basic premium"`
	}
	err := ValidateStruct(req{Email: "nope", UserType: "gold"})
	require.Error(t, err)

	errs := FormatValidationError(err)
	assert.Equal(t, "Invalid email format", errs["email"])
	assert.True(t, strings.HasPrefix(errs["userType"], "userType must be one of"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("08012345678"))
	assert.True(t, ValidatePhone("+2348012345678"))
	assert.False(t, ValidatePhone("12345"))
	assert.False(t, ValidatePhone("abcdefghijk"))

	type req struct {
		Phone string `json:"phone" validate:"required,phone"`
	}
	assert.NoError(t, ValidateStruct(req{Phone: "08012345678"}))
	err := ValidateStruct(req{Phone: "0801234567x"})
	require.Error(t, err)
	assert.Equal(t, "phone must be a valid phone number", FormatValidationError(err)["phone"])
}
