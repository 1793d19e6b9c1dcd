package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService(JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "roadpulse-api",
	})

	user := &User{ID: 42, Username: "alice"}

	token, expiresAt, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(AccessTokenExpiry), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "https://api.roadpulse.io", claims.Issuer)
}

func TestJWTService_ValidateAccessToken_WrongKey(t *testing.T) {
	issuing := NewJWTService(JWTConfig{
		SigningKey: "key-one",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "roadpulse-api",
	})
	validating := NewJWTService(JWTConfig{
		SigningKey: "key-two",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "roadpulse-api",
	})

	token, _, err := issuing.GenerateAccessToken(&User{ID: 1})
	require.NoError(t, err)

	_, err = validating.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestJWTService_ValidateAccessToken_WrongAudience(t *testing.T) {
	issuing := NewJWTService(JWTConfig{
		SigningKey: "shared-key",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "some-other-service",
	})
	validating := NewJWTService(JWTConfig{
		SigningKey: "shared-key",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "roadpulse-api",
	})

	token, _, err := issuing.GenerateAccessToken(&User{ID: 1})
	require.NoError(t, err)

	_, err = validating.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	svc := NewJWTService(JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "https://api.roadpulse.io",
		Audience:   "roadpulse-api",
	})

	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	a, err := GenerateRefreshToken()
	require.NoError(t, err)
	b, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
