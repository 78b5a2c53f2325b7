package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, secret, issuer string, customerID uuid.UUID, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": customerID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiresIn).Unix(),
		"iss": issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTTokenVerifier_Validate_Success(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "auth-service")
	customerID := uuid.New()
	token := issueToken(t, "test-secret", "auth-service", customerID, time.Hour)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, customerID, claims.CustomerID)
}

func TestJWTTokenVerifier_Validate_WrongSecret(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "auth-service")
	token := issueToken(t, "other-secret", "auth-service", uuid.New(), time.Hour)

	_, err := v.Validate(token)
	require.Error(t, err)
}

func TestJWTTokenVerifier_Validate_Expired(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "auth-service")
	token := issueToken(t, "test-secret", "auth-service", uuid.New(), -time.Minute)

	_, err := v.Validate(token)
	require.Error(t, err)
}

func TestJWTTokenVerifier_Validate_WrongIssuer(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "auth-service")
	token := issueToken(t, "test-secret", "someone-else", uuid.New(), time.Hour)

	_, err := v.Validate(token)
	require.Error(t, err)
}

func TestJWTTokenVerifier_Validate_RejectsUnsignedToken(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "auth-service")
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.New().String(),
		"iss": "auth-service",
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Validate(signed)
	require.Error(t, err)
}

func TestJWTTokenVerifier_Validate_Garbage(t *testing.T) {
	v := NewJWTTokenVerifier("test-secret", "auth-service")

	_, err := v.Validate("not-a-token")
	require.Error(t, err)
}
