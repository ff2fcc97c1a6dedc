package usecases

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3nha"), bcrypt.MinCost)
	require.NoError(t, err)
	auth := NewAuthUsecase("operador", string(hash), "secret")

	token, err := auth.Login("operador", "s3nha")
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "operador", claims["sub"])
	assert.Equal(t, "admin", claims["role"])

	_, err = auth.Login("operador", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login("outro", "s3nha")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthDisabledWithoutCredentials(t *testing.T) {
	auth := NewAuthUsecase("", "", "secret")
	assert.False(t, auth.Enabled())
	_, err := auth.Login("", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
