package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := Generate(42, ActorCustomer, true, "secret-1", 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Validate(token, "secret-1")
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.AccountID)
	require.Equal(t, ActorCustomer, claims.Actor)
	require.True(t, claims.Verified)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := Generate(1, ActorAdmin, true, "secret-1", 24)
	require.NoError(t, err)

	_, err = Validate(token, "secret-2")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateGarbage(t *testing.T) {
	_, err := Validate("not.a.token", "secret-1")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
