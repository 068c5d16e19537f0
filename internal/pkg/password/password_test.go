package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.True(t, Verify("password123", hash))
	require.False(t, Verify("password124", hash))
}

func TestValidate(t *testing.T) {
	require.True(t, Validate("123456"))
	require.False(t, Validate("12345"))
	require.False(t, Validate(""))
}
