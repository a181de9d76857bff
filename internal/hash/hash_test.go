package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	encoded, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	parts := strings.Split(encoded, ".")
	require.Len(t, parts, 2)

	require.True(t, CheckPassword(encoded, "s3cret-password"))
	require.False(t, CheckPassword(encoded, "wrong-password"))
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestIsHashed(t *testing.T) {
	require.False(t, IsHashed("plaintext"))

	encoded, err := HashPassword("plaintext")
	require.NoError(t, err)
	require.True(t, IsHashed(encoded))
}

func TestCheckPasswordMalformed(t *testing.T) {
	require.False(t, CheckPassword("no-separator", "x"))
	require.False(t, CheckPassword("zz.zz", "x"))
	require.False(t, CheckPassword("", "x"))
}
