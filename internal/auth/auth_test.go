package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("12345")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2"))

	require.True(t, CheckPassword(hash, "12345"))
	require.False(t, CheckPassword(hash, "54321"))
	require.False(t, CheckPassword("plain", "plain"))
}

func TestSignerVerify(t *testing.T) {
	signer := NewSigner("secret")
	value := signer.Sign("agent@example.com")

	email, err := signer.Verify(value)
	require.NoError(t, err)
	require.Equal(t, "agent@example.com", email)
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSigner("secret")
	value := signer.Sign("agent@example.com")

	for name, bad := range map[string]string{
		"other key":     NewSigner("other").Sign("agent@example.com"),
		"no separator":  strings.ReplaceAll(value, ".", ""),
		"extra segment": value + ".ff",
		"bad hex":       strings.SplitN(value, ".", 2)[0] + ".zz",
		"empty":         "",
	} {
		_, err := signer.Verify(bad)
		require.ErrorIs(t, err, ErrInvalidSession, name)
	}
}
