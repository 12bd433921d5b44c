package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	in := SessionClaims{UserID: 42, Email: "ada@example.com", Name: "Ada"}

	tok, err := NewSessionToken("secret", in, 7)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	out, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	tok, err := NewSessionToken("secret", SessionClaims{UserID: 1, Email: "a@b.c", Name: "A"}, 7)
	require.NoError(t, err)

	_, err = ParseSessionToken("other-secret", tok.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenExpired(t *testing.T) {
	// A negative TTL produces a token that expired yesterday.
	tok, err := NewSessionToken("secret", SessionClaims{UserID: 1, Email: "a@b.c", Name: "A"}, -1)
	require.NoError(t, err)

	_, err = ParseSessionToken("secret", tok.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseSessionToken("secret", raw)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}
