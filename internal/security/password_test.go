package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var fastParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPasswordWithParams("correct horse", fastParams)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(hash), "$argon2id$v=19$"))

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPasswordWithParams("pw1", fastParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams("pw1", fastParams)
	require.NoError(t, err)

	require.NotEqual(t, string(a), string(b))

	for _, h := range [][]byte{a, b} {
		ok, err := VerifyPassword("pw1", h)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	}
	for _, c := range cases {
		ok, err := VerifyPassword("x", []byte(c))
		require.ErrorIs(t, err, ErrMalformedHash, c)
		require.False(t, ok)
	}
}
