package fde

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomBytes(r *rand.Rand, n int) []byte {
	out := make([]byte, n)
	r.Read(out)
	return out
}

func TestFDERoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	key := randomBytes(r, 32)
	tweak := randomBytes(r, 16)

	for _, n := range []int{16, 32, 48, 1} {
		plaintext := randomBytes(r, n)

		ciphertext, err := Encrypt(key, tweak, plaintext)
		require.NoError(t, err)
		require.Len(t, ciphertext, n)

		recovered, err := Decrypt(key, tweak, ciphertext)
		require.NoError(t, err)
		require.Equal(t, plaintext, recovered)
	}
}

func TestFDERejectsOddKeyLength(t *testing.T) {
	_, err := Encrypt(make([]byte, 15), make([]byte, 16), make([]byte, 16))
	require.ErrorIs(t, err, ErrBadArgument)
}
