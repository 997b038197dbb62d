package crack

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kauma-project/kauma/internal/field"
	"github.com/kauma-project/kauma/internal/gcmcore"
	"github.com/kauma-project/kauma/internal/sea128"
)

func randomBytes(r *rand.Rand, n int) []byte {
	out := make([]byte, n)
	r.Read(out)
	return out
}

// S7 from spec.md: gcm_crack round-trip against three messages sharing a
// (key, nonce) pair, with an independent forgery target.
func TestCrackRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2024))
	key := randomBytes(r, 16)
	nonce := randomBytes(r, 12)

	encryptOne := func(pt, ad []byte) Message {
		res, err := gcmcore.Encrypt(key, nonce, pt, ad, sea128.AES128Encrypt)
		require.NoError(t, err)
		return Message{Ciphertext: res.Ciphertext, AssociatedData: ad, Tag: res.Tag}
	}

	m1 := encryptOne(randomBytes(r, 32), randomBytes(r, 16))
	m2 := encryptOne(randomBytes(r, 48), randomBytes(r, 8))
	m3 := encryptOne(randomBytes(r, 16), randomBytes(r, 24))

	target := ForgeryTarget{
		Ciphertext:     randomBytes(r, 32),
		AssociatedData: randomBytes(r, 16),
	}

	edfRNG := rand.New(rand.NewSource(7))
	result, err := Crack(m1, m2, m3, target, edfRNG)
	require.NoError(t, err)

	wantH := gcmcore.AuthKey(key, sea128.AES128Encrypt)
	require.Equal(t, wantH.ToBlockGCM(), result.H)

	wantMaskBlock, err := gcmcore.MaskBlock(key, nonce, sea128.AES128Encrypt)
	require.NoError(t, err)
	require.Equal(t, wantMaskBlock, result.Mask)

	ghash := gcmcore.GHASH(wantH, target.AssociatedData, target.Ciphertext)
	wantTag := field.Add(ghash, field.FromBlockGCM(result.Mask)).ToBlockGCM()
	require.Equal(t, wantTag, result.Tag)
}

func TestCrackRejectsCollidingMessages(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	key := randomBytes(r, 16)
	nonce := randomBytes(r, 12)

	encryptOne := func(pt, ad []byte) Message {
		res, err := gcmcore.Encrypt(key, nonce, pt, ad, sea128.AES128Encrypt)
		require.NoError(t, err)
		return Message{Ciphertext: res.Ciphertext, AssociatedData: ad, Tag: res.Tag}
	}

	m := encryptOne(randomBytes(r, 16), randomBytes(r, 8))
	target := ForgeryTarget{Ciphertext: randomBytes(r, 16), AssociatedData: nil}

	_, err := Crack(m, m, m, target, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrCollidingMessages)
}
