package gcmcore

import (
	"encoding/base64"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kauma-project/kauma/internal/sea128"
)

func b64(t *testing.T, s string) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return raw
}

// S4 from spec.md: SEA-128 encrypt.
func TestSEA128ScenarioS4(t *testing.T) {
	key := b64(t, "istDASeincoolerKEYrofg==")
	pt := b64(t, "yv66vvrO263eyviIiDNEVQ==")
	want := b64(t, "D5FDo3iVBoBN9gVi9/MSKQ==")

	got := sea128.Encrypt(key, pt)
	require.Equal(t, want, got)
}

// S5 from spec.md: GCM encrypt under AES-128.
func TestGCMEncryptScenarioS5(t *testing.T) {
	key := b64(t, "Xjq/GkpTSWoe3ZH0F+tjrQ==")
	nonce := b64(t, "4gF+BtR3ku/PUQci")
	pt := b64(t, "RGFzIGlzdCBlaW4gVGVzdA==")
	ad := b64(t, "QUQtRGF0ZW4=")

	res, err := Encrypt(key, nonce, pt, ad, sea128.AES128Encrypt)
	require.NoError(t, err)

	require.Equal(t, "ET3RmvH/Hbuxba63EuPRrw==", base64.StdEncoding.EncodeToString(res.Ciphertext))
	require.Equal(t, "Mp0APJb/ZIURRwQlMgNN/w==", res.Tag.EncodeBase64())
	require.Equal(t, "AAAAAAAAAEAAAAAAAAAAgA==", res.L.EncodeBase64())
	require.Equal(t, "Bu6ywbsUKlpmZXMQyuGAng==", res.H.EncodeBase64())
}

// S6 from spec.md: GCM encrypt under SEA-128.
func TestGCMEncryptScenarioS6(t *testing.T) {
	key := b64(t, "Xjq/GkpTSWoe3ZH0F+tjrQ==")
	nonce := b64(t, "4gF+BtR3ku/PUQci")
	pt := b64(t, "RGFzIGlzdCBlaW4gVGVzdA==")
	ad := b64(t, "QUQtRGF0ZW4=")

	res, err := Encrypt(key, nonce, pt, ad, sea128.Encrypt)
	require.NoError(t, err)

	require.Equal(t, "0cI/Wg4R3URfrVFZ0hw/vg==", base64.StdEncoding.EncodeToString(res.Ciphertext))
	require.Equal(t, "ysDdzOSnqLH0MQ+Mkb23gw==", res.Tag.EncodeBase64())
	require.Equal(t, "xhFcAUT66qWIpYz+Ch5ujw==", res.H.EncodeBase64())
}

func TestGCMRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	for i := 0; i < 20; i++ {
		key := randomBytes(r, 16)
		nonce := randomBytes(r, 12)
		pt := randomBytes(r, 1+r.Intn(64))
		ad := randomBytes(r, r.Intn(40))

		enc, err := Encrypt(key, nonce, pt, ad, sea128.AES128Encrypt)
		require.NoError(t, err)

		dec, err := Decrypt(key, nonce, enc.Ciphertext, ad, enc.Tag, sea128.AES128Encrypt)
		require.NoError(t, err)
		require.True(t, dec.Authentic)
		require.Equal(t, pt, dec.Plaintext)
	}
}

func TestGCMDecryptRejectsTamperedTag(t *testing.T) {
	key := make([]byte, 16)
	nonce := make([]byte, 12)
	pt := []byte("hello, world! this is a test.")
	ad := []byte("header")

	enc, err := Encrypt(key, nonce, pt, ad, sea128.AES128Encrypt)
	require.NoError(t, err)

	tamperedTag := enc.Tag
	tamperedTag[0] ^= 0xFF

	dec, err := Decrypt(key, nonce, enc.Ciphertext, ad, tamperedTag, sea128.AES128Encrypt)
	require.NoError(t, err)
	require.False(t, dec.Authentic)
}

func randomBytes(r *rand.Rand, n int) []byte {
	out := make([]byte, n)
	r.Read(out)
	return out
}
