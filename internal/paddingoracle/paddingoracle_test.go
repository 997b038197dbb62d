package paddingoracle

import (
	"crypto/aes"
	"crypto/cipher"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCBCOracle builds a real AES-CBC-with-PKCS7 oracle backed by a fixed
// key, for testing RecoverBlock/Recover against ground truth without any
// network layer.
func fakeCBCOracle(t *testing.T, key []byte) Oracle {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	return func(iv, ciphertext [BlockSize]byte) bool {
		dec := cipher.NewCBCDecrypter(block, iv[:])
		out := make([]byte, BlockSize)
		dec.CryptBlocks(out, ciphertext[:])
		return hasValidPKCS7(out)
	}
}

func hasValidPKCS7(data []byte) bool {
	n := len(data)
	padByte := data[n-1]
	if padByte == 0 || int(padByte) > n {
		return false
	}
	for i := n - int(padByte); i < n; i++ {
		if data[i] != padByte {
			return false
		}
	}
	return true
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	if padLen == 0 {
		padLen = blockSize
	}
	out := append([]byte{}, data...)
	for i := 0; i < padLen; i++ {
		out = append(out, byte(padLen))
	}
	return out
}

func cbcEncrypt(t *testing.T, key, iv, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	padded := pkcs7Pad(plaintext, BlockSize)
	out := make([]byte, len(padded))
	enc := cipher.NewCBCEncrypter(block, iv)
	enc.CryptBlocks(out, padded)
	return out
}

func TestRecoverSingleBlock(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	key := make([]byte, 16)
	r.Read(key)
	iv := make([]byte, 16)
	r.Read(iv)

	plaintext := []byte("sixteen byte msg")
	ciphertext := cbcEncrypt(t, key, iv, plaintext)

	oracle := fakeCBCOracle(t, key)

	var ivArr, ctArr [BlockSize]byte
	copy(ivArr[:], iv)
	copy(ctArr[:], ciphertext[:BlockSize])

	recovered, err := RecoverBlock(oracle, ivArr, ctArr)
	require.NoError(t, err)
	require.Equal(t, plaintext[:BlockSize], recovered[:])
}

func TestRecoverMultiBlock(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	key := make([]byte, 16)
	r.Read(key)
	iv := make([]byte, 16)
	r.Read(iv)

	plaintext := []byte("this message spans multiple sixteen-byte blocks of data")
	ciphertext := cbcEncrypt(t, key, iv, plaintext)

	oracle := fakeCBCOracle(t, key)
	recovered, err := Recover(oracle, iv, ciphertext)
	require.NoError(t, err)

	padded := pkcs7Pad(plaintext, BlockSize)
	require.Equal(t, padded, recovered)
}
