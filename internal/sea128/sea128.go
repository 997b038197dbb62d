// Package sea128 implements the SEA-128 collaborator block cipher: AES-128
// in single-block ECB mode, XORed with a fixed 16-byte constant. It exists
// purely to give gcm_encrypt/gcm_decrypt a second algorithm choice alongside
// plain AES-128.
//
// Reference: crypto_algorithms/sea128.py, constants.py in the original
// kauma source.
package sea128

import (
	"crypto/aes"
	"fmt"
)

// BlockSize is the cipher's block width in bytes.
const BlockSize = 16

// constant is XORed onto every AES-128-ECB output: c0ffeec0ffeec0ffeec0ffeec0ffee11.
var constant = [BlockSize]byte{
	0xc0, 0xff, 0xee, 0xc0, 0xff, 0xee, 0xc0, 0xff,
	0xee, 0xc0, 0xff, 0xee, 0xc0, 0xff, 0xee, 0x11,
}

// Encrypt computes SEA-128(key, block) = AES128ECB(key, block) XOR constant.
func Encrypt(key, plaintext []byte) []byte {
	if len(plaintext) != BlockSize {
		panic(fmt.Sprintf("sea128: plaintext must be %d bytes, got %d", BlockSize, len(plaintext)))
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		panic(fmt.Sprintf("sea128: bad key: %v", err))
	}
	out := make([]byte, BlockSize)
	c.Encrypt(out, plaintext)
	for i := range out {
		out[i] ^= constant[i]
	}
	return out
}

// Decrypt inverts Encrypt: XOR off the constant, then AES-128-ECB-decrypt.
func Decrypt(key, ciphertext []byte) []byte {
	if len(ciphertext) != BlockSize {
		panic(fmt.Sprintf("sea128: ciphertext must be %d bytes, got %d", BlockSize, len(ciphertext)))
	}
	masked := make([]byte, BlockSize)
	for i := range masked {
		masked[i] = ciphertext[i] ^ constant[i]
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		panic(fmt.Sprintf("sea128: bad key: %v", err))
	}
	out := make([]byte, BlockSize)
	c.Decrypt(out, masked)
	return out
}

// AES128Encrypt is the plain-AES BlockEncrypter counterpart SEA-128 is
// offered alongside in the gcm_encrypt/gcm_decrypt action's algorithm
// switch.
func AES128Encrypt(key, plaintext []byte) []byte {
	c, err := aes.NewCipher(key)
	if err != nil {
		panic(fmt.Sprintf("sea128: bad key: %v", err))
	}
	out := make([]byte, BlockSize)
	c.Encrypt(out, plaintext)
	return out
}
