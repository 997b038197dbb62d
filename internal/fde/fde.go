// Package fde implements the "FDE" collaborator: an XTS-like, XEX-mode
// block-cipher wrapper over SEA-128. A disk sector is encrypted block by
// block under a tweak that advances by successive powers of alpha = X in
// GF(2^128) under the *XEX* bit convention — the mirror image of the GCM
// convention the core field/polynomial layers use.
//
// Reference: xex.py, crypto_algorithms/fde.py in the original kauma source.
package fde

import (
	"errors"
	"fmt"

	"github.com/kauma-project/kauma/internal/block"
	"github.com/kauma-project/kauma/internal/field"
	"github.com/kauma-project/kauma/internal/sea128"
)

// ErrBadArgument is returned when the key length is odd or zero, so the key
// cannot be split into two equal halves.
var ErrBadArgument = errors.New("fde: bad argument")

// alpha is the monomial X, read under the XEX bit convention: block bit 1
// set, all others zero.
var alpha = field.FromBlockXEX(mustBlockFromXEXBit(1))

func mustBlockFromXEXBit(bit int) block.Block {
	b, err := block.FromXEXCoefficients([]int{bit})
	if err != nil {
		panic(err)
	}
	return b
}

func splitKey(key []byte) (k1, k2 []byte, err error) {
	if len(key)%2 != 0 || len(key) == 0 {
		return nil, nil, fmt.Errorf("%w: key must have even, nonzero length", ErrBadArgument)
	}
	mid := len(key) / 2
	return key[:mid], key[mid:], nil
}

// apply runs the shared XEX loop: derive the initial tweak from the sector
// tweak under key2, then for each 16-byte block XOR the tweak in, apply the
// block cipher (encrypt or decrypt), XOR the tweak back out, and advance the
// tweak by one power of alpha under the XEX convention.
func apply(key, tweak, text []byte, encrypt bool) ([]byte, error) {
	k1, k2, err := splitKey(key)
	if err != nil {
		return nil, err
	}

	xorBlock := sea128.Encrypt(k2, tweak)

	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i += block.Size {
		end := i + block.Size
		if end > len(text) {
			end = len(text)
		}
		textBlock := text[i:end]

		xored := xorBytes(textBlock, xorBlock)
		for len(xored) < block.Size {
			xored = append(xored, 0)
		}

		var cipherBlock []byte
		if encrypt {
			cipherBlock = sea128.Encrypt(k1, xored)
		} else {
			cipherBlock = sea128.Decrypt(k1, xored)
		}

		resultBlock := xorBytes(cipherBlock, xorBlock)
		out = append(out, resultBlock[:len(textBlock)]...)

		xorBlockBytes, err := block.FromBytes(xorBlock)
		if err != nil {
			return nil, err
		}
		nextTweak := field.Mul(alpha, field.FromBlockXEX(xorBlockBytes))
		xorBlock = nextTweak.ToBlockXEX().Bytes()
	}
	return out, nil
}

// Encrypt applies FDE encryption to text (the full sector) under key and
// tweak (the per-sector IV, 16 bytes).
func Encrypt(key, tweak, plaintext []byte) ([]byte, error) {
	return apply(key, tweak, plaintext, true)
}

// Decrypt inverts Encrypt.
func Decrypt(key, tweak, ciphertext []byte) ([]byte, error) {
	return apply(key, tweak, ciphertext, false)
}

func xorBytes(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}
