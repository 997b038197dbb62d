// Package paddingoracle implements the oracle-driven CBC plaintext recovery
// attack: given a function reporting whether a candidate (IV, ciphertext
// block) pair decrypts to valid PKCS#7 padding, recover the plaintext block
// by block without ever touching the key. No network client or server is
// implemented — spec.md §1 scopes the transport out entirely; only the pure,
// testable recovery algorithm is built here, driven by an in-process oracle
// function.
//
// Reference: paddingoracle/paddingOracle.py in the original kauma source.
package paddingoracle

import "errors"

// BlockSize is the cipher block width the oracle operates on.
const BlockSize = 16

// ErrAmbiguousPadding is returned when the first byte of a block yields more
// than one padding-value-0x01 candidate and the disambiguation probe (XOR a
// second-to-last byte) fails to narrow it to exactly one.
var ErrAmbiguousPadding = errors.New("paddingoracle: ambiguous padding candidate")

// Oracle reports whether decrypting ciphertext under iv as the preceding
// block yields valid PKCS#7 padding. Neither argument is mutated.
type Oracle func(iv, ciphertext [BlockSize]byte) bool

// RecoverBlock recovers the 16-byte plaintext of ciphertext, given the
// 16-byte block (real IV or previous ciphertext block) it was chained
// after, by probing oracle with crafted preceding blocks.
func RecoverBlock(oracle Oracle, iv, ciphertext [BlockSize]byte) ([BlockSize]byte, error) {
	var foundDC [BlockSize]byte
	crafted := [BlockSize]byte{}

	for pos := BlockSize - 1; pos >= 0; pos-- {
		paddingValue := byte(BlockSize - pos)

		var candidates []byte
		for guess := 0; guess < 256; guess++ {
			probe := crafted
			probe[pos] = byte(guess)
			if oracle(probe, ciphertext) {
				candidates = append(candidates, byte(guess))
			}
		}

		if len(candidates) == 0 {
			return [BlockSize]byte{}, ErrAmbiguousPadding
		}
		if len(candidates) > 1 {
			// Only the first byte position (paddingValue==1) can see more
			// than one hit, because a crafted block ending in ...02 02 also
			// satisfies "valid padding" for the trailing 0x02 0x02 case.
			// Disambiguate by corrupting the second-to-last byte: only the
			// true 0x01 candidate survives that perturbation.
			if pos != BlockSize-1 {
				return [BlockSize]byte{}, ErrAmbiguousPadding
			}
			disambiguated := candidates[:0]
			for _, guess := range candidates {
				probe := crafted
				probe[pos] = guess
				probe[pos-1] ^= 0xFF
				if oracle(probe, ciphertext) {
					disambiguated = append(disambiguated, guess)
				}
			}
			if len(disambiguated) != 1 {
				return [BlockSize]byte{}, ErrAmbiguousPadding
			}
			candidates = disambiguated
		}

		foundDC[pos] = candidates[0] ^ paddingValue

		nextPadding := paddingValue + 1
		for i := 0; i < int(nextPadding)-1; i++ {
			crafted[BlockSize-1-i] = foundDC[BlockSize-1-i] ^ nextPadding
		}
	}

	var plaintext [BlockSize]byte
	for i := range plaintext {
		plaintext[i] = foundDC[i] ^ iv[i]
	}
	return plaintext, nil
}

// Recover recovers the full plaintext of ciphertext (a multiple of
// BlockSize bytes) chained after iv, one block at a time.
func Recover(oracle Oracle, iv []byte, ciphertext []byte) ([]byte, error) {
	var prev [BlockSize]byte
	copy(prev[:], iv)

	plaintext := make([]byte, 0, len(ciphertext))
	for i := 0; i < len(ciphertext); i += BlockSize {
		var block [BlockSize]byte
		copy(block[:], ciphertext[i:i+BlockSize])

		pt, err := RecoverBlock(oracle, prev, block)
		if err != nil {
			return nil, err
		}
		plaintext = append(plaintext, pt[:]...)
		prev = block
	}
	return plaintext, nil
}
