// Package gcmcore implements GHASH and the AES-GCM authenticated
// encrypt/decrypt construction over an externally supplied block cipher,
// plus the standalone pieces (auth key, mask, key stream, length block) the
// nonce-misuse cracker in internal/crack recomposes independently.
//
// Reference: crypto_algorithms/gcm.py in the original kauma source.
package gcmcore

import (
	"errors"
	"fmt"

	"github.com/kauma-project/kauma/internal/block"
	"github.com/kauma-project/kauma/internal/field"
	"github.com/kauma-project/kauma/util"
)

// BlockSize is the width, in bytes, of one GCM/GHASH block.
const BlockSize = block.Size

// BlockEncrypter encrypts one 16-byte block under key; key and the returned
// block are both exactly BlockSize bytes.
type BlockEncrypter func(key, plaintext []byte) []byte

// ErrBadArgument is returned when a nonce is shorter than 12 bytes; longer
// nonces contribute only their last 12 bytes.
var ErrBadArgument = errors.New("gcmcore: bad argument")

// AuthKey computes H = E(key, 0^128), the GHASH multiplier.
func AuthKey(key []byte, encrypt BlockEncrypter) field.Element {
	zero := make([]byte, BlockSize)
	h, _ := block.FromBytes(encrypt(key, zero))
	return field.FromBlockGCM(h)
}

// Mask computes E(key, nonce[-12:] || u32be(1)), the one-time pad XORed onto
// GHASH to produce the tag.
func Mask(key, nonce []byte, encrypt BlockEncrypter) (field.Element, error) {
	y0, err := counterBlock(nonce, 1)
	if err != nil {
		return field.Zero, err
	}
	e, _ := block.FromBytes(encrypt(key, y0[:]))
	return field.FromBlockGCM(e), nil
}

// MaskBlock is like Mask but returns the raw encrypted block E_K(Y_0)
// instead of its field-element reading, in the same block form as the
// cracker's recovered mask.
func MaskBlock(key, nonce []byte, encrypt BlockEncrypter) (block.Block, error) {
	y0, err := counterBlock(nonce, 1)
	if err != nil {
		return block.Block{}, err
	}
	e, _ := block.FromBytes(encrypt(key, y0[:]))
	return e, nil
}

func counterBlock(nonce []byte, ctr uint32) (block.Block, error) {
	if len(nonce) < 12 {
		return block.Block{}, fmt.Errorf("%w: nonce shorter than 12 bytes", ErrBadArgument)
	}
	var raw [BlockSize]byte
	copy(raw[:12], nonce[len(nonce)-12:])
	util.Uint32ToBigEndian(ctr, raw[:], 12)
	return block.Block(raw), nil
}

// KeyStream produces nBytes of counter-mode key stream starting at counter
// 2, the convention GCM uses once counter 1 is reserved for the mask.
func KeyStream(key, nonce []byte, nBytes int, encrypt BlockEncrypter) ([]byte, error) {
	out := make([]byte, 0, nBytes)
	ctr := uint32(2)
	for len(out) < nBytes {
		y, err := counterBlock(nonce, ctr)
		if err != nil {
			return nil, err
		}
		out = append(out, encrypt(key, y[:])...)
		ctr++
	}
	return out[:nBytes], nil
}

// LengthBlock builds the GHASH length block: u64be(adLen*8) || u64be(ctLen*8).
func LengthBlock(adLen, ctLen int) field.Element {
	var raw [BlockSize]byte
	util.Uint64ToBigEndian(uint64(adLen)*8, raw[:], 0)
	util.Uint64ToBigEndian(uint64(ctLen)*8, raw[:], 8)
	return field.FromBlockGCM(block.Block(raw))
}

// padToBlockSize zero-pads data up to the next multiple of BlockSize.
func padToBlockSize(data []byte) []byte {
	rem := len(data) % BlockSize
	if rem == 0 {
		return data
	}
	padded := make([]byte, len(data)+BlockSize-rem)
	copy(padded, data)
	return padded
}

// BlocksOf splits data into GCM-convention field elements, zero-padding the
// final chunk to BlockSize bytes. The cracker in internal/crack uses this to
// rebuild each message's ciphertext and AD block sequence independently of
// GHASH.
func BlocksOf(data []byte) []field.Element {
	return blocksOf(data)
}

func blocksOf(data []byte) []field.Element {
	padded := padToBlockSize(data)
	out := make([]field.Element, 0, len(padded)/BlockSize)
	for i := 0; i < len(padded); i += BlockSize {
		var raw [BlockSize]byte
		copy(raw[:], padded[i:i+BlockSize])
		out = append(out, field.FromBlockGCM(block.Block(raw)))
	}
	return out
}

// GHASH computes the GCM polynomial authenticator: start at zero, fold in
// every (zero-padded) AD block then every ciphertext block by add-then-
// multiply by H, and finally fold in the length block the same way.
func GHASH(h field.Element, ad, ciphertext []byte) field.Element {
	x := field.Zero
	for _, b := range blocksOf(ad) {
		x = field.Mul(field.Add(x, b), h)
	}
	for _, b := range blocksOf(ciphertext) {
		x = field.Mul(field.Add(x, b), h)
	}
	l := LengthBlock(len(ad), len(ciphertext))
	x = field.Mul(field.Add(x, l), h)
	return x
}

// tagFromGhash computes the GCM authentication tag from a GHASH value and
// the one-time mask E_K(Y_0).
func tagFromGhash(ghash, mask field.Element) field.Element {
	return field.Add(ghash, mask)
}

// Result bundles everything a single gcm_encrypt/gcm_decrypt call surfaces.
type Result struct {
	Ciphertext []byte
	Tag        block.Block
	L          block.Block
	H          block.Block
}

// Encrypt performs AES-GCM-style authenticated encryption: ciphertext is the
// plaintext XORed with the key stream; the tag authenticates (ad,
// ciphertext) under the derived auth key and mask.
func Encrypt(key, nonce, plaintext, ad []byte, encrypt BlockEncrypter) (Result, error) {
	ks, err := KeyStream(key, nonce, len(plaintext), encrypt)
	if err != nil {
		return Result{}, err
	}
	ciphertext := xorBytes(plaintext, ks)

	h := AuthKey(key, encrypt)
	mask, err := Mask(key, nonce, encrypt)
	if err != nil {
		return Result{}, err
	}
	ghash := GHASH(h, ad, ciphertext)
	tag := tagFromGhash(ghash, mask)

	return Result{
		Ciphertext: ciphertext,
		Tag:        tag.ToBlockGCM(),
		L:          LengthBlock(len(ad), len(ciphertext)).ToBlockGCM(),
		H:          h.ToBlockGCM(),
	}, nil
}

// DecryptResult bundles a gcm_decrypt call's outputs: the plaintext is
// returned regardless of authenticity, per spec.md's §4.5 error model — the
// caller decides what to do with an inauthentic result.
type DecryptResult struct {
	Authentic bool
	Plaintext []byte
}

// Decrypt recomputes the tag for (ad, ciphertext) and compares it against
// the received tag in constant time, always also returning the recovered
// plaintext.
func Decrypt(key, nonce, ciphertext, ad []byte, receivedTag block.Block, encrypt BlockEncrypter) (DecryptResult, error) {
	plaintext, err := applyKeyStream(key, nonce, ciphertext, encrypt)
	if err != nil {
		return DecryptResult{}, err
	}

	h := AuthKey(key, encrypt)
	mask, err := Mask(key, nonce, encrypt)
	if err != nil {
		return DecryptResult{}, err
	}
	ghash := GHASH(h, ad, ciphertext)
	computed := tagFromGhash(ghash, mask).ToBlockGCM()

	authentic := util.ConstantTimeCompare(computed[:], receivedTag[:])

	return DecryptResult{Authentic: authentic, Plaintext: plaintext}, nil
}

func applyKeyStream(key, nonce, data []byte, encrypt BlockEncrypter) ([]byte, error) {
	ks, err := KeyStream(key, nonce, len(data), encrypt)
	if err != nil {
		return nil, err
	}
	return xorBytes(data, ks), nil
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
