// Package crack implements the GCM nonce-misuse forgery: given three
// messages authenticated under the same (key, nonce) and a forgery target,
// recover the GHASH multiplier H and the one-time mask E_K(Y_0), then forge
// a valid tag for attacker-chosen ciphertext and associated data.
//
// Reference: gcm/gcm_crack.py in the original kauma source.
package crack

import (
	"errors"
	"math/rand"

	"github.com/kauma-project/kauma/internal/block"
	"github.com/kauma-project/kauma/internal/field"
	"github.com/kauma-project/kauma/internal/gcmcore"
	"github.com/kauma-project/kauma/internal/gfpoly"
)

// ErrCollidingMessages is returned when the two known messages yield an
// identical T polynomial — M1 and M2 carry no information to distinguish H.
var ErrCollidingMessages = errors.New("crack: colliding messages")

// ErrNoKeyCandidate is returned when no root of the difference polynomial
// verifies against the third message.
var ErrNoKeyCandidate = errors.New("crack: no key candidate verified")

// Message is one observed GCM ciphertext, its associated data, and its
// authentication tag, all under the same (unknown) key and nonce.
type Message struct {
	Ciphertext     []byte
	AssociatedData []byte
	Tag            block.Block
}

// ForgeryTarget is an attacker-chosen (ciphertext, associated data) pair
// with no tag — the crack's output is a tag that will be accepted for it.
type ForgeryTarget struct {
	Ciphertext     []byte
	AssociatedData []byte
}

// Result carries the recovered authentication key, the one-time mask, and
// the forged tag for the requested target.
type Result struct {
	Tag  block.Block
	H    block.Block
	Mask block.Block
}

// buildT constructs the per-message polynomial T(Y) described in spec.md
// §4.6: coefficient 0 is the tag, coefficient 1 is the length block, then
// the ciphertext blocks in reverse (highest index first), then the
// associated-data blocks in reverse. T(H) equals the mask E_K(Y_0), so the
// sum of two messages' T polynomials under the same key and nonce vanishes
// at Y = H.
func buildT(m Message) gfpoly.Poly {
	tag := field.FromBlockGCM(m.Tag)
	l := gcmcore.LengthBlock(len(m.AssociatedData), len(m.Ciphertext))

	cBlocks := gcmcore.BlocksOf(m.Ciphertext)
	aBlocks := gcmcore.BlocksOf(m.AssociatedData)

	coeffs := make([]field.Element, 0, 2+len(cBlocks)+len(aBlocks))
	coeffs = append(coeffs, tag, l)
	for i := len(cBlocks) - 1; i >= 0; i-- {
		coeffs = append(coeffs, cBlocks[i])
	}
	for i := len(aBlocks) - 1; i >= 0; i-- {
		coeffs = append(coeffs, aBlocks[i])
	}
	return gfpoly.New(coeffs)
}

// verify recomputes M3's tag under candidate H and the mask derived from M1,
// reporting whether it matches M3's observed tag, and the mask value used.
func verify(h field.Element, m1, m3 Message) (mask field.Element, ok bool) {
	ghash1 := gcmcore.GHASH(h, m1.AssociatedData, m1.Ciphertext)
	mask = field.Add(ghash1, field.FromBlockGCM(m1.Tag))

	ghash3 := gcmcore.GHASH(h, m3.AssociatedData, m3.Ciphertext)
	candidateTag3 := field.Add(ghash3, mask)

	return mask, candidateTag3.Equal(field.FromBlockGCM(m3.Tag))
}

// Crack recovers H and the mask from m1 and m2, validates the recovered key
// against m3, and forges a tag for target. rng drives the factorization
// pipeline's equal-degree-factorization step; it is never the Glasskey
// backdoored generator used elsewhere.
func Crack(m1, m2, m3 Message, target ForgeryTarget, rng *rand.Rand) (Result, error) {
	t1 := buildT(m1)
	t2 := buildT(m2)

	fPoly := gfpoly.Add(t1, t2)
	if fPoly.IsZero() {
		return Result{}, ErrCollidingMessages
	}
	fPoly = gfpoly.Monic(fPoly)

	roots, err := gfpoly.FindRoots(fPoly, rng)
	if err != nil {
		return Result{}, err
	}

	var h, mask field.Element
	found := false
	for _, candidate := range roots {
		if candidate.IsZero() {
			continue
		}
		m, ok := verify(candidate, m1, m3)
		if ok {
			h, mask, found = candidate, m, true
			break
		}
	}
	if !found {
		return Result{}, ErrNoKeyCandidate
	}

	ghashTarget := gcmcore.GHASH(h, target.AssociatedData, target.Ciphertext)
	forgedTag := field.Add(ghashTarget, mask)

	return Result{
		Tag:  forgedTag.ToBlockGCM(),
		H:    h.ToBlockGCM(),
		Mask: mask.ToBlockGCM(),
	}, nil
}
