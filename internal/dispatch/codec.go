package dispatch

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/kauma-project/kauma/internal/block"
	"github.com/kauma-project/kauma/internal/field"
	"github.com/kauma-project/kauma/internal/gfpoly"
)

// decodeBytes decodes an arbitrary-length base64 string — unlike
// decodeBlock, the result need not be exactly one block wide (ciphertexts,
// keys, and nonces all have their own natural widths).
func decodeBytes(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func encodeBytes(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// ErrBadArgument is returned when a semantic, algorithm, or mode string
// falls outside its closed value set, per spec.md §7.
var ErrBadArgument = errors.New("dispatch: bad argument")

func decodeBlock(s string) (block.Block, error) {
	return block.DecodeBase64(s)
}

func encodeBlock(b block.Block) string {
	return b.EncodeBase64()
}

// decodeElement reads a base64 block as a field element under the named
// semantic ("xex" or "gcm").
func decodeElement(s, semantic string) (field.Element, error) {
	b, err := decodeBlock(s)
	if err != nil {
		return field.Zero, err
	}
	switch semantic {
	case "xex":
		return field.FromBlockXEX(b), nil
	case "gcm":
		return field.FromBlockGCM(b), nil
	default:
		return field.Zero, fmt.Errorf("%w: unknown semantic %q", ErrBadArgument, semantic)
	}
}

func encodeElement(e field.Element, semantic string) (string, error) {
	switch semantic {
	case "xex":
		return encodeBlock(e.ToBlockXEX()), nil
	case "gcm":
		return encodeBlock(e.ToBlockGCM()), nil
	default:
		return "", fmt.Errorf("%w: unknown semantic %q", ErrBadArgument, semantic)
	}
}

// decodePoly reads a list of base64 blocks, low-degree coefficient first,
// under the GCM convention — the convention polynomial arithmetic always
// uses per spec.md §3.
func decodePoly(blocks []string) (gfpoly.Poly, error) {
	coeffs := make([]field.Element, len(blocks))
	for i, s := range blocks {
		b, err := decodeBlock(s)
		if err != nil {
			return nil, err
		}
		coeffs[i] = field.FromBlockGCM(b)
	}
	if len(coeffs) == 0 {
		coeffs = []field.Element{field.Zero}
	}
	return gfpoly.New(coeffs), nil
}

func encodePoly(p gfpoly.Poly) []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = encodeBlock(c.ToBlockGCM())
	}
	return out
}

