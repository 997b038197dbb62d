package field

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kauma-project/kauma/internal/block"
)

func mustBlock(t *testing.T, b64 string) block.Block {
	t.Helper()
	b, err := block.DecodeBase64(b64)
	require.NoError(t, err)
	return b
}

// S3 from spec.md: gfmul under the XEX semantic.
func TestMulScenarioS3(t *testing.T) {
	a := FromBlockXEX(mustBlock(t, "ARIAAAAAAAAAAAAAAAAAgA=="))
	b := FromBlockXEX(mustBlock(t, "AgAAAAAAAAAAAAAAAAAAAA=="))

	got := Mul(a, b)

	want := FromBlockXEX(mustBlock(t, "hSQAAAAAAAAAAAAAAAAAAA=="))
	require.Equal(t, want, got)
}

func TestMulBothAlgorithmsAgree(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := randomElement(r)
		b := randomElement(r)
		require.Equal(t, mulBitSerial(a, b), mulWindowed4(a, b))
	}
}

func TestMulCommutativeAssociativeIdentities(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		a, b, c := randomElement(r), randomElement(r), randomElement(r)
		require.Equal(t, Mul(a, b), Mul(b, a))
		require.Equal(t, Mul(Mul(a, b), c), Mul(a, Mul(b, c)))
		require.Equal(t, a, Mul(a, One))
		require.Equal(t, Zero, Mul(a, Zero))
		require.True(t, Add(a, a).IsZero())
	}
}

func TestInverseAndDiv(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	for i := 0; i < 100; i++ {
		a := randomElement(r)
		if a.IsZero() {
			continue
		}
		inv, err := Inverse(a)
		require.NoError(t, err)
		require.Equal(t, One, Mul(a, inv))
	}
	_, err := Inverse(Zero)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSqrtIsInverseOfSquaring(t *testing.T) {
	r := rand.New(rand.NewSource(123))
	for i := 0; i < 100; i++ {
		a := randomElement(r)
		s := Sqrt(a)
		require.Equal(t, a, Mul(s, s))
	}
}

func TestPowIdentitiesAndFermat(t *testing.T) {
	r := rand.New(rand.NewSource(55))
	for i := 0; i < 50; i++ {
		a := randomElement(r)
		require.Equal(t, One, Pow(a, 0))
		if a.IsZero() {
			require.Equal(t, Zero, Pow(a, 7))
			continue
		}
		// a^(2^128-1) = 1 for a != 0.
		require.Equal(t, One, powMaxMinusOne(a))
	}
}

// powMaxMinusOne computes a^(2^128-1) via the large-exponent ladder.
func powMaxMinusOne(a Element) Element {
	return powLargeExponent(a, [2]uint64{^uint64(0), ^uint64(0)})
}

func TestDivModRaw(t *testing.T) {
	r := rand.New(rand.NewSource(321))
	for i := 0; i < 100; i++ {
		a := randomElement(r)
		b := randomElement(r)
		if b.IsZero() {
			continue
		}
		q, rem, err := DivModRaw(a, b)
		require.NoError(t, err)
		// a == q*b XOR rem, multiplication here is *raw* (no modulus).
		prod := xorRawMulBig(elementToBig(q), elementToBig(b))
		prod.Xor(prod, elementToBig(rem))
		require.Equal(t, elementToBig(a), prod)
	}
	_, _, err := DivModRaw(One, Zero)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func randomElement(r *rand.Rand) Element {
	return Element{Lo: r.Uint64(), Hi: r.Uint64()}
}
