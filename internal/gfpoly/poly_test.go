package gfpoly

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kauma-project/kauma/internal/field"
)

func randomElement(r *rand.Rand) field.Element {
	return field.Element{Lo: r.Uint64(), Hi: r.Uint64()}
}

func randomPoly(r *rand.Rand, degree int) Poly {
	coeffs := make([]field.Element, degree+1)
	for i := range coeffs {
		coeffs[i] = randomElement(r)
	}
	for coeffs[degree].IsZero() {
		coeffs[degree] = randomElement(r)
	}
	return New(coeffs)
}

func TestAddMulIdentities(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		a := randomPoly(r, 3)
		b := randomPoly(r, 5)
		require.True(t, Equal(Add(a, b), Add(b, a)))
		require.True(t, Equal(Mul(a, b), Mul(b, a)))
		require.True(t, Equal(a, Mul(a, One())))
		require.True(t, Equal(Zero(), Mul(a, Zero())))
		require.True(t, Add(a, a).IsZero())
	}
}

func TestDivModReconstructs(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		a := randomPoly(r, 7)
		b := randomPoly(r, 3)
		q, rem, err := DivMod(a, b)
		require.NoError(t, err)
		require.Less(t, rem.Degree(), b.Degree())
		if !rem.IsZero() || b.Degree() != 0 {
			require.LessOrEqual(t, rem.Degree(), b.Degree()-1)
		}
		recon := Add(Mul(q, b), rem)
		require.True(t, Equal(a, recon))
	}
	_, _, err := DivMod(One(), Zero())
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMonic(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		a := randomPoly(r, 4)
		m := Monic(a)
		require.True(t, m.Leading().Equal(field.One))
	}
	require.True(t, Monic(Zero()).IsZero())
}

func TestDiff(t *testing.T) {
	// d/dx of x^2 is 0 in characteristic 2.
	p := New([]field.Element{field.Zero, field.Zero, field.One})
	require.True(t, Diff(p).IsZero())

	// d/dx of x^3 is 3x^2 = x^2 (3 mod 2 = 1).
	p3 := New([]field.Element{field.Zero, field.Zero, field.Zero, field.One})
	want := New([]field.Element{field.Zero, field.Zero, field.One})
	require.True(t, Equal(want, Diff(p3)))
}

func TestSqrtOfSquareRoundTrips(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 30; i++ {
		a := randomPoly(r, 3)
		squared := Mul(a, a)
		root, err := Sqrt(squared)
		require.NoError(t, err)
		require.True(t, Equal(a, root))
	}
}

func TestSqrtRejectsNonSquare(t *testing.T) {
	// x has an odd-indexed (degree 1) nonzero coefficient, and is not a
	// square in F[X].
	_, err := Sqrt(X())
	require.ErrorIs(t, err, ErrDegreeMismatch)
}

func TestGCD(t *testing.T) {
	// gcd(a*b, b) = monic(b) when a, b coprime-ish; use concrete small polys.
	a := New([]field.Element{field.One, field.One})      // 1 + x
	b := New([]field.Element{field.Zero, field.One})     // x
	prod := Mul(a, b)
	g, err := GCD(prod, b)
	require.NoError(t, err)
	require.True(t, Equal(Monic(b), g))
}

func TestPowModular(t *testing.T) {
	modulus := New([]field.Element{field.One, field.One, field.One}) // 1+x+x^2
	p, err := Pow(X(), big.NewInt(2), modulus)
	require.NoError(t, err)
	// X^2 mod (1+x+x^2) = 1+x (since x^2 = 1+x mod modulus).
	want := New([]field.Element{field.One, field.One})
	require.True(t, Equal(want, p))

	p0, err := Pow(X(), big.NewInt(0), nil)
	require.NoError(t, err)
	require.True(t, p0.IsOne())
}

func TestCompareAndSort(t *testing.T) {
	low := New([]field.Element{field.One})
	mid := New([]field.Element{field.Zero, field.One})
	high := New([]field.Element{field.Zero, field.Zero, field.One})

	require.True(t, Less(low, mid))
	require.True(t, Less(mid, high))

	sorted := Sort([]Poly{high, low, mid})
	require.True(t, Equal(sorted[0], low))
	require.True(t, Equal(sorted[1], mid))
	require.True(t, Equal(sorted[2], high))
}
