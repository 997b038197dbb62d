// Package gfpoly implements F[X], the ring of polynomials with
// coefficients in field.Element = GF(2^128): addition, multiplication,
// Euclidean division, exponentiation (optionally modular), GCD, formal
// differentiation, a characteristic-2 square root, monic normalization, and
// the total order the kauma dispatcher freezes for gfpoly_sort.
//
// Reference: galoisfield/galoisfieldpolynomial.py in the original kauma
// source.
package gfpoly

import (
	"errors"
	"math/big"
	"sort"

	"github.com/kauma-project/kauma/internal/field"
)

// ErrDivisionByZero is returned by DivMod and derived operations when the
// divisor is the zero polynomial.
var ErrDivisionByZero = errors.New("gfpoly: division by zero")

// ErrDegreeMismatch is returned by Sqrt when the input is not a perfect
// square: some odd-indexed coefficient is nonzero.
var ErrDegreeMismatch = errors.New("gfpoly: not a perfect square")

// Poly is a polynomial over F, coefficients low-degree first. A normalized
// Poly either has length 1 (possibly the zero polynomial [0]) or a nonzero
// leading coefficient.
type Poly []field.Element

// Zero, One, and X are the zero polynomial, the constant 1, and the
// monomial X.
func Zero() Poly { return Poly{field.Zero} }
func One() Poly  { return Poly{field.One} }
func X() Poly    { return Poly{field.Zero, field.One} }

// New builds a normalized Poly from coefficients, low-degree first.
func New(coefficients []field.Element) Poly {
	p := make(Poly, len(coefficients))
	copy(p, coefficients)
	return normalize(p)
}

func normalize(p Poly) Poly {
	n := len(p)
	for n > 1 && p[n-1].IsZero() {
		n--
	}
	return p[:n]
}

// Degree returns the polynomial's degree; the zero polynomial has degree 0
// by this package's convention (its coefficient list has length 1), matching
// spec.md's normalization invariant.
func (p Poly) Degree() int { return len(p) - 1 }

// IsZero reports whether p is the zero polynomial.
func (p Poly) IsZero() bool { return len(p) == 1 && p[0].IsZero() }

// IsOne reports whether p is the constant polynomial 1.
func (p Poly) IsOne() bool { return len(p) == 1 && p[0].Equal(field.One) }

// Leading returns the leading (highest-degree) coefficient.
func (p Poly) Leading() field.Element { return p[len(p)-1] }

// Clone returns an independent copy of p.
func (p Poly) Clone() Poly {
	out := make(Poly, len(p))
	copy(out, p)
	return out
}

// Equal reports whether a and b have identical normalized coefficients.
func Equal(a, b Poly) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Add computes a+b: pointwise XOR, padding the shorter with zeros.
func Add(a, b Poly) Poly {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make(Poly, n)
	for i := 0; i < n; i++ {
		var ca, cb field.Element
		if i < len(a) {
			ca = a[i]
		}
		if i < len(b) {
			cb = b[i]
		}
		out[i] = field.Add(ca, cb)
	}
	return normalize(out)
}

// Mul computes a*b via schoolbook convolution.
func Mul(a, b Poly) Poly {
	if a.IsZero() || b.IsZero() {
		return Zero()
	}
	out := make(Poly, len(a)+len(b)-1)
	for i := range out {
		out[i] = field.Zero
	}
	for i, ca := range a {
		if ca.IsZero() {
			continue
		}
		for j, cb := range b {
			out[i+j] = field.Add(out[i+j], field.Mul(ca, cb))
		}
	}
	return normalize(out)
}

// DivMod performs Euclidean long division: a = q*b + r, deg(r) < deg(b).
// Fails with ErrDivisionByZero if b is zero.
func DivMod(a, b Poly) (q, r Poly, err error) {
	if b.IsZero() {
		return nil, nil, ErrDivisionByZero
	}
	r = a.Clone()
	leadB := b.Leading()
	degB := b.Degree()

	if r.IsZero() || r.Degree() < degB {
		return Zero(), r, nil
	}

	qCoeffs := make([]field.Element, r.Degree()-degB+1)
	for i := range qCoeffs {
		qCoeffs[i] = field.Zero
	}

	for !r.IsZero() && r.Degree() >= degB {
		t := r.Degree() - degB
		c, divErr := field.Div(r.Leading(), leadB)
		if divErr != nil {
			return nil, nil, divErr
		}
		qCoeffs[t] = c

		// r -= c*b shifted by t
		for i, bc := range b {
			idx := i + t
			r[idx] = field.Add(r[idx], field.Mul(c, bc))
		}
		r = normalize(r)
	}

	return normalize(Poly(qCoeffs)), r, nil
}

// Floor divides a by b, discarding the remainder.
func Floor(a, b Poly) (Poly, error) {
	q, _, err := DivMod(a, b)
	return q, err
}

// Mod computes a mod b.
func Mod(a, b Poly) (Poly, error) {
	_, r, err := DivMod(a, b)
	return r, err
}

// Monic returns a scaled so its leading coefficient is 1. The zero
// polynomial is returned unchanged.
func Monic(a Poly) Poly {
	if a.IsZero() {
		return a.Clone()
	}
	lead := a.Leading()
	if lead.Equal(field.One) {
		return a.Clone()
	}
	inv, err := field.Inverse(lead)
	if err != nil {
		// lead is nonzero by construction (normalize strips trailing zeros).
		panic("gfpoly: monic on polynomial with zero leading coefficient")
	}
	out := make(Poly, len(a))
	for i, c := range a {
		out[i] = field.Mul(c, inv)
	}
	return out
}

// Diff computes the formal derivative in characteristic 2: only odd-degree
// terms survive, each losing one degree.
func Diff(a Poly) Poly {
	if a.Degree() == 0 {
		return Zero()
	}
	out := make(Poly, a.Degree())
	for i := range out {
		out[i] = field.Zero
	}
	for i := 1; i < len(a); i++ {
		if i%2 == 1 {
			out[i-1] = a[i]
		}
	}
	return normalize(out)
}

// Sqrt computes the square root of a polynomial all of whose odd-indexed
// coefficients are zero, i.e. a is a perfect square in F[X]. Fails with
// ErrDegreeMismatch otherwise.
func Sqrt(a Poly) (Poly, error) {
	for i := 1; i < len(a); i += 2 {
		if !a[i].IsZero() {
			return nil, ErrDegreeMismatch
		}
	}
	n := (len(a) + 1) / 2
	out := make(Poly, n)
	for i := 0; i < n; i++ {
		out[i] = field.Sqrt(a[2*i])
	}
	return normalize(out), nil
}

// GCD computes the monic greatest common divisor of a and b via the
// Euclidean algorithm. gcd(0, x) = monic(x); gcd(0, 0) = 0.
func GCD(a, b Poly) (Poly, error) {
	x, y := a.Clone(), b.Clone()
	for !y.IsZero() {
		_, r, err := DivMod(x, y)
		if err != nil {
			return nil, err
		}
		x, y = y, r
	}
	return Monic(x), nil
}

// Pow computes a^k via square-and-multiply. When modulus is non-nil, a is
// reduced mod modulus once at the start and the accumulator is reduced
// after every multiplication/squaring. pow(_, 0) = One; the constant
// polynomials 0 and 1 short-circuit regardless of k.
func Pow(a Poly, k *big.Int, modulus Poly) (Poly, error) {
	if k.Sign() == 0 {
		return One(), nil
	}
	if a.IsZero() {
		return Zero(), nil
	}
	if a.IsOne() {
		return One(), nil
	}

	reduce := func(p Poly) (Poly, error) {
		if modulus == nil {
			return p, nil
		}
		_, r, err := DivMod(p, modulus)
		return r, err
	}

	factor, err := reduce(a)
	if err != nil {
		return nil, err
	}
	result := One()

	bits := k.BitLen()
	for i := 0; i < bits; i++ {
		if k.Bit(i) == 1 {
			result = Mul(result, factor)
			result, err = reduce(result)
			if err != nil {
				return nil, err
			}
		}
		if i != bits-1 {
			factor = Mul(factor, factor)
			factor, err = reduce(factor)
			if err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// Compare implements the frozen total order on normalized polynomials:
// first by degree (equivalently length) ascending; ties broken by
// comparing coefficients from highest degree down under field.Element's
// integer order.
func Compare(a, b Poly) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Less reports whether a sorts before b under Compare.
func Less(a, b Poly) bool { return Compare(a, b) < 0 }

// Sort returns a sorted copy of polys under Compare.
func Sort(polys []Poly) []Poly {
	out := make([]Poly, len(polys))
	copy(out, polys)
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}
