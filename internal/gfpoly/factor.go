package gfpoly

import (
	"math/big"
	"math/rand"

	"github.com/kauma-project/kauma/internal/field"
)

// q is the field's cardinality, 2^128.
var q = new(big.Int).Lsh(big.NewInt(1), 128)

func qPow(d int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(128*d))
}

// SFFTerm is one (factor, multiplicity) pair of a square-free factorization.
type SFFTerm struct {
	Factor     Poly
	Multiplicity int
}

// SFF computes the square-free factorization of a nonzero monic f: Yun's
// algorithm, adapted to characteristic 2 where the formal derivative kills
// even-degree terms.
//
// Reference: gcm/find_roots.py (sff) in the original kauma source.
func SFF(f Poly) ([]SFFTerm, error) {
	var z []SFFTerm

	c, err := GCD(f, Diff(f))
	if err != nil {
		return nil, err
	}
	cur, err := Floor(f, c)
	if err != nil {
		return nil, err
	}
	e := 1

	for !cur.IsOne() {
		y, err := GCD(cur, c)
		if err != nil {
			return nil, err
		}
		if !Equal(cur, y) {
			factor, err := Floor(cur, y)
			if err != nil {
				return nil, err
			}
			z = append(z, SFFTerm{Factor: factor, Multiplicity: e})
		}
		cur = y
		c, err = Floor(c, y)
		if err != nil {
			return nil, err
		}
		e++
	}

	if !c.IsOne() {
		root, err := Sqrt(c)
		if err != nil {
			return nil, err
		}
		inner, err := SFF(root)
		if err != nil {
			return nil, err
		}
		for _, t := range inner {
			z = append(z, SFFTerm{Factor: t.Factor, Multiplicity: 2 * t.Multiplicity})
		}
	}

	sortSFF(z)
	return z, nil
}

func sortSFF(z []SFFTerm) {
	for i := 1; i < len(z); i++ {
		for j := i; j > 0 && Less(z[j].Factor, z[j-1].Factor); j-- {
			z[j], z[j-1] = z[j-1], z[j]
		}
	}
}

// DDFTerm is one (factor, degree) pair of a distinct-degree factorization:
// factor is the product of all irreducible factors of the input polynomial
// of degree d.
type DDFTerm struct {
	Factor Poly
	Degree int
}

// DDF computes the distinct-degree factorization of a square-free monic f.
//
// Reference: gcm/find_roots.py (ddf) in the original kauma source.
func DDF(f Poly) ([]DDFTerm, error) {
	var z []DDFTerm
	d := 1
	fStar := f.Clone()

	for fStar.Degree() >= 2*d {
		xPowQd, err := Pow(X(), qPow(d), fStar)
		if err != nil {
			return nil, err
		}
		h := Add(xPowQd, X())
		_, h, err = DivMod(h, fStar)
		if err != nil {
			return nil, err
		}

		g, err := GCD(h, fStar)
		if err != nil {
			return nil, err
		}
		if !g.IsOne() {
			z = append(z, DDFTerm{Factor: g, Degree: d})
			fStar, err = Floor(fStar, g)
			if err != nil {
				return nil, err
			}
		}
		d++
	}

	if !fStar.IsOne() {
		z = append(z, DDFTerm{Factor: fStar, Degree: fStar.Degree()})
	} else if len(z) == 0 {
		z = append(z, DDFTerm{Factor: f, Degree: 1})
	}

	sortDDF(z)
	return z, nil
}

func sortDDF(z []DDFTerm) {
	for i := 1; i < len(z); i++ {
		for j := i; j > 0 && Less(z[j].Factor, z[j-1].Factor); j-- {
			z[j], z[j-1] = z[j-1], z[j]
		}
	}
}

// EDF splits a monic f, all of whose irreducible factors have degree d, into
// its n = deg(f)/d irreducible factors via char-2 Cantor-Zassenhaus. rng
// supplies the random polynomials; it is always caller-owned, never the
// Glasskey backdoored generator used elsewhere in the system (see §9 of the
// design notes).
//
// Reference: gcm/find_roots.py (edf) in the original kauma source.
func EDF(f Poly, d int, rng *rand.Rand) ([]Poly, error) {
	n := f.Degree() / d
	z := []Poly{f.Clone()}
	if n <= 1 {
		return Sort(z), nil
	}

	exp := new(big.Int).Sub(qPow(d), big.NewInt(1))
	exp.Div(exp, big.NewInt(3))

	for len(z) < n {
		h := randomPolyBelowDegree(rng, f.Degree())

		g, err := Pow(h, exp, f)
		if err != nil {
			return nil, err
		}
		g = Add(g, One())

		next := make([]Poly, 0, len(z))
		for _, u := range z {
			if u.Degree() <= d {
				next = append(next, u)
				continue
			}
			j, err := GCD(u, g)
			if err != nil {
				return nil, err
			}
			if !j.IsOne() && !Equal(j, u) {
				quotient, err := Floor(u, j)
				if err != nil {
					return nil, err
				}
				next = append(next, j, quotient)
			} else {
				next = append(next, u)
			}
		}
		z = next
	}

	return Sort(z), nil
}

// randomPolyBelowDegree draws a uniformly random polynomial of degree in
// [1, maxDegree-1] with random field-element coefficients.
func randomPolyBelowDegree(rng *rand.Rand, maxDegree int) Poly {
	if maxDegree < 2 {
		maxDegree = 2
	}
	degree := 1 + rng.Intn(maxDegree-1)
	coeffs := make([]field.Element, degree+1)
	for i := range coeffs {
		coeffs[i] = field.Element{Lo: rng.Uint64(), Hi: rng.Uint64()}
	}
	for coeffs[degree].IsZero() {
		coeffs[degree] = field.Element{Lo: rng.Uint64(), Hi: rng.Uint64()}
	}
	return New(coeffs)
}

// FindRoots returns every field-element root of f, sorted by field.Element's
// integer order: SFF, then DDF per square-free factor, then EDF on every
// non-linear equal-degree batch of degree-1 factors.
//
// Reference: gcm/find_roots.py (find_roots) in the original kauma source.
func FindRoots(f Poly, rng *rand.Rand) ([]field.Element, error) {
	sff, err := SFF(Monic(f))
	if err != nil {
		return nil, err
	}

	var roots []field.Element
	for _, sffTerm := range sff {
		ddf, err := DDF(sffTerm.Factor)
		if err != nil {
			return nil, err
		}
		for _, ddfTerm := range ddf {
			if ddfTerm.Degree != 1 {
				continue
			}
			if ddfTerm.Factor.Degree() == ddfTerm.Degree {
				roots = append(roots, ddfTerm.Factor[0])
				continue
			}
			linear, err := EDF(ddfTerm.Factor, ddfTerm.Degree, rng)
			if err != nil {
				return nil, err
			}
			for _, lin := range linear {
				if lin.Degree() == 1 {
					roots = append(roots, lin[0])
				}
			}
		}
	}

	sortElements(roots)
	return roots, nil
}

func sortElements(roots []field.Element) {
	for i := 1; i < len(roots); i++ {
		for j := i; j > 0 && roots[j].Compare(roots[j-1]) < 0; j-- {
			roots[j], roots[j-1] = roots[j-1], roots[j]
		}
	}
}
