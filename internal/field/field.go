// Package field implements F = GF(2^128) = GF(2)[x]/R(x), with
// R(x) = x^128 + x^7 + x^2 + x + 1, as used by GHASH/GCM.
//
// An Element holds its value under the GCM bit convention (see
// internal/block) as two 64-bit words (lo, hi), lo covering bit positions
// [0,64) and hi covering [64,128).
//
// Reference: galoisfield/galoisfieldelement.py, gfmul.py in the original
// kauma source.
package field

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/klauspost/cpuid/v2"

	"github.com/kauma-project/kauma/internal/block"
)

// reductionLow128 is R(x)'s low 128 bits: x^7+x^2+x+1 = 0x87. Bit 128 of
// R(x) is implicit — it is exactly the bit that overflows a 128-bit word on
// a left shift, so XOR-ing this constant in on overflow implements
// reduction mod R(x).
const reductionLow128 = 0x87

// ErrDivisionByZero is returned by Inverse and Div when the divisor is the
// zero element, and by DivModRaw when the divisor is zero.
var ErrDivisionByZero = errors.New("field: division by zero")

// Element is a value of GF(2^128).
type Element struct {
	Lo, Hi uint64
}

// Zero and One are the field's additive and multiplicative identities.
var (
	Zero = Element{0, 0}
	One  = Element{1, 0}
)

// hasFastMultiply records whether the host advertises SSE2 (with or without
// PCLMULQDQ); SSE2 alone is enough to select the windowed path. kauma never
// emits the actual
// pclmulqdq/pmull intrinsic — doing so needs architecture-specific asm this
// module does not carry — but it does pick between two portable Go
// algorithms that are bit-identical by construction: a single-bit-at-a-time
// shift-and-XOR (simplest to audit) and a 4-bit windowed table method
// (fewer, larger steps). Computed once at package init; never mutated
// afterwards, so there is no process-wide mutable handle, unlike the
// source's dynamically-compiled shared object.
var hasFastMultiply = cpuid.CPU.Supports(cpuid.SSE2, cpuid.PCLMULQDQ) || cpuid.CPU.Has(cpuid.SSE2)

// FromBlockGCM reads b under the GCM bit convention.
func FromBlockGCM(b block.Block) Element {
	lo, hi := b.GCMUint128()
	return Element{Lo: lo, Hi: hi}
}

// FromBlockXEX reads b under the XEX bit convention.
func FromBlockXEX(b block.Block) Element {
	lo, hi := b.XEXUint128()
	return Element{Lo: lo, Hi: hi}
}

// ToBlockGCM serializes e as a block under the GCM bit convention, always
// emitting the fixed 16-byte width.
func (e Element) ToBlockGCM() block.Block {
	return block.FromGCMUint128(e.Lo, e.Hi)
}

// ToBlockXEX serializes e as a block under the XEX bit convention.
func (e Element) ToBlockXEX() block.Block {
	return block.FromXEXUint128(e.Lo, e.Hi)
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.Lo == 0 && e.Hi == 0 }

// Equal reports value equality.
func (e Element) Equal(o Element) bool { return e.Lo == o.Lo && e.Hi == o.Hi }

// Compare returns -1, 0, or 1 as e is less than, equal to, or greater than
// o under plain 128-bit unsigned integer order.
func (e Element) Compare(o Element) int {
	if e.Hi != o.Hi {
		if e.Hi < o.Hi {
			return -1
		}
		return 1
	}
	if e.Lo != o.Lo {
		if e.Lo < o.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Add is GF(2^128) addition (equivalently subtraction): bitwise XOR.
func Add(a, b Element) Element {
	return Element{Lo: a.Lo ^ b.Lo, Hi: a.Hi ^ b.Hi}
}

// Sub is an alias for Add; characteristic 2 makes them identical.
func Sub(a, b Element) Element { return Add(a, b) }

// shiftLeft1Reduce shifts (lo, hi) left by one bit and, if the bit shifted
// out of position 127 was set, XORs in R(x)'s low 128 bits — the schoolbook
// "shift-and-reduce" step the algorithm is built from.
func shiftLeft1Reduce(lo, hi uint64) (nlo, nhi uint64) {
	msbSet := hi>>63 != 0
	nhi = (hi << 1) | (lo >> 63)
	nlo = lo << 1
	if msbSet {
		nlo ^= reductionLow128
	}
	return nlo, nhi
}

// mulBitSerial is the reference algorithm from spec: process bits of b from
// LSB to MSB, accumulating a shifted copy of a whenever the bit is set, and
// shifting a left by one (with reduction) after every bit.
func mulBitSerial(a, b Element) Element {
	var resultLo, resultHi uint64
	aLo, aHi := a.Lo, a.Hi
	for i := 0; i < 64; i++ {
		if b.Lo&(1<<uint(i)) != 0 {
			resultLo ^= aLo
			resultHi ^= aHi
		}
		aLo, aHi = shiftLeft1Reduce(aLo, aHi)
	}
	for i := 0; i < 64; i++ {
		if b.Hi&(1<<uint(i)) != 0 {
			resultLo ^= aLo
			resultHi ^= aHi
		}
		aLo, aHi = shiftLeft1Reduce(aLo, aHi)
	}
	return Element{Lo: resultLo, Hi: resultHi}
}

// mulWindowed4 computes the same product as mulBitSerial, but processes b
// four bits (one hex digit) at a time via a precomputed multiplication
// table, emulating the reduced instruction count a hardware carry-less
// multiplier gives.
func mulWindowed4(a, b Element) Element {
	var table [16]Element
	table[0] = Zero
	table[1] = a
	for k := 2; k < 16; k++ {
		if k%2 == 0 {
			half := table[k/2]
			lo, hi := shiftLeft1Reduce(half.Lo, half.Hi)
			table[k] = Element{Lo: lo, Hi: hi}
		} else {
			table[k] = Add(table[k-1], a)
		}
	}

	nibble := func(i int) uint64 {
		if i < 16 {
			return (b.Lo >> uint(4*i)) & 0xF
		}
		return (b.Hi >> uint(4*(i-16))) & 0xF
	}

	var result Element
	for i := 31; i >= 0; i-- {
		for s := 0; s < 4; s++ {
			result.Lo, result.Hi = shiftLeft1Reduce(result.Lo, result.Hi)
		}
		result = Add(result, table[nibble(i)])
	}
	return result
}

// Mul computes a*b mod R(x). The result is identical regardless of which
// internal algorithm is selected; this is verified by shared tests that run
// both mulBitSerial and mulWindowed4 against the same vectors.
func Mul(a, b Element) Element {
	if hasFastMultiply {
		return mulWindowed4(a, b)
	}
	return mulBitSerial(a, b)
}

// Pow computes a^k via square-and-multiply. pow(_, 0) = One;
// pow(0, k>0) = Zero; pow(1, _) = One.
func Pow(a Element, k uint64) Element {
	if k == 0 {
		return One
	}
	if a.IsZero() {
		return Zero
	}
	if a.Equal(One) {
		return One
	}
	result := One
	factor := a
	for k > 0 {
		if k&1 == 1 {
			result = Mul(result, factor)
		}
		factor = Mul(factor, factor)
		k >>= 1
	}
	return result
}

// --- raw (unreduced) GF(2) polynomial arithmetic, via math/big ---
//
// DivModRaw and Inverse operate on "plain" GF(2) polynomials with no
// reduction modulo R(x) — Inverse's extended Euclidean step must divide
// against R(x) itself, which has degree 128 and so cannot be held in a
//128-bit Element. math/big.Int is the natural representation: bit i of the
// integer is the coefficient of x^i, XOR is addition, and big.Int already
// has no fixed width. This mirrors the teacher's own reliance on math/big
// for modular arithmetic (math/ec/field_element.go).

func elementToBig(e Element) *big.Int {
	v := new(big.Int).SetUint64(e.Hi)
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(e.Lo))
	return v
}

func bigToElement(v *big.Int) Element {
	mask64 := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(v, mask64).Uint64()
	hi := new(big.Int).And(new(big.Int).Rsh(v, 64), mask64).Uint64()
	return Element{Lo: lo, Hi: hi}
}

// reductionPoly is R(x) = x^128+x^7+x^2+x+1 as a big.Int bit pattern.
func reductionPoly() *big.Int {
	r := new(big.Int).SetInt64(1)
	r.Lsh(r, 128)
	r.Or(r, big.NewInt(reductionLow128))
	return r
}

// divModRawBig divides a by b over GF(2)[x] (XOR-subtraction long division),
// returning (q, r) with deg(r) < deg(b). b must be nonzero.
func divModRawBig(a, b *big.Int) (q, r *big.Int) {
	q = new(big.Int)
	r = new(big.Int).Set(a)
	bBits := b.BitLen()
	for r.Sign() != 0 && r.BitLen() >= bBits {
		shift := uint(r.BitLen() - bBits)
		q.SetBit(q, int(shift), 1)
		shifted := new(big.Int).Lsh(b, shift)
		r.Xor(r, shifted)
	}
	return q, r
}

// DivModRaw treats a and b as plain GF(2) polynomials — no modular
// reduction by R(x) — and computes (q, r) with deg(r) < deg(b) by
// repeatedly XOR-ing a shifted copy of b into the running remainder.
// Fails with ErrDivisionByZero if b is zero.
func DivModRaw(a, b Element) (q, r Element, err error) {
	if b.IsZero() {
		return Element{}, Element{}, ErrDivisionByZero
	}
	qBig, rBig := divModRawBig(elementToBig(a), elementToBig(b))
	return bigToElement(qBig), bigToElement(rBig), nil
}

// Div computes a / b = a * Inverse(b).
func Div(a, b Element) (Element, error) {
	inv, err := Inverse(b)
	if err != nil {
		return Element{}, err
	}
	return Mul(a, inv), nil
}

// Inverse computes the multiplicative inverse of a via the extended
// Euclidean algorithm run on raw GF(2) polynomials against R(x). Fails with
// ErrDivisionByZero if a is zero.
func Inverse(a Element) (Element, error) {
	if a.IsZero() {
		return Element{}, ErrDivisionByZero
	}
	_, x, _ := extendedGCDRawBig(elementToBig(a), reductionPoly())
	return bigToElement(x), nil
}

// extendedGCDRawBig returns (gcd, x, y) with a*x XOR b*y == gcd, over
// GF(2)[x] with big.Int coefficients, XOR standing in for +/-.
func extendedGCDRawBig(a, b *big.Int) (gcd, x, y *big.Int) {
	if b.Sign() == 0 {
		return new(big.Int).Set(a), big.NewInt(1), big.NewInt(0)
	}
	q, r := divModRawBig(a, b)
	g, x1, y1 := extendedGCDRawBig(b, r)
	// a = q*b XOR r  =>  x = y1, y = x1 XOR q*y1
	newX := y1
	newY := xorRawMulBig(q, y1)
	newY.Xor(newY, x1)
	return g, newX, newY
}

// xorRawMulBig multiplies two GF(2)[x] polynomials (schoolbook, XOR as add).
func xorRawMulBig(a, b *big.Int) *big.Int {
	result := new(big.Int)
	shifted := new(big.Int).Set(a)
	bb := new(big.Int).Set(b)
	for bb.Sign() != 0 {
		if bb.Bit(0) == 1 {
			result.Xor(result, shifted)
		}
		shifted.Lsh(shifted, 1)
		bb.Rsh(bb, 1)
	}
	return result
}

// Sqrt computes the characteristic-2 square root a^(2^127), the inverse of
// squaring in GF(2^128).
func Sqrt(a Element) Element {
	return powLargeExponent(a, [2]uint64{0, 1 << 63})
}

// powLargeExponent computes a^e where e is a 128-bit exponent given as
// [lo, hi], via square-and-multiply over the full 128 exponent bits.
func powLargeExponent(a Element, e [2]uint64) Element {
	result := One
	factor := a
	for i := 0; i < 64; i++ {
		if e[0]&(1<<uint(i)) != 0 {
			result = Mul(result, factor)
		}
		factor = Mul(factor, factor)
	}
	for i := 0; i < 64; i++ {
		if e[1]&(1<<uint(i)) != 0 {
			result = Mul(result, factor)
		}
		factor = Mul(factor, factor)
	}
	return result
}

// String renders the element as a hex integer, highest word first, for
// debugging and error messages.
func (e Element) String() string {
	return fmt.Sprintf("%016x%016x", e.Hi, e.Lo)
}
