// Package glasskey implements the "Glasskey" backdoored pseudo-random
// generator: an HMAC-SHA256 stream keyed from an agency secret and a public
// seed, used by internal/rsabackdoor to regenerate RSA primes that look
// random but are fully determined once the seed leaks through the public
// modulus. It is never used by the factorization pipeline's EDF step (see
// spec.md §9's design note) — this PRNG exists only to be broken.
//
// Reference: rsa_backdoor/glasskey.py in the original kauma source.
package glasskey

import (
	"crypto/hmac"
	"crypto/sha256"
	"math/big"

	"github.com/kauma-project/kauma/util"
)

// Glasskey is a deterministic byte stream derived from an agency key and a
// seed: HMAC-SHA256(sha256(agencyKey) || sha256(seed), littleEndian64(i))
// for i = 0, 1, 2, …, concatenated.
type Glasskey struct {
	agencyKey []byte
	seed      []byte

	blockIndex uint64
	block      []byte
	position   int
}

// New constructs a Glasskey stream for the given agency key and seed.
func New(agencyKey, seed []byte) *Glasskey {
	return &Glasskey{agencyKey: agencyKey, seed: seed}
}

func (g *Glasskey) deriveKStar() []byte {
	kHash := sha256.Sum256(g.agencyKey)
	sHash := sha256.Sum256(g.seed)
	kStar := make([]byte, 0, len(kHash)+len(sHash))
	kStar = append(kStar, kHash[:]...)
	kStar = append(kStar, sHash[:]...)
	return kStar
}

func (g *Glasskey) nextBlock() []byte {
	var iBytes [8]byte
	util.Uint64ToLittleEndian(g.blockIndex, iBytes[:], 0)
	g.blockIndex++

	mac := hmac.New(sha256.New, g.deriveKStar())
	mac.Write(iBytes[:])
	return mac.Sum(nil)
}

// Bytes returns the next n pseudo-random bytes from the stream.
func (g *Glasskey) Bytes(n int) []byte {
	out := make([]byte, 0, n)
	for len(out) < n {
		if g.block == nil || g.position >= len(g.block) {
			g.block = g.nextBlock()
			g.position = 0
		}
		take := n - len(out)
		if avail := len(g.block) - g.position; avail < take {
			take = avail
		}
		out = append(out, g.block[g.position:g.position+take]...)
		g.position += take
	}
	return out
}

// IntBits returns the next b bits of the stream as a little-endian integer,
// masked down to exactly b bits.
func (g *Glasskey) IntBits(b int) *big.Int {
	length := (b + 7) / 8
	raw := g.Bytes(length)

	v := new(big.Int)
	for i := len(raw) - 1; i >= 0; i-- {
		v.Lsh(v, 8)
		v.Or(v, big.NewInt(int64(raw[i])))
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(b)), big.NewInt(1))
	v.And(v, mask)
	return v
}

// IntRange returns a uniformly distributed integer in [min, max] via
// rejection sampling over IntBits.
func (g *Glasskey) IntRange(min, max *big.Int) *big.Int {
	span := new(big.Int).Sub(max, min)
	span.Add(span, big.NewInt(1))
	bits := span.BitLen()

	for {
		r := g.IntBits(bits)
		if r.Cmp(span) < 0 {
			return r.Add(r, min)
		}
	}
}

// millerRabinRounds mirrors the source's fixed round count; math/big's own
// ProbablyPrime already implements Miller-Rabin plus a Baillie-PSW check, so
// GenKey below defers to it rather than hand-rolling the primality test.
const millerRabinRounds = 20

var one = big.NewInt(1)
var two = big.NewInt(2)

// GenKey reproduces the backdoored RSA prime-pair derivation: draw an
// l/2-bit prime p with its top two bits and its LSB forced to 1, then derive
// a companion prime q so that n = p*q falls in the range whose top 64 bits
// equal the seed this Glasskey was constructed with.
func (g *Glasskey) GenKey(bitLen int) (p, q *big.Int) {
	halfLen := bitLen / 2

	p = g.IntBits(halfLen)
	topBits := new(big.Int).Lsh(big.NewInt(3), uint(halfLen-2))
	p.Or(p, one)
	p.Or(p, topBits)
	for !p.ProbablyPrime(millerRabinRounds) {
		p.Add(p, two)
	}

	r := new(big.Int).Lsh(one, uint(bitLen-64))
	seedInt := new(big.Int).SetBytes(g.seed)
	nl := new(big.Int).Mul(seedInt, r)
	nh := new(big.Int).Add(nl, new(big.Int).Sub(r, one))

	ql := new(big.Int).Add(new(big.Int).Div(nl, p), one)
	qh := new(big.Int).Div(nh, p)

	q = g.IntRange(ql, qh)
	q.Or(q, one)
	for !q.ProbablyPrime(millerRabinRounds) {
		q.Add(q, two)
	}

	return p, q
}
