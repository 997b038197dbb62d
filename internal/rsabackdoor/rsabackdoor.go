// Package rsabackdoor implements the RSA key structure and the
// Glasskey-backdoor attack: given an RSA public modulus known to have been
// generated with internal/glasskey and the agency's secret key, the private
// exponent is recoverable in closed form because the primes are
// deterministic functions of a seed hidden in the modulus's top 64 bits.
//
// DER encoding, X.509 certificate parsing, and CMS envelope handling named
// alongside this attack in the original kauma source are out of scope (see
// spec.md §1's explicit collaborator scoping); this package operates
// directly on the numeric public modulus and the agency key.
//
// Reference: rsa_backdoor/rsa.go, rsa_backdoor/glasskey_break.py in the
// original kauma source.
package rsabackdoor

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/kauma-project/kauma/internal/glasskey"
)

// ErrNotInvertible is returned when the public exponent has no inverse
// modulo phi(n) — a malformed or non-backdoored key was supplied.
var ErrNotInvertible = errors.New("rsabackdoor: exponent not invertible mod phi(n)")

// PublicExponent is the fixed RSA public exponent the Glasskey generator
// always pairs with its backdoored primes.
var PublicExponent = big.NewInt(65537)

// Key is an RSA key pair recovered (or, for testing, freshly generated)
// around the backdoored prime structure.
type Key struct {
	N *big.Int
	E *big.Int
	D *big.Int
	P *big.Int
	Q *big.Int
}

// FromPrimes builds a full key pair from p, q, and the fixed public
// exponent, as the legitimate key generator would.
func FromPrimes(p, q *big.Int) (Key, error) {
	n := new(big.Int).Mul(p, q)
	phi := new(big.Int).Mul(
		new(big.Int).Sub(p, one),
		new(big.Int).Sub(q, one),
	)
	d := new(big.Int).ModInverse(PublicExponent, phi)
	if d == nil {
		return Key{}, ErrNotInvertible
	}
	return Key{N: n, E: PublicExponent, D: d, P: p, Q: q}, nil
}

var one = big.NewInt(1)

// SeedFromModulus extracts the 64-bit backdoor seed hidden in the top bits
// of a public modulus n.
func SeedFromModulus(n *big.Int) []byte {
	shift := uint(n.BitLen() - 64)
	seed := new(big.Int).Rsh(n, shift)
	raw := seed.Bytes()
	out := make([]byte, 8)
	copy(out[8-len(raw):], raw)
	return out
}

// Break recovers the private key for a public modulus n known to have been
// generated by Glasskey with the given agency key: the seed is read back
// out of n's top 64 bits, the primes are regenerated deterministically, and
// the private exponent follows directly.
func Break(n *big.Int, agencyKey []byte) (Key, error) {
	seed := SeedFromModulus(n)
	gk := glasskey.New(agencyKey, seed)
	p, q := gk.GenKey(n.BitLen())

	recoveredN := new(big.Int).Mul(p, q)
	if recoveredN.Cmp(n) != 0 {
		return Key{}, errors.New("rsabackdoor: regenerated modulus does not match target")
	}

	return FromPrimes(p, q)
}

// Encrypt performs raw RSA encryption: c = m^e mod n.
func Encrypt(key Key, m *big.Int) *big.Int {
	return new(big.Int).Exp(m, key.E, key.N)
}

// Decrypt performs raw RSA decryption: m = c^d mod n.
func Decrypt(key Key, c *big.Int) *big.Int {
	return new(big.Int).Exp(c, key.D, key.N)
}

// RandomMessage draws a uniformly random plaintext in [0, n) for tests that
// need a message to round-trip; it is not part of the attack itself.
func RandomMessage(n *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, n)
}
