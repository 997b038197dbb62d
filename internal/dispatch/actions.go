package dispatch

import (
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/kauma-project/kauma/internal/block"
	"github.com/kauma-project/kauma/internal/crack"
	"github.com/kauma-project/kauma/internal/field"
	"github.com/kauma-project/kauma/internal/gcmcore"
	"github.com/kauma-project/kauma/internal/gfpoly"
	"github.com/kauma-project/kauma/internal/fde"
	"github.com/kauma-project/kauma/internal/sea128"
)

// actionFunc handles one test case's raw argument object and produces its
// result value, or an error per spec.md §7's tagged-failure model. rng
// supplies EDF's randomness for the whole dispatch run.
type actionFunc func(raw json.RawMessage, rng *rand.Rand) (interface{}, error)

// actions is the table of every action the core exposes, per spec.md §6,
// plus the sea128/xex collaborators SPEC_FULL wires in as supplemented
// features.
var actions = map[string]actionFunc{
	"poly2block":        actionPoly2Block,
	"block2poly":        actionBlock2Poly,
	"gfmul":              actionGFMul,
	"gfdiv":              actionGFDiv,
	"gfpoly_add":         actionGFPolyAdd,
	"gfpoly_mul":         actionGFPolyMul,
	"gfpoly_pow":         actionGFPolyPow,
	"gfpoly_divmod":      actionGFPolyDivMod,
	"gfpoly_powmod":      actionGFPolyPowMod,
	"gfpoly_sort":        actionGFPolySort,
	"gfpoly_make_monic":  actionGFPolyMakeMonic,
	"gfpoly_sqrt":        actionGFPolySqrt,
	"gfpoly_diff":        actionGFPolyDiff,
	"gfpoly_gcd":         actionGFPolyGCD,
	"gfpoly_factor_sff":  actionGFPolyFactorSFF,
	"gfpoly_factor_ddf":  actionGFPolyFactorDDF,
	"gfpoly_factor_edf":  actionGFPolyFactorEDF,
	"gcm_encrypt":        actionGCMEncrypt,
	"gcm_decrypt":        actionGCMDecrypt,
	"gcm_crack":          actionGCMCrack,
	"sea128":             actionSEA128,
	"xex":                actionXEX,
}

func blockEncrypterFor(algorithm string) (gcmcore.BlockEncrypter, error) {
	switch algorithm {
	case "aes128":
		return sea128.AES128Encrypt, nil
	case "sea128":
		return sea128.Encrypt, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrBadArgument, algorithm)
	}
}

// --- C1: block codec ---

func actionPoly2Block(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		Coefficients []int  `json:"coefficients"`
		Semantic     string `json:"semantic"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	var b block.Block
	var err error
	switch args.Semantic {
	case "xex":
		b, err = block.FromXEXCoefficients(args.Coefficients)
	case "gcm":
		b, err = block.FromGCMCoefficients(args.Coefficients)
	default:
		return nil, fmt.Errorf("%w: unknown semantic %q", ErrBadArgument, args.Semantic)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"block": encodeBlock(b)}, nil
}

func actionBlock2Poly(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		Block    string `json:"block"`
		Semantic string `json:"semantic"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	b, err := decodeBlock(args.Block)
	if err != nil {
		return nil, err
	}
	var coeffs []int
	switch args.Semantic {
	case "xex":
		coeffs = b.XEXCoefficients()
	case "gcm":
		coeffs = b.GCMCoefficients()
	default:
		return nil, fmt.Errorf("%w: unknown semantic %q", ErrBadArgument, args.Semantic)
	}
	return map[string]interface{}{"coefficients": coeffs}, nil
}

// --- C2: field element ---

func actionGFMul(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		A        string `json:"a"`
		B        string `json:"b"`
		Semantic string `json:"semantic"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodeElement(args.A, args.Semantic)
	if err != nil {
		return nil, err
	}
	b, err := decodeElement(args.B, args.Semantic)
	if err != nil {
		return nil, err
	}
	product, err := encodeElement(field.Mul(a, b), args.Semantic)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"product": product}, nil
}

func actionGFDiv(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		A string `json:"a"`
		B string `json:"b"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodeElement(args.A, "gcm")
	if err != nil {
		return nil, err
	}
	b, err := decodeElement(args.B, "gcm")
	if err != nil {
		return nil, err
	}
	q, err := field.Div(a, b)
	if err != nil {
		return nil, err
	}
	out, err := encodeElement(q, "gcm")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"q": out}, nil
}

// --- C3: field polynomial ---

func actionGFPolyAdd(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ A, B []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodePoly(args.A)
	if err != nil {
		return nil, err
	}
	b, err := decodePoly(args.B)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"S": encodePoly(gfpoly.Add(a, b))}, nil
}

func actionGFPolyMul(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ A, B []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodePoly(args.A)
	if err != nil {
		return nil, err
	}
	b, err := decodePoly(args.B)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"P": encodePoly(gfpoly.Mul(a, b))}, nil
}

func actionGFPolyPow(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
		K int64    `json:"k"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodePoly(args.A)
	if err != nil {
		return nil, err
	}
	z, err := gfpoly.Pow(a, big.NewInt(args.K), nil)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Z": encodePoly(z)}, nil
}

func actionGFPolyDivMod(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ A, B []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodePoly(args.A)
	if err != nil {
		return nil, err
	}
	b, err := decodePoly(args.B)
	if err != nil {
		return nil, err
	}
	q, r, err := gfpoly.DivMod(a, b)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Q": encodePoly(q), "R": encodePoly(r)}, nil
}

func actionGFPolyPowMod(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		A []string `json:"A"`
		M []string `json:"M"`
		K int64    `json:"k"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodePoly(args.A)
	if err != nil {
		return nil, err
	}
	m, err := decodePoly(args.M)
	if err != nil {
		return nil, err
	}
	z, err := gfpoly.Pow(a, big.NewInt(args.K), m)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"Z": encodePoly(z)}, nil
}

func actionGFPolySort(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		Polys [][]string `json:"polys"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	polys := make([]gfpoly.Poly, len(args.Polys))
	for i, p := range args.Polys {
		decoded, err := decodePoly(p)
		if err != nil {
			return nil, err
		}
		polys[i] = decoded
	}
	sorted := gfpoly.Sort(polys)
	out := make([][]string, len(sorted))
	for i, p := range sorted {
		out[i] = encodePoly(p)
	}
	return map[string]interface{}{"sorted_polys": out}, nil
}

func actionGFPolyMakeMonic(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ A []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodePoly(args.A)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"A*": encodePoly(gfpoly.Monic(a))}, nil
}

func actionGFPolySqrt(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ Q []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	q, err := decodePoly(args.Q)
	if err != nil {
		return nil, err
	}
	s, err := gfpoly.Sqrt(q)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"S": encodePoly(s)}, nil
}

func actionGFPolyDiff(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ F []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	f, err := decodePoly(args.F)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"F'": encodePoly(gfpoly.Diff(f))}, nil
}

func actionGFPolyGCD(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ A, B []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	a, err := decodePoly(args.A)
	if err != nil {
		return nil, err
	}
	b, err := decodePoly(args.B)
	if err != nil {
		return nil, err
	}
	g, err := gfpoly.GCD(a, b)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"G": encodePoly(g)}, nil
}

// --- C4: factorization ---

func actionGFPolyFactorSFF(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ F []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	f, err := decodePoly(args.F)
	if err != nil {
		return nil, err
	}
	terms, err := gfpoly.SFF(gfpoly.Monic(f))
	if err != nil {
		return nil, err
	}
	factors := make([]map[string]interface{}, len(terms))
	for i, t := range terms {
		factors[i] = map[string]interface{}{"factor": encodePoly(t.Factor), "exponent": t.Multiplicity}
	}
	return map[string]interface{}{"factors": factors}, nil
}

func actionGFPolyFactorDDF(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct{ F []string }
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	f, err := decodePoly(args.F)
	if err != nil {
		return nil, err
	}
	terms, err := gfpoly.DDF(gfpoly.Monic(f))
	if err != nil {
		return nil, err
	}
	factors := make([]map[string]interface{}, len(terms))
	for i, t := range terms {
		factors[i] = map[string]interface{}{"factor": encodePoly(t.Factor), "degree": t.Degree}
	}
	return map[string]interface{}{"factors": factors}, nil
}

func actionGFPolyFactorEDF(raw json.RawMessage, rng *rand.Rand) (interface{}, error) {
	var args struct {
		F []string `json:"F"`
		D int      `json:"d"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	f, err := decodePoly(args.F)
	if err != nil {
		return nil, err
	}
	factors, err := gfpoly.EDF(gfpoly.Monic(f), args.D, rng)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(factors))
	for i, p := range factors {
		out[i] = encodePoly(p)
	}
	return map[string]interface{}{"factors": out}, nil
}

// --- C5: GCM core ---

func actionGCMEncrypt(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		Algorithm string `json:"algorithm"`
		Nonce     string `json:"nonce"`
		Key       string `json:"key"`
		Plaintext string `json:"plaintext"`
		AD        string `json:"ad"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	encrypt, err := blockEncrypterFor(args.Algorithm)
	if err != nil {
		return nil, err
	}
	key, err := decodeBytes(args.Key)
	if err != nil {
		return nil, err
	}
	nonce, err := decodeBytes(args.Nonce)
	if err != nil {
		return nil, err
	}
	pt, err := decodeBytes(args.Plaintext)
	if err != nil {
		return nil, err
	}
	ad, err := decodeBytes(args.AD)
	if err != nil {
		return nil, err
	}

	res, err := gcmcore.Encrypt(key, nonce, pt, ad, encrypt)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"ciphertext": encodeBytes(res.Ciphertext),
		"tag":        res.Tag.EncodeBase64(),
		"L":          res.L.EncodeBase64(),
		"H":          res.H.EncodeBase64(),
	}, nil
}

func actionGCMDecrypt(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		Algorithm  string `json:"algorithm"`
		Nonce      string `json:"nonce"`
		Key        string `json:"key"`
		Ciphertext string `json:"ciphertext"`
		AD         string `json:"ad"`
		Tag        string `json:"tag"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	encrypt, err := blockEncrypterFor(args.Algorithm)
	if err != nil {
		return nil, err
	}
	key, err := decodeBytes(args.Key)
	if err != nil {
		return nil, err
	}
	nonce, err := decodeBytes(args.Nonce)
	if err != nil {
		return nil, err
	}
	ct, err := decodeBytes(args.Ciphertext)
	if err != nil {
		return nil, err
	}
	ad, err := decodeBytes(args.AD)
	if err != nil {
		return nil, err
	}
	tag, err := decodeBlock(args.Tag)
	if err != nil {
		return nil, err
	}

	res, err := gcmcore.Decrypt(key, nonce, ct, ad, tag, encrypt)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"authentic": res.Authentic,
		"plaintext": encodeBytes(res.Plaintext),
	}, nil
}

// --- C6: GCM cracker ---

func actionGCMCrack(raw json.RawMessage, rng *rand.Rand) (interface{}, error) {
	var args struct {
		M1 messageArgs `json:"m1"`
		M2 messageArgs `json:"m2"`
		M3 messageArgs `json:"m3"`
		Forgery struct {
			Ciphertext     string `json:"ciphertext"`
			AssociatedData string `json:"associated_data"`
		} `json:"forgery"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	m1, err := args.M1.decode()
	if err != nil {
		return nil, err
	}
	m2, err := args.M2.decode()
	if err != nil {
		return nil, err
	}
	m3, err := args.M3.decode()
	if err != nil {
		return nil, err
	}

	forgeryCT, err := decodeBytes(args.Forgery.Ciphertext)
	if err != nil {
		return nil, err
	}
	forgeryAD, err := decodeBytes(args.Forgery.AssociatedData)
	if err != nil {
		return nil, err
	}

	result, err := crack.Crack(m1, m2, m3, crack.ForgeryTarget{Ciphertext: forgeryCT, AssociatedData: forgeryAD}, rng)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"tag":  result.Tag.EncodeBase64(),
		"H":    result.H.EncodeBase64(),
		"mask": result.Mask.EncodeBase64(),
	}, nil
}

type messageArgs struct {
	Ciphertext     string `json:"ciphertext"`
	AssociatedData string `json:"associated_data"`
	Tag            string `json:"tag"`
}

func (m messageArgs) decode() (crack.Message, error) {
	ct, err := decodeBytes(m.Ciphertext)
	if err != nil {
		return crack.Message{}, err
	}
	ad, err := decodeBytes(m.AssociatedData)
	if err != nil {
		return crack.Message{}, err
	}
	tag, err := decodeBlock(m.Tag)
	if err != nil {
		return crack.Message{}, err
	}
	return crack.Message{Ciphertext: ct, AssociatedData: ad, Tag: tag}, nil
}

// --- supplemented collaborators ---

func actionSEA128(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		Mode  string `json:"mode"`
		Key   string `json:"key"`
		Input string `json:"input"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	key, err := decodeBytes(args.Key)
	if err != nil {
		return nil, err
	}
	input, err := decodeBytes(args.Input)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch args.Mode {
	case "encrypt":
		out = sea128.Encrypt(key, input)
	case "decrypt":
		out = sea128.Decrypt(key, input)
	default:
		return nil, fmt.Errorf("%w: unknown SEA-128 mode %q", ErrBadArgument, args.Mode)
	}
	return map[string]interface{}{"output": encodeBytes(out)}, nil
}

func actionXEX(raw json.RawMessage, _ *rand.Rand) (interface{}, error) {
	var args struct {
		Mode  string `json:"mode"`
		Key   string `json:"key"`
		Tweak string `json:"tweak"`
		Input string `json:"input"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	key, err := decodeBytes(args.Key)
	if err != nil {
		return nil, err
	}
	tweak, err := decodeBytes(args.Tweak)
	if err != nil {
		return nil, err
	}
	input, err := decodeBytes(args.Input)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch args.Mode {
	case "encrypt":
		out, err = fde.Encrypt(key, tweak, input)
	case "decrypt":
		out, err = fde.Decrypt(key, tweak, input)
	default:
		return nil, fmt.Errorf("%w: unknown XEX mode %q", ErrBadArgument, args.Mode)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"output": encodeBytes(out)}, nil
}
