// Package block implements the 128-bit block codec described in the
// kauma laboratory's data model: conversion between base64 strings, raw
// 16-byte blocks, and the two bit conventions ("XEX" and "GCM") under which
// a block can be read as a 128-bit integer or a set of coefficient indices.
//
// Reference: block_poly/base.py, block_poly/block.py, block_poly/xex_poly.py
// in the original kauma source.
package block

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

// Size is the fixed width, in bytes, of every block.
const Size = 16

// ErrMalformedBlock is returned when a base64 string does not decode to
// exactly Size bytes.
var ErrMalformedBlock = errors.New("block: malformed block")

// Block is a 128-bit value held in its raw byte form, memory order.
type Block [Size]byte

// DecodeBase64 decodes s and fails with ErrMalformedBlock unless it yields
// exactly Size bytes.
func DecodeBase64(s string) (Block, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}
	if len(raw) != Size {
		return Block{}, fmt.Errorf("%w: decoded to %d bytes, want %d", ErrMalformedBlock, len(raw), Size)
	}
	var b Block
	copy(b[:], raw)
	return b, nil
}

// EncodeBase64 is the inverse of DecodeBase64.
func (b Block) EncodeBase64() string {
	return base64.StdEncoding.EncodeToString(b[:])
}

// Bytes returns the underlying 16 bytes.
func (b Block) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, b[:])
	return out
}

// FromBytes builds a Block from exactly Size bytes.
func FromBytes(raw []byte) (Block, error) {
	if len(raw) != Size {
		return Block{}, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedBlock, len(raw), Size)
	}
	var b Block
	copy(b[:], raw)
	return b, nil
}

// reverseByte reverses the bit order within a single byte — the
// transformation that turns the XEX bit-convention byte into the GCM
// bit-convention byte, and vice versa (the conversion is its own inverse).
func reverseByte(b byte) byte {
	return bits.Reverse8(b)
}

// xexBytesToUint128 reads raw as a little-endian 128-bit integer: byte i,
// bit j occupies integer position 8*i+j.
func xexBytesToUint128(raw [Size]byte) (lo, hi uint64) {
	for i := 0; i < 8; i++ {
		lo |= uint64(raw[i]) << (8 * i)
	}
	for i := 0; i < 8; i++ {
		hi |= uint64(raw[8+i]) << (8 * i)
	}
	return lo, hi
}

// uint128ToXEXBytes is the inverse of xexBytesToUint128.
func uint128ToXEXBytes(lo, hi uint64) [Size]byte {
	var raw [Size]byte
	for i := 0; i < 8; i++ {
		raw[i] = byte(lo >> (8 * i))
	}
	for i := 0; i < 8; i++ {
		raw[8+i] = byte(hi >> (8 * i))
	}
	return raw
}

// XEXUint128 returns the block's value under the XEX bit convention, as a
// 128-bit integer split into (lo, hi) 64-bit words.
func (b Block) XEXUint128() (lo, hi uint64) {
	return xexBytesToUint128(b)
}

// GCMUint128 returns the block's value under the GCM bit convention: the
// XEX view with every byte's bits reversed in place (byte order unchanged).
func (b Block) GCMUint128() (lo, hi uint64) {
	var reversed [Size]byte
	for i, x := range b {
		reversed[i] = reverseByte(x)
	}
	return xexBytesToUint128(reversed)
}

// FromXEXUint128 is the inverse of Block.XEXUint128.
func FromXEXUint128(lo, hi uint64) Block {
	return Block(uint128ToXEXBytes(lo, hi))
}

// FromGCMUint128 is the inverse of Block.GCMUint128.
func FromGCMUint128(lo, hi uint64) Block {
	raw := uint128ToXEXBytes(lo, hi)
	var out Block
	for i, x := range raw {
		out[i] = reverseByte(x)
	}
	return out
}

// bitsOf returns, ascending, the indices in [0,128) set in (lo, hi).
func bitsOf(lo, hi uint64) []int {
	var coeffs []int
	for i := 0; i < 64; i++ {
		if lo&(1<<uint(i)) != 0 {
			coeffs = append(coeffs, i)
		}
	}
	for i := 0; i < 64; i++ {
		if hi&(1<<uint(i)) != 0 {
			coeffs = append(coeffs, 64+i)
		}
	}
	return coeffs
}

// uint128FromBits packs ascending coefficient indices back into (lo, hi).
// Indices outside [0,128) are rejected with ErrMalformedBlock.
func uint128FromBits(coefficients []int) (lo, hi uint64, err error) {
	for _, c := range coefficients {
		if c < 0 || c >= 128 {
			return 0, 0, fmt.Errorf("%w: coefficient %d out of range [0,128)", ErrMalformedBlock, c)
		}
		if c < 64 {
			lo |= 1 << uint(c)
		} else {
			hi |= 1 << uint(c-64)
		}
	}
	return lo, hi, nil
}

// XEXCoefficients returns the ascending set of indices with a set bit under
// the XEX convention.
func (b Block) XEXCoefficients() []int {
	lo, hi := b.XEXUint128()
	return bitsOf(lo, hi)
}

// GCMCoefficients returns the ascending set of indices with a set bit under
// the GCM convention.
func (b Block) GCMCoefficients() []int {
	lo, hi := b.GCMUint128()
	return bitsOf(lo, hi)
}

// FromXEXCoefficients builds a block whose XEX-convention bit set is exactly
// coefficients.
func FromXEXCoefficients(coefficients []int) (Block, error) {
	lo, hi, err := uint128FromBits(coefficients)
	if err != nil {
		return Block{}, err
	}
	return FromXEXUint128(lo, hi), nil
}

// FromGCMCoefficients builds a block whose GCM-convention bit set is exactly
// coefficients.
func FromGCMCoefficients(coefficients []int) (Block, error) {
	lo, hi, err := uint128FromBits(coefficients)
	if err != nil {
		return Block{}, err
	}
	return FromGCMUint128(lo, hi), nil
}

// SortedCoefficients returns a sorted copy of coefficients; callers that
// build coefficient lists from unordered sources (e.g. JSON arrays) should
// route through this before comparing against a canonical answer.
func SortedCoefficients(coefficients []int) []int {
	out := make([]int, len(coefficients))
	copy(out, coefficients)
	sort.Ints(out)
	return out
}
