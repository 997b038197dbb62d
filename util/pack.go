// Package util provides byte-packing and comparison helpers used by
// internal/gcmcore and internal/glasskey.
// This mirrors Bouncy Castle's org.bouncycastle.util.Pack
package util

import (
	"encoding/binary"
)

// Pack provides byte packing and unpacking utilities.
// Reference: org.bouncycastle.util.Pack (bc-java)

// Uint32ToBigEndian packs a uint32 into big-endian bytes
func Uint32ToBigEndian(n uint32, bs []byte, off int) {
	binary.BigEndian.PutUint32(bs[off:], n)
}

// Uint64ToBigEndian packs a uint64 into big-endian bytes
func Uint64ToBigEndian(n uint64, bs []byte, off int) {
	binary.BigEndian.PutUint64(bs[off:], n)
}

// Uint64ToLittleEndian packs a uint64 into little-endian bytes
func Uint64ToLittleEndian(n uint64, bs []byte, off int) {
	binary.LittleEndian.PutUint64(bs[off:], n)
}
