// Package format defines the on-region block header layout for the buddy
// allocator and the size arithmetic derived from it.
//
// Block header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    8     Signed size word. Negative => used, positive => free.
//	              The absolute value is the total block size in bytes,
//	              header included, and is always a power of two.
//	0x08    ...   Payload returned to callers.
package format

import (
	"encoding/binary"
	"math/bits"
)

// HeaderSize is the size of the block header preceding every payload.
const HeaderSize = 8

// ReadWord decodes the signed size word at off.
func ReadWord(b []byte, off int) int64 {
	return int64(binary.LittleEndian.Uint64(b[off:]))
}

// PutWord encodes the signed size word at off.
func PutWord(b []byte, off int, v int64) {
	binary.LittleEndian.PutUint64(b[off:], uint64(v))
}

// BlockSize returns the minimum total block size able to hold a payload of
// n bytes: payload plus header, rounded up to the next power of two.
func BlockSize(n int) int {
	return NextPow2(n + HeaderSize)
}

// MemSize returns the usable payload capacity of a block of the given
// total size.
func MemSize(size int) int {
	return size - HeaderSize
}

// IsPow2 reports whether n is a power of two. Zero and negatives are not.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPow2 returns the smallest power of two >= n.
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// FloorPow2 returns the largest power of two <= n, or 0 when n < 1.
func FloorPow2(n int) int {
	if n < 1 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}
