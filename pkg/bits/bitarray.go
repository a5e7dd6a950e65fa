// Package bits implements fixed-width bit-array values (spec.md §3's "B").
// A bit-array supports only the local, no-communication operations needed
// by the XOR-replicated sharing layer: bitwise XOR, bit extraction, and a
// canonical little-endian byte encoding.
package bits

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/ipa/internal/ipaerr"
)

// Array is a fixed-width vector of bits, stored as the low Width bits of a
// 64-bit word. 64 bits comfortably covers the 40-bit match keys spec.md
// names; a wider array would switch to a []uint64 limb representation, but
// nothing in this core needs more than 64 bits.
type Array struct {
	v     uint64
	width int
}

// MatchKeyWidth is the bit width spec.md §3 names for match keys.
const MatchKeyWidth = 40

// NewMatchKey builds a 40-bit match key array from a cleartext value.
func NewMatchKey(v uint64) Array {
	return New(v, MatchKeyWidth)
}

// New builds a width-bit array, masking off any higher bits of v.
func New(v uint64, width int) Array {
	if width <= 0 || width > 64 {
		panic(fmt.Sprintf("bits: invalid width %d", width))
	}
	mask := uint64(1)<<uint(width) - 1
	if width == 64 {
		mask = ^uint64(0)
	}
	return Array{v: v & mask, width: width}
}

// Width returns the array's fixed bit width (B::BITS).
func (a Array) Width() int { return a.width }

// Bit returns the i-th bit (0 = least significant).
func (a Array) Bit(i int) bool {
	return (a.v>>uint(i))&1 == 1
}

// Xor implements Array ⊕ Array: the only arithmetic operation bit-arrays
// support, per spec.md §4.1.
func (a Array) Xor(o Array) Array {
	if a.width != o.width {
		panic("bits: width mismatch in Xor")
	}
	return Array{v: a.v ^ o.v, width: a.width}
}

// AsUint64 exposes the cleartext value, for test assembly and
// reconstruction checks only.
func (a Array) AsUint64() uint64 { return a.v }

// SizeInBytes is the canonical encoding length for a width-bit array.
func SizeInBytes(width int) int {
	return (width + 7) / 8
}

// Bytes returns the canonical little-endian encoding, using the minimum
// number of bytes that holds Width bits.
func (a Array) Bytes() []byte {
	n := SizeInBytes(a.width)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, a.v)
	return buf[:n]
}

// SetBytes decodes the canonical little-endian encoding produced by Bytes
// into a width-bit array.
func SetBytes(b []byte, width int) (Array, error) {
	n := SizeInBytes(width)
	if len(b) < n {
		return Array{}, fmt.Errorf("%w: bit array needs %d bytes, got %d", ipaerr.ErrFieldOverflow, n, len(b))
	}
	buf := make([]byte, 8)
	copy(buf, b[:n])
	v := binary.LittleEndian.Uint64(buf)
	return New(v, width), nil
}
