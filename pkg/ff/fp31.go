package ff

import (
	"fmt"

	"github.com/luxfi/ipa/internal/ipaerr"
)

// fp31Modulus is the tiny prime used throughout the IPA test fixtures
// (the Rust reference implementation calls it Fp31). A residue fits in a
// single byte, so unlike Fp32BitPrime it is not routed through saferith.
const fp31Modulus = 31

// Fp31 is an element of GF(31). It exists for unit tests and for the
// attribution-sort fixture (spec.md Scenario A), which is defined over it.
type Fp31 uint8

// NewFp31 reduces v modulo 31.
func NewFp31(v uint64) Fp31 {
	return Fp31(v % fp31Modulus)
}

// Add implements Field.
func (f Fp31) Add(o Fp31) Fp31 {
	return Fp31((uint16(f) + uint16(o)) % fp31Modulus)
}

// Sub implements Field.
func (f Fp31) Sub(o Fp31) Fp31 {
	return Fp31((uint16(f) + fp31Modulus - uint16(o)) % fp31Modulus)
}

// Neg implements Field.
func (f Fp31) Neg() Fp31 {
	if f == 0 {
		return 0
	}
	return Fp31(fp31Modulus - uint16(f))
}

// Mul implements Field.
func (f Fp31) Mul(o Fp31) Fp31 {
	return Fp31((uint16(f) * uint16(o)) % fp31Modulus)
}

// MulByPublic implements Field.
func (f Fp31) MulByPublic(c uint64) Fp31 {
	return Fp31((uint64(f) * c) % fp31Modulus)
}

// Bytes implements Field.
func (f Fp31) Bytes() []byte {
	return []byte{byte(f)}
}

// SetBytes implements Field.
func (f Fp31) SetBytes(b []byte) (Fp31, error) {
	if len(b) < 1 {
		return 0, fmt.Errorf("%w: fp31 needs 1 byte, got %d", ipaerr.ErrFieldOverflow, len(b))
	}
	if b[0] >= fp31Modulus {
		return 0, fmt.Errorf("%w: %d is not a valid fp31 residue", ipaerr.ErrFieldOverflow, b[0])
	}
	return Fp31(b[0]), nil
}

// BitWidth implements Field. 31 < 2^5, so 5 bits suffice to bit-decompose
// any residue.
func (Fp31) BitWidth() int { return 5 }

// AsUint64 implements Field.
func (f Fp31) AsUint64() uint64 { return uint64(f) }

// Equal implements Field.
func (f Fp31) Equal(o Fp31) bool { return f == o }

// Public implements Field.
func (Fp31) Public(c uint64) Fp31 { return NewFp31(c) }

// FromWideBytes implements Field: big-endian bytes reduced mod 31.
func (Fp31) FromWideBytes(b []byte) Fp31 {
	var acc uint16
	for _, by := range b {
		acc = (acc*256 + uint16(by)) % fp31Modulus
	}
	return Fp31(acc)
}

func (f Fp31) String() string { return fmt.Sprintf("%d", uint8(f)) }
