package ff

import (
	"encoding/binary"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/luxfi/ipa/internal/ipaerr"
)

// fp32BitPrimeModulusValue is the 32-bit production prime: 2^32 - 5.
// It is the largest prime below 2^32, giving the field the full 32-bit
// width spec.md §3 asks for ("a 32-bit prime field for production").
const fp32BitPrimeModulusValue uint64 = (1 << 32) - 5

var fp32Modulus = saferith.ModulusFromUint64(fp32BitPrimeModulusValue)
var fp32Zero = new(saferith.Nat).SetUint64(0)

// Fp32BitPrime is an element of GF(2^32 - 5), the field used for production
// IPA queries. Arithmetic is routed through saferith so that reduction is
// constant-time, matching the way the teacher's curve scalar types wrap
// saferith.Nat.
type Fp32BitPrime struct {
	v *saferith.Nat
}

// NewFp32BitPrime reduces v modulo the field's prime.
func NewFp32BitPrime(v uint64) Fp32BitPrime {
	n := new(saferith.Nat).SetUint64(v)
	n.Mod(n, fp32Modulus)
	return Fp32BitPrime{v: n}
}

func (f Fp32BitPrime) nat() *saferith.Nat {
	if f.v == nil {
		return fp32Zero
	}
	return f.v
}

// Add implements Field.
func (f Fp32BitPrime) Add(o Fp32BitPrime) Fp32BitPrime {
	z := new(saferith.Nat).ModAdd(f.nat(), o.nat(), fp32Modulus)
	return Fp32BitPrime{v: z}
}

// Sub implements Field.
func (f Fp32BitPrime) Sub(o Fp32BitPrime) Fp32BitPrime {
	z := new(saferith.Nat).ModSub(f.nat(), o.nat(), fp32Modulus)
	return Fp32BitPrime{v: z}
}

// Neg implements Field.
func (f Fp32BitPrime) Neg() Fp32BitPrime {
	z := new(saferith.Nat).ModSub(fp32Zero, f.nat(), fp32Modulus)
	return Fp32BitPrime{v: z}
}

// Mul implements Field.
func (f Fp32BitPrime) Mul(o Fp32BitPrime) Fp32BitPrime {
	z := new(saferith.Nat).ModMul(f.nat(), o.nat(), fp32Modulus)
	return Fp32BitPrime{v: z}
}

// MulByPublic implements Field.
func (f Fp32BitPrime) MulByPublic(c uint64) Fp32BitPrime {
	pub := new(saferith.Nat).SetUint64(c)
	pub.Mod(pub, fp32Modulus)
	z := new(saferith.Nat).ModMul(f.nat(), pub, fp32Modulus)
	return Fp32BitPrime{v: z}
}

// Bytes implements Field: 4-byte little-endian canonical encoding.
func (f Fp32BitPrime) Bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(f.AsUint64()))
	return buf
}

// SetBytes implements Field.
func (f Fp32BitPrime) SetBytes(b []byte) (Fp32BitPrime, error) {
	if len(b) < 4 {
		return Fp32BitPrime{}, fmt.Errorf("%w: fp32 needs 4 bytes, got %d", ipaerr.ErrFieldOverflow, len(b))
	}
	v := uint64(binary.LittleEndian.Uint32(b))
	if v >= fp32BitPrimeModulusValue {
		return Fp32BitPrime{}, fmt.Errorf("%w: %d is not a valid fp32 residue", ipaerr.ErrFieldOverflow, v)
	}
	return NewFp32BitPrime(v), nil
}

// BitWidth implements Field.
func (Fp32BitPrime) BitWidth() int { return 32 }

// AsUint64 implements Field.
func (f Fp32BitPrime) AsUint64() uint64 {
	b := f.nat().Bytes()
	var v uint64
	for _, by := range b {
		v = (v << 8) | uint64(by)
	}
	return v
}

func (f Fp32BitPrime) String() string { return fmt.Sprintf("%d", f.AsUint64()) }

// Equal implements Field.
func (f Fp32BitPrime) Equal(o Fp32BitPrime) bool {
	return f.nat().Eq(o.nat()) == 1
}

// Public implements Field.
func (Fp32BitPrime) Public(c uint64) Fp32BitPrime { return NewFp32BitPrime(c) }

// FromWideBytes implements Field: arbitrary-length big-endian bytes reduced
// modulo the field's prime via saferith.
func (Fp32BitPrime) FromWideBytes(b []byte) Fp32BitPrime {
	n := new(saferith.Nat).SetBytes(b)
	n.Mod(n, fp32Modulus)
	return Fp32BitPrime{v: n}
}
