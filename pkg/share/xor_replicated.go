package share

import (
	"fmt"

	"github.com/luxfi/ipa/internal/ipaerr"
	"github.com/luxfi/ipa/pkg/bits"
)

// XorReplicated is the bit-array analogue of Replicated: the same (l, r)
// topology with XOR replacing +. Reconstruction is l0 ⊕ l1 ⊕ l2.
type XorReplicated struct {
	Left  bits.Array
	Right bits.Array
}

// NewXorReplicated builds an XorReplicated share from its two coordinates.
func NewXorReplicated(left, right bits.Array) XorReplicated {
	return XorReplicated{Left: left, Right: right}
}

// Xor implements XorReplicated ⊕ XorReplicated: local, no communication.
func (s XorReplicated) Xor(o XorReplicated) XorReplicated {
	return XorReplicated{Left: s.Left.Xor(o.Left), Right: s.Right.Xor(o.Right)}
}

// Width returns the shared bit-array's width.
func (s XorReplicated) Width() int { return s.Left.Width() }

// XorSizeInBytes is the canonical encoding length of an XorReplicated over a
// width-bit array.
func XorSizeInBytes(width int) int {
	return 2 * bits.SizeInBytes(width)
}

// Serialize writes the canonical little-endian encoding (Left then Right)
// into buf.
func (s XorReplicated) Serialize(buf []byte) error {
	lb, rb := s.Left.Bytes(), s.Right.Bytes()
	need := len(lb) + len(rb)
	if len(buf) < need {
		return fmt.Errorf("%w: xor-replicated share needs %d bytes, buffer has %d", ipaerr.ErrProtocolInvariant, need, len(buf))
	}
	copy(buf, lb)
	copy(buf[len(lb):], rb)
	return nil
}

// DeserializeXor decodes an XorReplicated of the given bit width from its
// canonical encoding.
func DeserializeXor(buf []byte, width int) (XorReplicated, error) {
	n := bits.SizeInBytes(width)
	if len(buf) < 2*n {
		return XorReplicated{}, fmt.Errorf("%w: xor-replicated share needs %d bytes, got %d", ipaerr.ErrProtocolInvariant, 2*n, len(buf))
	}
	l, err := bits.SetBytes(buf[:n], width)
	if err != nil {
		return XorReplicated{}, err
	}
	r, err := bits.SetBytes(buf[n:2*n], width)
	if err != nil {
		return XorReplicated{}, err
	}
	return XorReplicated{Left: l, Right: r}, nil
}
