// Package share implements the replicated secret-sharing types: additive
// replicated shares over a prime field (Replicated[F]) and XOR-replicated
// shares over a bit array (XorReplicated), per spec.md §4.1.
package share

import (
	"fmt"

	"github.com/luxfi/ipa/internal/ipaerr"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/party"
)

// Replicated holds one helper's half of a (3,3)-additive-replicated share
// of a field element: (l, r) such that reconstruction is
// l0 + l1 + l2 (equivalently r0 + r1 + r2, since each helper's r equals its
// right peer's l). All operations that don't require communication
// (Add/Sub/Neg/MulByPublic) are local and coordinate-wise.
type Replicated[F ff.Field[F]] struct {
	Left  F
	Right F
}

// New builds a Replicated share from its two coordinates.
func New[F ff.Field[F]](left, right F) Replicated[F] {
	return Replicated[F]{Left: left, Right: right}
}

// Add implements Replicated + Replicated: local, no communication.
func (s Replicated[F]) Add(o Replicated[F]) Replicated[F] {
	return Replicated[F]{Left: s.Left.Add(o.Left), Right: s.Right.Add(o.Right)}
}

// Sub implements Replicated - Replicated: local, no communication.
func (s Replicated[F]) Sub(o Replicated[F]) Replicated[F] {
	return Replicated[F]{Left: s.Left.Sub(o.Left), Right: s.Right.Sub(o.Right)}
}

// Neg implements -Replicated: local, no communication.
func (s Replicated[F]) Neg() Replicated[F] {
	return Replicated[F]{Left: s.Left.Neg(), Right: s.Right.Neg()}
}

// MulByPublic multiplies each coordinate by a cleartext constant: local, no
// communication.
func (s Replicated[F]) MulByPublic(c uint64) Replicated[F] {
	return Replicated[F]{Left: s.Left.MulByPublic(c), Right: s.Right.MulByPublic(c)}
}

// AddPublicToLeft adds a cleartext constant to the left coordinate only.
// Adding a public value to a replicated share takes two bumps: one
// helper's left AND its left peer's right coordinate (which holds the same
// component) must both move by c for the reconstructed sum to shift by c
// with the replicated invariant intact. This method makes only the first
// bump; the left peer's right coordinate is left as it is. See Public for
// building a from-scratch share of a constant known identically to all
// three helpers.
func (s Replicated[F]) AddPublicToLeft(c uint64) Replicated[F] {
	return Replicated[F]{Left: s.Left.Add(s.Left.Public(c)), Right: s.Right}
}

// Zero returns the additive identity Replicated[F] share, using zero to
// determine F's concrete type.
func Zero[F ff.Field[F]](zero F) Replicated[F] {
	z := zero.Public(0)
	return Replicated[F]{Left: z, Right: z}
}

// Public builds role's local view of a replicated sharing of the cleartext
// constant c, already known identically to all three helpers (e.g. a
// breakdown key index 0..max_breakdown_key-1, per aggregate_credit's
// synthetic-row bookkeeping, spec.md §4.5). owner's Left carries c;
// owner.Left()'s Right carries c to satisfy the replicated invariant
// (Right_P = Left_{P.Right()}); the third role contributes nothing. No
// communication: every helper can compute its own coordinate alone because c
// is public.
func Public[F ff.Field[F]](zero F, role, owner party.Role, c uint64) Replicated[F] {
	z := zero.Public(0)
	switch role {
	case owner:
		return Replicated[F]{Left: zero.Public(c), Right: z}
	case owner.Left():
		return Replicated[F]{Left: z, Right: zero.Public(c)}
	default:
		return Replicated[F]{Left: z, Right: z}
	}
}

// SizeInBytes is the canonical encoding length of a Replicated[F], for any
// zero value of F: 2 * size(F).
func SizeInBytes[F ff.Field[F]](zero F) int {
	return 2 * len(zero.Bytes())
}

// Serialize writes the canonical little-endian encoding (Left then Right)
// into buf, per spec.md §4.1.
func (s Replicated[F]) Serialize(buf []byte) error {
	lb, rb := s.Left.Bytes(), s.Right.Bytes()
	need := len(lb) + len(rb)
	if len(buf) < need {
		return fmt.Errorf("%w: replicated share needs %d bytes, buffer has %d", ipaerr.ErrProtocolInvariant, need, len(buf))
	}
	copy(buf, lb)
	copy(buf[len(lb):], rb)
	return nil
}

// Deserialize decodes a Replicated[F] from its canonical encoding, using
// zero to determine F's element width.
func Deserialize[F ff.Field[F]](buf []byte, zero F) (Replicated[F], error) {
	w := len(zero.Bytes())
	if len(buf) < 2*w {
		return Replicated[F]{}, fmt.Errorf("%w: replicated share needs %d bytes, got %d", ipaerr.ErrProtocolInvariant, 2*w, len(buf))
	}
	l, err := zero.SetBytes(buf[:w])
	if err != nil {
		return Replicated[F]{}, err
	}
	r, err := zero.SetBytes(buf[w : 2*w])
	if err != nil {
		return Replicated[F]{}, err
	}
	return Replicated[F]{Left: l, Right: r}, nil
}
