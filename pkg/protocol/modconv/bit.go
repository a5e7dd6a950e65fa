// Package modconv implements modulus conversion: turning a single bit held
// under XOR-replicated (B) sharing into an additive-replicated (F) sharing
// of the same 0/1 value, and the batched match-key variant spec.md §4.4
// names as the IPA circuit's first stage (spec.md §4.3/§4.4).
package modconv

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/internal/ipaerr"
	"github.com/luxfi/ipa/pkg/bits"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// ConvertBit converts a single-bit XOR-replicated share x into an additive
// replicated share of the same value over F, using the standard
// three-variable XOR-as-polynomial identity
//
//	a ⊕ b ⊕ c = a+b+c − 2(ab+ac+bc) + 4abc
//
// applied to the three underlying 0/1 bits x0 (owned by H0), x1 (owned by
// H1), x2 (owned by H2) that make up x (each owned bit is held in the clear
// by exactly two helpers, per the replicated sharing definition). Each
// owned bit is first lifted to an F-share via ownedBitShare, then combined
// with three pairwise Multiply calls and one triple-product Multiply —
// four rounds total, the standard cost of a semi-honest bit-injection.
func ConvertBit[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x share.XorReplicated, zero F) (share.Replicated[F], error) {
	if x.Width() != 1 {
		return share.Replicated[F]{}, fmt.Errorf("%w: ConvertBit requires a single-bit share, got width %d", ipaerr.ErrProtocolInvariant, x.Width())
	}

	a0, err := ownedBitShare(ctx, mc.NarrowString("owner-h0"), record, x, party.H0, zero)
	if err != nil {
		return share.Replicated[F]{}, err
	}
	a1, err := ownedBitShare(ctx, mc.NarrowString("owner-h1"), record, x, party.H1, zero)
	if err != nil {
		return share.Replicated[F]{}, err
	}
	a2, err := ownedBitShare(ctx, mc.NarrowString("owner-h2"), record, x, party.H2, zero)
	if err != nil {
		return share.Replicated[F]{}, err
	}

	ab01, err := multiply(ctx, mc.NarrowString("ab01"), record, a0, a1)
	if err != nil {
		return share.Replicated[F]{}, err
	}
	ab02, err := multiply(ctx, mc.NarrowString("ab02"), record, a0, a2)
	if err != nil {
		return share.Replicated[F]{}, err
	}
	ab12, err := multiply(ctx, mc.NarrowString("ab12"), record, a1, a2)
	if err != nil {
		return share.Replicated[F]{}, err
	}
	ab012, err := multiply(ctx, mc.NarrowString("ab012"), record, ab01, a2)
	if err != nil {
		return share.Replicated[F]{}, err
	}

	sum := a0.Add(a1).Add(a2)
	pairwise := ab01.Add(ab02).Add(ab12)
	return sum.Sub(pairwise.MulByPublic(2)).Add(ab012.MulByPublic(4)), nil
}

// ownedBitShare converts the single bit "owned" by owner — held in the
// clear by owner (as x.Left) and by owner.Left() (as x.Right, since
// Right_P = Left_{P.Right()}) — into a fresh additive replicated share,
// without owner.Right() (the third helper, which does not hold the bit)
// ever learning it.
//
// owner and owner.Left() independently compute their mutual PRSS value m
// (no communication: m is owner's "u" and owner.Left()'s "v"). owner sends
// owner.Right() one masked message, bit − m, which it cannot unmask;
// every other coordinate follows by local PRSS computation, mirroring
// Reshare's algebra exactly but starting from a cleartext bit instead of an
// existing share.
func ownedBitShare[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x share.XorReplicated, owner party.Role, zero F) (share.Replicated[F], error) {
	role := mc.Role()
	value, known := ownedBitValue(x, role, owner)

	switch role {
	case owner:
		if !known {
			return share.Replicated[F]{}, ipaerr.Invariant("modconv: owner %s does not hold its own owned bit", owner)
		}
		u, _ := mpc.PRSSPair(mc, record, zero)
		vF := zero.Public(boolToUint64(value))
		masked := vF.Sub(u)
		if err := mc.Send(owner.Right(), record, masked.Bytes()); err != nil {
			return share.Replicated[F]{}, err
		}
		return share.Replicated[F]{Left: u, Right: masked}, nil

	case owner.Left():
		// The other holder of the bit: it needs neither the bit nor the
		// masked message, since its coordinates come purely from its own
		// PRSS pair (its v is owner's m).
		_, v := mpc.PRSSPair(mc, record, zero)
		return share.Replicated[F]{Left: zero.Public(0), Right: v}, nil

	case owner.Right():
		raw, err := mc.Receive(ctx, owner, record)
		if err != nil {
			return share.Replicated[F]{}, err
		}
		masked, err := zero.SetBytes(raw)
		if err != nil {
			return share.Replicated[F]{}, err
		}
		return share.Replicated[F]{Left: masked, Right: zero.Public(0)}, nil

	default:
		return share.Replicated[F]{}, ipaerr.Invariant("modconv: role %s is not a peer of owner %s", role, owner)
	}
}

func ownedBitValue(x share.XorReplicated, role, owner party.Role) (value bool, known bool) {
	switch role {
	case owner:
		return x.Left.Bit(0), true
	case owner.Left():
		return x.Right.Bit(0), true
	default:
		return false, false
	}
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func extractBit(a share.XorReplicated, i int) share.XorReplicated {
	return share.NewXorReplicated(bits.New(boolToUint64(a.Left.Bit(i)), 1), bits.New(boolToUint64(a.Right.Bit(i)), 1))
}

// multiply is the one-round replicated multiplication (pkg/protocol.Multiply's
// formula, duplicated locally): modconv sits beside, not above, the
// protocol package in the L2 layer, so it carries its own copy rather than
// import it back and create a package cycle (pkg/protocol's bit
// decomposition already depends on modconv for the reverse direction).
func multiply[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x, y share.Replicated[F]) (share.Replicated[F], error) {
	alpha, beta := mpc.PRSSPair(mc, record, x.Left)

	d := x.Left.Mul(y.Left).
		Add(x.Left.Mul(y.Right)).
		Add(x.Right.Mul(y.Left)).
		Add(alpha).
		Sub(beta)

	if err := mc.Send(mc.Role().Right(), record, d.Bytes()); err != nil {
		return share.Replicated[F]{}, err
	}

	raw, err := mc.Receive(ctx, mc.Role().Left(), record)
	if err != nil {
		return share.Replicated[F]{}, err
	}
	newLeft, err := x.Left.SetBytes(raw)
	if err != nil {
		return share.Replicated[F]{}, err
	}

	return share.Replicated[F]{Left: newLeft, Right: d}, nil
}
