package protocol

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// GreaterThanPublic computes a shared 0/1 indicator for x > c, where c is a
// cleartext constant already known identically to all three helpers (e.g.
// spec.md §4.5's per_user_credit_cap). x is first bit-decomposed via
// BitDecomposition; the comparison itself is the standard MSB-to-LSB digit
// compare: eq tracks "equal to c in every bit visited so far", and gt only
// accumulates a bit's contribution while still equal upstream, so at most
// one bit position can ever tip the result toward x.
func GreaterThanPublic[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x share.Replicated[F], c uint64, rbg RandomBitsGenerator[F]) (share.Replicated[F], error) {
	zero := x.Left
	bitWidth := zero.BitWidth()

	xBits, err := BitDecomposition(ctx, mc.NarrowString("gt-public/decompose"), record, x, bitWidth, rbg)
	if err != nil {
		return share.Replicated[F]{}, err
	}

	one := share.Public(zero, mc.Role(), party.H0, 1)
	gt := share.Zero(zero)
	eq := one

	for i := bitWidth - 1; i >= 0; i-- {
		xi := xBits[i]
		bc := mc.NarrowString(fmt.Sprintf("gt-public/bit%d", i))

		var bitGT, bitEq share.Replicated[F]
		if (c>>uint(i))&1 == 1 {
			bitGT = share.Zero(zero)
			bitEq = xi
		} else {
			bitGT = xi
			bitEq = one.Sub(xi)
		}

		contribution, err := Multiply(ctx, bc.NarrowString("contribution"), record, eq, bitGT)
		if err != nil {
			return share.Replicated[F]{}, err
		}
		gt = gt.Add(contribution)

		eq, err = Multiply(ctx, bc.NarrowString("still-equal"), record, eq, bitEq)
		if err != nil {
			return share.Replicated[F]{}, err
		}
	}
	return gt, nil
}
