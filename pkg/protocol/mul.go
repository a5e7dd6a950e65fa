// Package protocol implements the L2 sub-protocol library: multiplication,
// reveal, reshare, bitwise equality, random-bit generation, and bit
// decomposition (spec.md §4.3).
package protocol

import (
	"context"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// Multiply computes [z] = [x]·[y], the one-round replicated multiplication
// of spec.md §4.3: each helper locally computes
//
//	d = x_l·y_l + x_l·y_r + x_r·y_l + α−β
//
// using its PRSS pair (α shared with the left neighbor, β shared with the
// right), sends d to the right peer, and adopts the value received from
// the left peer as its new left share (the value it sent becomes its new
// right share, preserving the replicated invariant that a helper's right
// share equals its right peer's left share).
func Multiply[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x, y share.Replicated[F]) (share.Replicated[F], error) {
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
