package protocol

import (
	"context"

	"github.com/luxfi/ipa/internal/ipaerr"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// Reshare re-randomizes [x] toward `to`: the result is a fresh replicated
// share of the same secret, where `to` learns nothing beyond what it
// already knew (spec.md §4.3).
//
// Write to = target, L = to.Left(), R = to.Right(). Every party already
// holds x as (Left, Right) with the replicated invariant Right_P =
// Left_{P.Right()}, so x = Left_to + Left_L + Left_R. L and R also share a
// direct PRSS correlation m (the ring of three is a triangle: every pair of
// roles is mutually adjacent), which neither to nor an outside observer of
// the wire traffic can derive. The rebalancing:
//
//	NewLeft_to = (Left_L + Right_L) − m   (sent by L; `to` cannot strip m)
//	NewLeft_L  = m
//	NewLeft_R  = Left_R                   (unchanged)
//
// sums to the same secret and satisfies the replicated invariant for all
// three new shares (straightforward to check: NewRight_to stays Left_R
// unchanged, matching NewLeft_R; NewRight_L equals the message, matching
// NewLeft_to; NewRight_R equals m, matching NewLeft_L). Exactly one message
// flows, from L to `to` — the minimal instance of spec.md's "two PRSS
// values plus one send-and-receive": here a single mutual PRSS value (m)
// suffices, since L already holds both summands it needs to combine.
func Reshare[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x share.Replicated[F], to party.Role) (share.Replicated[F], error) {
	role := mc.Role()

	switch role {
	case to:
		raw, err := mc.Receive(ctx, to.Left(), record)
		if err != nil {
			return share.Replicated[F]{}, err
		}
		newLeft, err := x.Left.SetBytes(raw)
		if err != nil {
			return share.Replicated[F]{}, err
		}
		return share.Replicated[F]{Left: newLeft, Right: x.Right}, nil

	case to.Left():
		// The mutual value with R = to.Right() is this role's own "u"
		// (shared with its own Left neighbor, which is R in this triangle).
		u, _ := mpc.PRSSPair(mc, record, x.Left)
		msg := x.Left.Add(x.Right).Sub(u)
		if err := mc.Send(to, record, msg.Bytes()); err != nil {
			return share.Replicated[F]{}, err
		}
		return share.Replicated[F]{Left: u, Right: msg}, nil

	case to.Right():
		// The mutual value with L is this role's own "v" (shared with its
		// own Right neighbor, which is L in this triangle).
		_, v := mpc.PRSSPair(mc, record, x.Left)
		return share.Replicated[F]{Left: x.Left, Right: v}, nil

	default:
		return share.Replicated[F]{}, ipaerr.Invariant("reshare: role %s is not a peer of target %s", role, to)
	}
}
