package protocol

import (
	"context"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// Reveal collaboratively discloses x to every helper (spec.md §4.3).
//
// Since each helper already holds two of the three summands (its Left and
// Right coordinates), it only needs the third — its left peer's Left
// coordinate, which that peer does not otherwise send it. One round
// suffices: every helper sends its own Left coordinate to its right peer,
// and receives the missing summand from its left peer. This collapses the
// spec's "send to one designated peer, which sums and broadcasts" into the
// equivalent single round every helper can run simultaneously, since the
// replicated topology already guarantees everyone ends up with all three
// summands without a second broadcast round.
func Reveal[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x share.Replicated[F]) (F, error) {
	if err := mc.Send(mc.Role().Right(), record, x.Left.Bytes()); err != nil {
		return x.Left, err
	}
	raw, err := mc.Receive(ctx, mc.Role().Left(), record)
	if err != nil {
		return x.Left, err
	}
	missing, err := x.Left.SetBytes(raw)
	if err != nil {
		return x.Left, err
	}
	return x.Left.Add(x.Right).Add(missing), nil
}
