package attribution

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/share"
)

// AccumulateCredit attributes each user's trigger (conversion) values back
// onto the nearest preceding source (impression) row within that user's
// contiguous match-key-sorted block (spec.md §4.5, last-touch
// attribution): a trigger row's value carries backward, growing as it
// passes over any other trigger rows, until it reaches a source row, which
// absorbs the entire accumulated amount and resets it to zero for any
// source further back in the same block. Trigger rows themselves always
// end up with credit 0; only their own breakdown_key-less value moves.
//
// This is a single reverse (right-to-left) pass: row i's share of
// "same user as the row after it" gates whether any accumulated credit
// carries across the boundary, mirroring HelperBit's own "same as the row
// before it" gating used everywhere else in this package, just read in the
// opposite direction. Every row's own breakdown_key is left untouched —
// credit always lands on the row that already carries the correct
// attribution key, so there is nothing to propagate there.
//
// Scenario B (spec.md §8) is this function's authority, not spec.md
// §4.5's own prose summary: taken literally ("writing the running credit
// back onto trigger rows; source rows receive 0") that text describes the
// mirror image of what actually reproduces Scenario B's expected output,
// which only holds together if credit lands on source rows. This
// implementation matches the worked example.
func AccumulateCredit[F ff.Field[F]](ctx context.Context, mc mpc.Context, records []party.RecordId, rows []AttributionInputRow[F]) ([]AttributionInputRow[F], error) {
	if len(records) != len(rows) {
		return nil, fmt.Errorf("accumulate_credit: %d records but %d rows", len(records), len(rows))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	zero := rows[0].Credit.Left
	one := share.Public(zero, mc.Role(), party.H0, 1)
	running := share.Zero(zero)
	out := make([]AttributionInputRow[F], len(rows))

	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		rc := mc.NarrowString(fmt.Sprintf("accumulate-credit/row%d", i))

		sameAsNext := share.Zero(zero)
		if i+1 < len(rows) {
			sameAsNext = rows[i+1].HelperBit
		}

		carried, err := protocol.Multiply(ctx, rc.NarrowString("carry"), records[i], sameAsNext, running)
		if err != nil {
			return nil, err
		}

		temp := carried.Add(row.Credit)
		newRunning, err := protocol.Multiply(ctx, rc.NarrowString("advance"), records[i], row.IsTriggerBit, temp)
		if err != nil {
			return nil, err
		}

		notTrigger := one.Sub(row.IsTriggerBit)
		absorbed, err := protocol.Multiply(ctx, rc.NarrowString("absorb"), records[i], notTrigger, carried)
		if err != nil {
			return nil, err
		}

		out[i] = AttributionInputRow[F]{
			IsTriggerBit: row.IsTriggerBit,
			HelperBit:    row.HelperBit,
			BreakdownKey: row.BreakdownKey,
			Credit:       absorbed,
		}
		running = newRunning
	}
	return out, nil
}
