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

// CreditCapping enforces spec.md §4.5's per-user cap. Within each
// contiguous same-user block (chained via HelperBit, as in
// AccumulateCredit), a running cumulative total is maintained alongside a
// sticky "already over cap" flag:
//
//   - while cumulative stays at or under perUserCap, a row's credit passes
//     through unchanged;
//   - the row where cumulative first exceeds the cap keeps only the
//     remainder, perUserCap − cumulative_before;
//   - every row after that, within the same block, is zeroed.
//
// The comparison against the public cap runs entirely over shares via
// GreaterThanPublic, so no intermediate cumulative value is ever revealed —
// this is the "share-level comparisons without revealing credits" spec.md
// calls for. The precise crossing-row policy follows spec.md's Open
// Question resolution: match Scenario B's expected output.
func CreditCapping[F ff.Field[F]](ctx context.Context, mc mpc.Context, records []party.RecordId, rows []AttributionInputRow[F], perUserCap uint32, rbg protocol.RandomBitsGenerator[F]) ([]CappedCreditsWithAggregationBit[F], error) {
	if len(records) != len(rows) {
		return nil, fmt.Errorf("credit_capping: %d records but %d rows", len(records), len(rows))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	zero := rows[0].Credit.Left
	one := share.Public(zero, mc.Role(), party.H0, 1)
	cap := share.Public(zero, mc.Role(), party.H0, uint64(perUserCap))

	cumulative := share.Zero(zero)
	exhausted := share.Zero(zero)
	out := make([]CappedCreditsWithAggregationBit[F], len(rows))

	for i, row := range rows {
		rc := mc.NarrowString(fmt.Sprintf("credit-capping/row%d", i))

		cumulativeBefore, err := protocol.Multiply(ctx, rc.NarrowString("carry-cumulative"), records[i], row.HelperBit, cumulative)
		if err != nil {
			return nil, err
		}
		cumulative = row.Credit.Add(cumulativeBefore)

		exhaustedBefore, err := protocol.Multiply(ctx, rc.NarrowString("carry-exhausted"), records[i], row.HelperBit, exhausted)
		if err != nil {
			return nil, err
		}

		over, err := protocol.GreaterThanPublic(ctx, rc.NarrowString("compare"), records[i], cumulative, uint64(perUserCap), rbg)
		if err != nil {
			return nil, err
		}

		notExhaustedBefore := one.Sub(exhaustedBefore)
		crossing, err := protocol.Multiply(ctx, rc.NarrowString("crossing"), records[i], over, notExhaustedBefore)
		if err != nil {
			return nil, err
		}
		exhausted = exhaustedBefore.Add(crossing)

		remainder := cap.Sub(cumulativeBefore)
		delta := remainder.Sub(row.Credit)
		scaledDelta, err := protocol.Multiply(ctx, rc.NarrowString("scale-delta"), records[i], over, delta)
		if err != nil {
			return nil, err
		}
		inner := row.Credit.Add(scaledDelta)

		finalCredit, err := protocol.Multiply(ctx, rc.NarrowString("final"), records[i], notExhaustedBefore, inner)
		if err != nil {
			return nil, err
		}

		out[i] = CappedCreditsWithAggregationBit[F]{
			HelperBit:      row.HelperBit,
			AggregationBit: one,
			BreakdownKey:   row.BreakdownKey,
			Credit:         finalCredit,
		}
	}
	return out, nil
}
