package attribution

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/share"
	"github.com/luxfi/ipa/pkg/sort"
)

// AggregateCredit expands the capped rows with one synthetic row per
// breakdown key, sorts by aggregation_bit then by breakdown_key (stability
// of the second sort preserves the first, per spec.md §4.4), and emits
// exactly maxBreakdownKey output rows holding each key's total credit
// (spec.md §4.5).
//
// Grounded on
// original_source/src/protocol/attribution/aggregate_credit.rs's
// sort_by_aggregation_bit_and_breakdown_key (transpose,
// bit_decompose_breakdown_key, sort_by_aggregation_bit) through the point
// where the retained source fragment stops. The final per-key total
// extraction below is this package's own synthesis of spec.md §4.5's
// "prefix-sum credits... emit one output row per breakdown key" contract,
// since that extraction step is not part of the retained source: a
// synthetic row's final sorted position is read directly off the public
// permutation pkg/sort.GeneratePermutationAndRevealShuffled already
// returns (the permutation is revealed cleartext to every helper as part
// of generating it, so this lookup needs no further protocol round), and
// the key's total is a reverse running sum of credit computed once over
// the fully sorted array, gated by the next row's AggregationBit exactly
// like AccumulateCredit's reverse sum is gated by the next row's HelperBit.
func AggregateCredit[F ff.Field[F]](ctx context.Context, mc mpc.Context, rows []CappedCreditsWithAggregationBit[F], maxBreakdownKey, numMultiBits int, rbg protocol.RandomBitsGenerator[F]) ([]AggregateCreditOutputRow[F], error) {
	if maxBreakdownKey <= 0 {
		return nil, fmt.Errorf("aggregate_credit: max_breakdown_key must be positive, got %d", maxBreakdownKey)
	}
	zero := rbg.Zero()
	role := mc.Role()
	n := len(rows)
	total := n + maxBreakdownKey

	expanded := make([]CappedCreditsWithAggregationBit[F], total)
	copy(expanded, rows)
	for k := 0; k < maxBreakdownKey; k++ {
		expanded[n+k] = CappedCreditsWithAggregationBit[F]{
			HelperBit:      share.Zero(zero),
			AggregationBit: share.Zero(zero),
			BreakdownKey:   share.Public(zero, role, party.H0, uint64(k)),
			Credit:         share.Zero(zero),
		}
	}

	records := make([]party.RecordId, total)
	for i := range records {
		records[i] = party.RecordIdFromInt(i)
	}

	aggPerm, err := sort.GeneratePermutationAndRevealShuffled(ctx, mc.NarrowString("sort-by-aggregation-bit/generate"), records, [][]share.Replicated[F]{aggregationBitColumn(expanded)}, 1, numMultiBits, zero)
	if err != nil {
		return nil, err
	}
	byAgg, err := sort.ApplySortPermutation[CappedCreditsWithAggregationBit[F]](ctx, mc.NarrowString("sort-by-aggregation-bit/apply"), records, expanded, aggPerm, party.H0)
	if err != nil {
		return nil, err
	}

	bitWidth := zero.BitWidth()
	bdBits := make([][]share.Replicated[F], bitWidth)
	for i := range bdBits {
		bdBits[i] = make([]share.Replicated[F], total)
	}
	for i, row := range byAgg {
		rc := mc.NarrowString(fmt.Sprintf("bit-decompose-breakdown-key/row%d", i))
		bits, err := protocol.BitDecomposition(ctx, rc, records[i], row.BreakdownKey, bitWidth, rbg)
		if err != nil {
			return nil, err
		}
		for bit, bitShare := range bits {
			bdBits[bit][i] = bitShare
		}
	}

	keyPerm, err := sort.GeneratePermutationAndRevealShuffled(ctx, mc.NarrowString("sort-by-breakdown-key/generate"), records, bdBits, bitWidth, numMultiBits, zero)
	if err != nil {
		return nil, err
	}
	sorted, err := sort.ApplySortPermutation[CappedCreditsWithAggregationBit[F]](ctx, mc.NarrowString("sort-by-breakdown-key/apply"), records, byAgg, keyPerm, party.H0)
	if err != nil {
		return nil, err
	}

	// composed[j] is original (pre-sort) row j's final position.
	composed := make([]int, total)
	for j := range composed {
		composed[j] = keyPerm[aggPerm[j]]
	}

	revAcc := make([]share.Replicated[F], total)
	if total > 0 {
		revAcc[total-1] = sorted[total-1].Credit
		for i := total - 2; i >= 0; i-- {
			rc := mc.NarrowString(fmt.Sprintf("aggregate-credit/rev%d", i))
			carried, err := protocol.Multiply(ctx, rc, records[i], sorted[i+1].AggregationBit, revAcc[i+1])
			if err != nil {
				return nil, err
			}
			revAcc[i] = sorted[i].Credit.Add(carried)
		}
	}

	out := make([]AggregateCreditOutputRow[F], maxBreakdownKey)
	for k := 0; k < maxBreakdownKey; k++ {
		pos := composed[n+k]
		out[k] = AggregateCreditOutputRow[F]{
			BreakdownKey: share.Public(zero, role, party.H0, uint64(k)),
			Credit:       revAcc[pos],
		}
	}
	return out, nil
}

func aggregationBitColumn[F ff.Field[F]](rows []CappedCreditsWithAggregationBit[F]) []share.Replicated[F] {
	col := make([]share.Replicated[F], len(rows))
	for i, row := range rows {
		col[i] = row.AggregationBit
	}
	return col
}
