package attribution_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ipa/internal/testworld"
	"github.com/luxfi/ipa/pkg/attribution"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/share"
)

// capRow mirrors one entry of original_source/src/protocol/attribution/aggregate_credit.rs's
// RAW_INPUT table: [helper_bit, breakdown_key, credit], aggregation_bit
// always 1 for a real row (synthetic per-breakdown-key rows are
// AggregateCredit's own job to append, not this fixture's).
type capRow struct {
	helperBit    uint64
	breakdownKey uint64
	credit       uint64
}

// rawInput is the 19 real rows of RAW_INPUT (the appended eight
// [helper_bit=0, breakdown_key=k, credit=0] rows are dropped here since
// AggregateCredit appends its own synthetic row per breakdown key).
var rawInput = []capRow{
	{helperBit: 1, breakdownKey: 3, credit: 0},
	{helperBit: 1, breakdownKey: 4, credit: 0},
	{helperBit: 1, breakdownKey: 4, credit: 18},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 1, credit: 0},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 2, credit: 2},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 2, credit: 0},
	{helperBit: 1, breakdownKey: 2, credit: 10},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 0, credit: 0},
	{helperBit: 1, breakdownKey: 5, credit: 6},
	{helperBit: 1, breakdownKey: 0, credit: 0},
}

// wantTotals is the per-breakdown-key sum of credit over rawInput's real
// rows, for breakdown keys 0..7 — recovered from
// original_source's EXPECTED sorted-rows table (grouped by breakdown_key,
// summed within each group) rather than quoted directly, since this
// package's AggregateCredit returns final per-key totals, not the
// intermediate sorted-and-not-yet-summed row list EXPECTED itself is.
var wantTotals = []uint64{0, 0, 12, 0, 18, 6, 0, 0}

func TestAggregateCredit_RawInputFixture(t *testing.T) {
	zero := ff.NewFp31(0)
	const maxBreakdownKey = 8
	const numMultiBits = 3

	sharedByRole := map[party.Role][]attribution.CappedCreditsWithAggregationBit[ff.Fp31]{
		party.H0: make([]attribution.CappedCreditsWithAggregationBit[ff.Fp31], len(rawInput)),
		party.H1: make([]attribution.CappedCreditsWithAggregationBit[ff.Fp31], len(rawInput)),
		party.H2: make([]attribution.CappedCreditsWithAggregationBit[ff.Fp31], len(rawInput)),
	}
	for i, r := range rawInput {
		hb := testworld.ShareField(zero, r.helperBit)
		agg := testworld.ShareField(zero, 1)
		bk := testworld.ShareField(zero, r.breakdownKey)
		credit := testworld.ShareField(zero, r.credit)
		for _, role := range party.All() {
			sharedByRole[role][i] = attribution.CappedCreditsWithAggregationBit[ff.Fp31]{
				HelperBit:      hb[role],
				AggregationBit: agg[role],
				BreakdownKey:   bk[role],
				Credit:         credit[role],
			}
		}
	}

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	rbg := protocol.NewRandomBitsGenerator(zero.BitWidth(), zero)
	results, err := testworld.RunEach(w, func(mc mpc.Context) ([]attribution.AggregateCreditOutputRow[ff.Fp31], error) {
		return attribution.AggregateCredit(context.Background(), mc, sharedByRole[mc.Role()], maxBreakdownKey, numMultiBits, rbg)
	})
	require.NoError(t, err)

	for k := 0; k < maxBreakdownKey; k++ {
		bk := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp31]{
			party.H0: results[party.H0][k].BreakdownKey,
			party.H1: results[party.H1][k].BreakdownKey,
			party.H2: results[party.H2][k].BreakdownKey,
		})
		credit := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp31]{
			party.H0: results[party.H0][k].Credit,
			party.H1: results[party.H1][k].Credit,
			party.H2: results[party.H2][k].Credit,
		})
		require.Equal(t, uint64(k), bk.AsUint64(), "breakdown key at output position %d", k)
		require.Equal(t, wantTotals[k], credit.AsUint64(), "credit total for breakdown key %d", k)
	}
}
