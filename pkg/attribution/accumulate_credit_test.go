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
	"github.com/luxfi/ipa/pkg/share"
)

// scenarioBSortedRow is Scenario B's five-row fixture (spec.md §8) after
// match-key sort: match keys [12345,12345,12345,68362,68362], so the
// contiguous-same-user HelperBit sequence is [0,1,1,0,1].
type scenarioBSortedRow struct {
	isTriggerBit uint64
	helperBit    uint64
	breakdownKey uint64
	credit       uint64
}

var scenarioBSorted = []scenarioBSortedRow{
	{isTriggerBit: 0, helperBit: 0, breakdownKey: 1, credit: 0},
	{isTriggerBit: 0, helperBit: 1, breakdownKey: 2, credit: 0},
	{isTriggerBit: 1, helperBit: 1, breakdownKey: 0, credit: 5},
	{isTriggerBit: 0, helperBit: 0, breakdownKey: 1, credit: 0},
	{isTriggerBit: 1, helperBit: 1, breakdownKey: 0, credit: 2},
}

func shareAttributionRows(zero ff.Fp31, rows []scenarioBSortedRow) map[party.Role][]attribution.AttributionInputRow[ff.Fp31] {
	out := map[party.Role][]attribution.AttributionInputRow[ff.Fp31]{
		party.H0: make([]attribution.AttributionInputRow[ff.Fp31], len(rows)),
		party.H1: make([]attribution.AttributionInputRow[ff.Fp31], len(rows)),
		party.H2: make([]attribution.AttributionInputRow[ff.Fp31], len(rows)),
	}
	for i, r := range rows {
		trig := testworld.ShareField(zero, r.isTriggerBit)
		helper := testworld.ShareField(zero, r.helperBit)
		bk := testworld.ShareField(zero, r.breakdownKey)
		credit := testworld.ShareField(zero, r.credit)
		for _, role := range party.All() {
			out[role][i] = attribution.AttributionInputRow[ff.Fp31]{
				IsTriggerBit: trig[role],
				HelperBit:    helper[role],
				BreakdownKey: bk[role],
				Credit:       credit[role],
			}
		}
	}
	return out
}

func TestAccumulateCredit_ScenarioBLastTouch(t *testing.T) {
	zero := ff.Fp31(0)
	sharedByRole := shareAttributionRows(zero, scenarioBSorted)

	records := make([]party.RecordId, len(scenarioBSorted))
	for i := range records {
		records[i] = party.RecordIdFromInt(i)
	}

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	results, err := testworld.RunEach(w, func(mc mpc.Context) ([]attribution.AttributionInputRow[ff.Fp31], error) {
		return attribution.AccumulateCredit(context.Background(), mc, records, sharedByRole[mc.Role()])
	})
	require.NoError(t, err)

	want := []uint64{0, 5, 0, 2, 0}
	for i, w := range want {
		got := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp31]{
			party.H0: results[party.H0][i].Credit,
			party.H1: results[party.H1][i].Credit,
			party.H2: results[party.H2][i].Credit,
		})
		require.Equal(t, ff.NewFp31(w), got, "row %d credit", i)
	}
}

func TestAccumulateCredit_EmptyInput(t *testing.T) {
	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	results, err := testworld.RunEach(w, func(mc mpc.Context) ([]attribution.AttributionInputRow[ff.Fp31], error) {
		return attribution.AccumulateCredit(context.Background(), mc, nil, nil)
	})
	require.NoError(t, err)
	require.Empty(t, results[party.H0])
}

func TestAccumulateCredit_LengthMismatch(t *testing.T) {
	zero := ff.Fp31(0)
	sharedByRole := shareAttributionRows(zero, scenarioBSorted[:2])

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	records := []party.RecordId{party.RecordIdFromInt(0)}
	_, err = testworld.RunEach(w, func(mc mpc.Context) ([]attribution.AttributionInputRow[ff.Fp31], error) {
		return attribution.AccumulateCredit(context.Background(), mc, records, sharedByRole[mc.Role()])
	})
	require.Error(t, err)
}
