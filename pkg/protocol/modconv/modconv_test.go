package modconv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ipa/internal/testworld"
	"github.com/luxfi/ipa/pkg/bits"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol/modconv"
	"github.com/luxfi/ipa/pkg/share"
)

func runConvertBit(t *testing.T, bit uint64) ff.Fp31 {
	t.Helper()
	shares := testworld.ShareMatchKey(bit, 1)
	zero := ff.Fp31(0)

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	record := party.RecordIdFromInt(0)
	results, err := testworld.RunEach(w, func(mc mpc.Context) (share.Replicated[ff.Fp31], error) {
		return modconv.ConvertBit(context.Background(), mc, record, shares[mc.Role()], zero)
	})
	require.NoError(t, err)

	return testworld.ReconstructField(results)
}

func TestConvertBit_Zero(t *testing.T) {
	require.Equal(t, ff.NewFp31(0), runConvertBit(t, 0))
}

func TestConvertBit_One(t *testing.T) {
	require.Equal(t, ff.NewFp31(1), runConvertBit(t, 1))
}

func TestConvertBit_RejectsWiderInput(t *testing.T) {
	shares := testworld.ShareMatchKey(1, 4)
	zero := ff.Fp31(0)

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	_, err = testworld.RunEach(w, func(mc mpc.Context) (share.Replicated[ff.Fp31], error) {
		return modconv.ConvertBit(context.Background(), mc, party.RecordIdFromInt(0), shares[mc.Role()], zero)
	})
	require.Error(t, err)
}

func TestConvertMatchKey_RecoversEveryBit(t *testing.T) {
	const width = 5
	matchKeys := []uint64{0b10110, 0b00001, 0b11111}

	sharedByRole := map[party.Role][]share.XorReplicated{
		party.H0: make([]share.XorReplicated, len(matchKeys)),
		party.H1: make([]share.XorReplicated, len(matchKeys)),
		party.H2: make([]share.XorReplicated, len(matchKeys)),
	}
	for i, mk := range matchKeys {
		s := testworld.ShareMatchKey(mk, width)
		for _, role := range party.All() {
			sharedByRole[role][i] = s[role]
		}
	}

	records := make([]party.RecordId, len(matchKeys))
	for i := range records {
		records[i] = party.RecordIdFromInt(i)
	}

	zero := ff.Fp31(0)
	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	results, err := testworld.RunEach(w, func(mc mpc.Context) ([][]share.Replicated[ff.Fp31], error) {
		return modconv.ConvertMatchKey(context.Background(), mc, records, sharedByRole[mc.Role()], zero)
	})
	require.NoError(t, err)

	for bit := 0; bit < width; bit++ {
		for i, mk := range matchKeys {
			got := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp31]{
				party.H0: results[party.H0][bit][i],
				party.H1: results[party.H1][bit][i],
				party.H2: results[party.H2][bit][i],
			})
			want := ff.NewFp31((mk >> uint(bit)) & 1)
			require.Equal(t, want, got, "bit %d of match key %d", bit, i)
		}
	}
}

func TestConvertMatchKey_LengthMismatch(t *testing.T) {
	zero := ff.Fp31(0)
	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	mk := testworld.ShareMatchKey(1, bits.MatchKeyWidth)
	records := []party.RecordId{party.RecordIdFromInt(0), party.RecordIdFromInt(1)}

	_, err = testworld.RunEach(w, func(mc mpc.Context) ([][]share.Replicated[ff.Fp31], error) {
		return modconv.ConvertMatchKey(context.Background(), mc, records, []share.XorReplicated{mk[mc.Role()]}, zero)
	})
	require.Error(t, err)
}
