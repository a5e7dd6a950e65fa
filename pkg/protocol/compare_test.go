package protocol_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/ipa/internal/testworld"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/share"
)

func TestRandomBitsGenerator_ProducesConsistentBits(t *testing.T) {
	zero := ff.Fp31(0)
	rbg := protocol.NewRandomBitsGenerator(zero.BitWidth(), zero)
	require.Equal(t, zero, rbg.Zero())

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	record := party.RecordIdFromInt(0)
	results, err := testworld.RunEach(w, func(mc mpc.Context) ([]share.Replicated[ff.Fp31], error) {
		return rbg.Generate(context.Background(), mc, record, "test")
	})
	require.NoError(t, err)

	require.Len(t, results[party.H0], zero.BitWidth())
	for i := 0; i < zero.BitWidth(); i++ {
		got := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp31]{
			party.H0: results[party.H0][i],
			party.H1: results[party.H1][i],
			party.H2: results[party.H2][i],
		})
		require.True(t, got == ff.NewFp31(0) || got == ff.NewFp31(1), "bit %d must reconstruct to 0 or 1, got %v", i, got)
	}
}

func runBitDecomposition(t *testing.T, v uint64) []uint64 {
	t.Helper()
	zero := ff.Fp31(0)
	xShares := testworld.ShareField(zero, v)
	rbg := protocol.NewRandomBitsGenerator(zero.BitWidth(), zero)

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	record := party.RecordIdFromInt(0)
	results, err := testworld.RunEach(w, func(mc mpc.Context) ([]share.Replicated[ff.Fp31], error) {
		return protocol.BitDecomposition(context.Background(), mc, record, xShares[mc.Role()], zero.BitWidth(), rbg)
	})
	require.NoError(t, err)

	out := make([]uint64, zero.BitWidth())
	for i := range out {
		got := testworld.ReconstructField(map[party.Role]share.Replicated[ff.Fp31]{
			party.H0: results[party.H0][i],
			party.H1: results[party.H1][i],
			party.H2: results[party.H2][i],
		})
		out[i] = got.AsUint64()
	}
	return out
}

func TestBitDecomposition_RecoversBits(t *testing.T) {
	got := runBitDecomposition(t, 13) // 0b01101
	require.Equal(t, []uint64{1, 0, 1, 1, 0}, got)
}

func TestBitDecomposition_Zero(t *testing.T) {
	got := runBitDecomposition(t, 0)
	require.Equal(t, []uint64{0, 0, 0, 0, 0}, got)
}

func runGreaterThanPublic(t *testing.T, v, c uint64) uint64 {
	t.Helper()
	zero := ff.Fp31(0)
	xShares := testworld.ShareField(zero, v)
	rbg := protocol.NewRandomBitsGenerator(zero.BitWidth(), zero)

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	record := party.RecordIdFromInt(0)
	results, err := testworld.RunEach(w, func(mc mpc.Context) (share.Replicated[ff.Fp31], error) {
		return protocol.GreaterThanPublic(context.Background(), mc, record, xShares[mc.Role()], c, rbg)
	})
	require.NoError(t, err)

	return testworld.ReconstructField(results).AsUint64()
}

func TestGreaterThanPublic_StrictlyGreater(t *testing.T) {
	require.Equal(t, uint64(1), runGreaterThanPublic(t, 10, 3))
}

func TestGreaterThanPublic_Equal(t *testing.T) {
	require.Equal(t, uint64(0), runGreaterThanPublic(t, 5, 5))
}

func TestGreaterThanPublic_Less(t *testing.T) {
	require.Equal(t, uint64(0), runGreaterThanPublic(t, 2, 9))
}

func TestGreaterThanPublic_ZeroVsZero(t *testing.T) {
	require.Equal(t, uint64(0), runGreaterThanPublic(t, 0, 0))
}
