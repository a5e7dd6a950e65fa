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

func TestReveal_RecoversSecret(t *testing.T) {
	zero := ff.Fp31(0)
	shares := testworld.ShareField(zero, 17)

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	results, err := testworld.RunEach(w, func(mc mpc.Context) (ff.Fp31, error) {
		return protocol.Reveal(context.Background(), mc, party.RecordIdFromInt(0), shares[mc.Role()])
	})
	require.NoError(t, err)

	for _, role := range party.All() {
		require.Equal(t, ff.NewFp31(17), results[role])
	}
}

func TestMultiply_ComputesProduct(t *testing.T) {
	zero := ff.Fp31(0)
	xShares := testworld.ShareField(zero, 6)
	yShares := testworld.ShareField(zero, 7)

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	record := party.RecordIdFromInt(0)
	results, err := testworld.RunEach(w, func(mc mpc.Context) (share.Replicated[ff.Fp31], error) {
		return protocol.Multiply(context.Background(), mc, record, xShares[mc.Role()], yShares[mc.Role()])
	})
	require.NoError(t, err)

	got := testworld.ReconstructField(results)
	require.Equal(t, ff.NewFp31(42%31), got)
}

func TestMultiply_ByZero(t *testing.T) {
	zero := ff.Fp31(0)
	xShares := testworld.ShareField(zero, 19)
	yShares := testworld.ShareField(zero, 0)

	w, err := testworld.New(t.Name())
	require.NoError(t, err)

	record := party.RecordIdFromInt(0)
	results, err := testworld.RunEach(w, func(mc mpc.Context) (share.Replicated[ff.Fp31], error) {
		return protocol.Multiply(context.Background(), mc, record, xShares[mc.Role()], yShares[mc.Role()])
	})
	require.NoError(t, err)

	got := testworld.ReconstructField(results)
	require.Equal(t, ff.NewFp31(0), got)
}

func TestReshare_PreservesSecretTowardEachTarget(t *testing.T) {
	zero := ff.Fp31(0)
	xShares := testworld.ShareField(zero, 23)

	for _, target := range party.All() {
		target := target
		t.Run(target.String(), func(t *testing.T) {
			w, err := testworld.New(t.Name())
			require.NoError(t, err)

			record := party.RecordIdFromInt(0)
			results, err := testworld.RunEach(w, func(mc mpc.Context) (share.Replicated[ff.Fp31], error) {
				return protocol.Reshare(context.Background(), mc, record, xShares[mc.Role()], target)
			})
			require.NoError(t, err)

			got := testworld.ReconstructField(results)
			require.Equal(t, ff.NewFp31(23), got)

			// the replicated invariant must hold among the fresh shares
			require.Equal(t, results[party.H0].Right, results[party.H1].Left)
			require.Equal(t, results[party.H1].Right, results[party.H2].Left)
			require.Equal(t, results[party.H2].Right, results[party.H0].Left)
		})
	}
}
