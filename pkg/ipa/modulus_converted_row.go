package ipa

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/share"
)

// modulusConvertedRow is an InputRow after its match key has been lifted
// from an XOR-shared bit array to per-bit field shares (spec.md §4.3's
// modulus conversion), mirroring original_source/src/protocol/ipa/mod.rs's
// IPAModulusConvertedInputRow. This is the row type ApplySortPermutation
// moves, so it implements sort.Resharable.
type modulusConvertedRow[F ff.Field[F]] struct {
	matchKeyBits []share.Replicated[F]
	isTriggerBit share.Replicated[F]
	breakdownKey share.Replicated[F]
	triggerValue share.Replicated[F]
}

// Reshare narrows per field — match_key_shares, is_trigger_bit,
// breakdown_key, trigger_value, the same four segment names and grouping
// original_source's Resharable impl uses — and runs all four concurrently.
func (r modulusConvertedRow[F]) Reshare(ctx context.Context, mc mpc.Context, record party.RecordId, to party.Role) (modulusConvertedRow[F], error) {
	var matchKeyBits []share.Replicated[F]
	var isTriggerBit, breakdownKey, triggerValue share.Replicated[F]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mkc := mc.NarrowString("match_key_shares")
		bits := make([]share.Replicated[F], len(r.matchKeyBits))
		for i, b := range r.matchKeyBits {
			bc := mkc.NarrowString(fmt.Sprintf("bit%d", i))
			reshared, err := protocol.Reshare(gctx, bc, record, b, to)
			if err != nil {
				return err
			}
			bits[i] = reshared
		}
		matchKeyBits = bits
		return nil
	})
	g.Go(func() error {
		var err error
		isTriggerBit, err = protocol.Reshare(gctx, mc.NarrowString("is_trigger_bit"), record, r.isTriggerBit, to)
		return err
	})
	g.Go(func() error {
		var err error
		breakdownKey, err = protocol.Reshare(gctx, mc.NarrowString("breakdown_key"), record, r.breakdownKey, to)
		return err
	})
	g.Go(func() error {
		var err error
		triggerValue, err = protocol.Reshare(gctx, mc.NarrowString("trigger_value"), record, r.triggerValue, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return modulusConvertedRow[F]{}, err
	}

	return modulusConvertedRow[F]{
		matchKeyBits: matchKeyBits,
		isTriggerBit: isTriggerBit,
		breakdownKey: breakdownKey,
		triggerValue: triggerValue,
	}, nil
}
