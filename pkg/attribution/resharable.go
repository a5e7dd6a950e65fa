package attribution

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/share"
)

// Reshare implements pkg/sort's Resharable contract for
// CappedCreditsWithAggregationBit: each field narrows the context under its
// own well-known segment name and reshares concurrently (spec.md §4.7),
// mirroring original_source/src/protocol/attribution/aggregate_credit.rs's
// Resharable impl field-for-field (helper_bit, aggregation_bit,
// breakdown_key, credit).
func (c CappedCreditsWithAggregationBit[F]) Reshare(ctx context.Context, mc mpc.Context, record party.RecordId, to party.Role) (CappedCreditsWithAggregationBit[F], error) {
	var helperBit, aggregationBit, breakdownKey, credit share.Replicated[F]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		helperBit, err = protocol.Reshare(gctx, mc.NarrowString("helper_bit"), record, c.HelperBit, to)
		return err
	})
	g.Go(func() error {
		var err error
		aggregationBit, err = protocol.Reshare(gctx, mc.NarrowString("aggregation_bit"), record, c.AggregationBit, to)
		return err
	})
	g.Go(func() error {
		var err error
		breakdownKey, err = protocol.Reshare(gctx, mc.NarrowString("breakdown_key"), record, c.BreakdownKey, to)
		return err
	})
	g.Go(func() error {
		var err error
		credit, err = protocol.Reshare(gctx, mc.NarrowString("credit"), record, c.Credit, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return CappedCreditsWithAggregationBit[F]{}, err
	}

	return CappedCreditsWithAggregationBit[F]{
		HelperBit:      helperBit,
		AggregationBit: aggregationBit,
		BreakdownKey:   breakdownKey,
		Credit:         credit,
	}, nil
}
