// Package attribution implements the attribution circuit's sub-steps
// (spec.md §4.5): per-user credit accumulation, per-user capping, and
// breakdown-key aggregation.
package attribution

import (
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/share"
)

// AttributionInputRow is one match-key-sorted row entering AccumulateCredit:
// HelperBit tells whether this row is the same user as the row before it
// (0 starts a new user's contiguous block).
type AttributionInputRow[F ff.Field[F]] struct {
	IsTriggerBit share.Replicated[F]
	HelperBit    share.Replicated[F]
	BreakdownKey share.Replicated[F]
	Credit       share.Replicated[F]
}

// CappedCreditsWithAggregationBit is a row after CreditCapping, additionally
// tagged with AggregationBit: 1 for a real input row, 0 for one of the
// synthetic per-breakdown-key rows AggregateCredit appends so every
// breakdown key is represented in the output regardless of whether any real
// row used it (spec.md §4.5).
type CappedCreditsWithAggregationBit[F ff.Field[F]] struct {
	HelperBit      share.Replicated[F]
	AggregationBit share.Replicated[F]
	BreakdownKey   share.Replicated[F]
	Credit         share.Replicated[F]
}

// AggregateCreditOutputRow is one of the max_breakdown_key rows the IPA
// pipeline returns.
type AggregateCreditOutputRow[F ff.Field[F]] struct {
	BreakdownKey share.Replicated[F]
	Credit       share.Replicated[F]
}
