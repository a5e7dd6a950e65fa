package ipa

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/attribution"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/protocol/modconv"
	"github.com/luxfi/ipa/pkg/share"
	"github.com/luxfi/ipa/pkg/sort"
)

// Config bundles the IPA circuit's public per-query parameters (spec.md
// §4.6): every helper MUST run with identical values.
type Config struct {
	PerUserCreditCap uint32
	MaxBreakdownKey  int
	NumMultiBits     int
}

// Run executes the six-stage IPA circuit end to end: modulus-convert match
// keys, generate and apply a sort permutation by match key, derive helper
// bits, then accumulate, cap, and aggregate credit by breakdown key
// (spec.md §4.6). The result holds exactly cfg.MaxBreakdownKey rows.
//
// The step segment names below — mod_conv_match_key,
// gen_sort_permutation_from_match_keys, apply_sort_permutation,
// compute_helper_bits, accumulate_credit, user_capping, aggregate_credit —
// are carried over character for character from
// original_source/src/protocol/ipa/mod.rs's Step enum, since spec.md §9
// requires well-known segment strings to match bitwise across helpers.
func Run[F ff.Field[F]](ctx context.Context, mc mpc.Context, inputRows []InputRow[F], cfg Config, zero F) ([]attribution.AggregateCreditOutputRow[F], error) {
	n := len(inputRows)
	records := make([]party.RecordId, n)
	for i := range records {
		records[i] = party.RecordIdFromInt(i)
	}

	matchKeys := make([]share.XorReplicated, n)
	for i, row := range inputRows {
		matchKeys[i] = row.MatchKeyShares
	}
	matchKeyWidth := 0
	if n > 0 {
		matchKeyWidth = matchKeys[0].Width()
	}

	convertedBitMajor, err := modconv.ConvertMatchKey(ctx, mc.NarrowString("mod_conv_match_key"), records, matchKeys, zero)
	if err != nil {
		return nil, fmt.Errorf("mod_conv_match_key: %w", err)
	}

	sortPerm, err := sort.GeneratePermutationAndRevealShuffled(ctx, mc.NarrowString("gen_sort_permutation_from_match_keys"), records, convertedBitMajor, matchKeyWidth, cfg.NumMultiBits, zero)
	if err != nil {
		return nil, fmt.Errorf("gen_sort_permutation_from_match_keys: %w", err)
	}

	convertedRecordMajor := transposeBits(convertedBitMajor, n)

	combined := make([]modulusConvertedRow[F], n)
	for i, row := range inputRows {
		combined[i] = modulusConvertedRow[F]{
			matchKeyBits: convertedRecordMajor[i],
			isTriggerBit: row.IsTriggerBit,
			breakdownKey: row.BreakdownKey,
			triggerValue: row.TriggerValue,
		}
	}

	sortedRows, err := sort.ApplySortPermutation[modulusConvertedRow[F]](ctx, mc.NarrowString("apply_sort_permutation"), records, combined, sortPerm, party.H0)
	if err != nil {
		return nil, fmt.Errorf("apply_sort_permutation: %w", err)
	}

	helperBits := make([]share.Replicated[F], n)
	if n > 0 {
		helperBits[0] = share.Zero(zero)
	}
	hbc := mc.NarrowString("compute_helper_bits")
	for i := 1; i < n; i++ {
		rc := hbc.NarrowString(fmt.Sprintf("row%d", i))
		hb, err := protocol.BitwiseEqualField(ctx, rc, records[i], sortedRows[i-1].matchKeyBits, sortedRows[i].matchKeyBits)
		if err != nil {
			return nil, fmt.Errorf("compute_helper_bits: %w", err)
		}
		helperBits[i] = hb
	}

	attributionRows := make([]attribution.AttributionInputRow[F], n)
	for i, row := range sortedRows {
		attributionRows[i] = attribution.AttributionInputRow[F]{
			IsTriggerBit: row.isTriggerBit,
			HelperBit:    helperBits[i],
			BreakdownKey: row.breakdownKey,
			Credit:       row.triggerValue,
		}
	}

	accumulated, err := attribution.AccumulateCredit(ctx, mc.NarrowString("accumulate_credit"), records, attributionRows)
	if err != nil {
		return nil, fmt.Errorf("accumulate_credit: %w", err)
	}

	rbg := protocol.NewRandomBitsGenerator(zero.BitWidth(), zero)
	capped, err := attribution.CreditCapping(ctx, mc.NarrowString("user_capping"), records, accumulated, cfg.PerUserCreditCap, rbg)
	if err != nil {
		return nil, fmt.Errorf("user_capping: %w", err)
	}

	out, err := attribution.AggregateCredit(ctx, mc.NarrowString("aggregate_credit"), capped, cfg.MaxBreakdownKey, cfg.NumMultiBits, rbg)
	if err != nil {
		return nil, fmt.Errorf("aggregate_credit: %w", err)
	}
	return out, nil
}

// transposeBits flips a bit-major [][]share.Replicated[F] (outer = bit,
// inner = record) into record-major (outer = record, inner = bit), the
// layout a per-row modulusConvertedRow needs.
func transposeBits[F ff.Field[F]](bitMajor [][]share.Replicated[F], n int) [][]share.Replicated[F] {
	width := len(bitMajor)
	out := make([][]share.Replicated[F], n)
	for i := range out {
		out[i] = make([]share.Replicated[F], width)
		for bit := 0; bit < width; bit++ {
			out[i][bit] = bitMajor[bit][i]
		}
	}
	return out
}
