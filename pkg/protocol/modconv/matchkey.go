package modconv

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// ConvertMatchKey runs ConvertBit over every bit of an XOR-shared match key,
// one per record, and returns the result already transposed: the outer
// index is bit position, the inner index is record — exactly the layout
// GenSortPermutationFromMatchKeys consumes (spec.md §4.4). Each bit
// position is narrowed independently so its four-round ConvertBit pipeline
// runs without colliding with any other bit's channels.
func ConvertMatchKey[F ff.Field[F]](ctx context.Context, mc mpc.Context, records []party.RecordId, matchKeys []share.XorReplicated, zero F) ([][]share.Replicated[F], error) {
	if len(records) != len(matchKeys) {
		return nil, fmt.Errorf("modconv: %d records but %d match keys", len(records), len(matchKeys))
	}
	width := 0
	if len(matchKeys) > 0 {
		width = matchKeys[0].Width()
	}

	out := make([][]share.Replicated[F], width)
	for bit := 0; bit < width; bit++ {
		bc := mc.NarrowString(fmt.Sprintf("mod-conv-match-key/bit%d", bit))
		row := make([]share.Replicated[F], len(matchKeys))
		for i, mk := range matchKeys {
			converted, err := ConvertBit(ctx, bc, records[i], extractBit(mk, bit), zero)
			if err != nil {
				return nil, err
			}
			row[i] = converted
		}
		out[bit] = row
	}
	return out, nil
}
