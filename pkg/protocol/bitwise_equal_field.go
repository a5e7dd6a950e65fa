package protocol

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// BitwiseEqualField computes a single shared 0/1 indicator that x and y —
// two equal-length vectors of individually field-shared bits, the shape a
// match key takes once lifted out of its XOR-shared bit array by modulus
// conversion (spec.md §4.3/§4.6's ComputeHelperBits step) — hold the same
// cleartext value. Per bit: diff_i = x_i + y_i − 2·x_i·y_i is the field
// encoding of XOR (one Multiply), eq_i = 1 − diff_i is the "this bit
// matched" indicator (free, local), and the width indicators AND-reduce
// (width−1 more Multiply calls) into the final equality flag.
func BitwiseEqualField[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x, y []share.Replicated[F]) (share.Replicated[F], error) {
	if len(x) != len(y) {
		return share.Replicated[F]{}, fmt.Errorf("bitwise_equal_field: width mismatch (%d vs %d)", len(x), len(y))
	}
	if len(x) == 0 {
		return share.Replicated[F]{}, fmt.Errorf("bitwise_equal_field: zero-width key")
	}
	zero := x[0].Left
	one := share.Public(zero, mc.Role(), party.H0, 1)

	eqBits := make([]share.Replicated[F], len(x))
	for i := range x {
		bc := mc.NarrowString(fmt.Sprintf("bitwise-equal-field/xor%d", i))
		xy, err := Multiply(ctx, bc, record, x[i], y[i])
		if err != nil {
			return share.Replicated[F]{}, err
		}
		diff := x[i].Add(y[i]).Sub(xy.MulByPublic(2))
		eqBits[i] = one.Sub(diff)
	}

	acc := eqBits[0]
	for i := 1; i < len(eqBits); i++ {
		ac := mc.NarrowString(fmt.Sprintf("bitwise-equal-field/and%d", i))
		var err error
		acc, err = Multiply(ctx, ac, record, acc, eqBits[i])
		if err != nil {
			return share.Replicated[F]{}, err
		}
	}
	return acc, nil
}
