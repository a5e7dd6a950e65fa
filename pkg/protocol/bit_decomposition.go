package protocol

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/bits"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol/modconv"
	"github.com/luxfi/ipa/pkg/share"
)

// BitDecomposition computes [x]_F → ([x_0]_F,...,[x_{k-1}]_F), k=bitWidth,
// per spec.md §4.3: generate k random shared bits via rbg, mask x by their
// field-reconstructed value r, reveal x+r, then recover x's own bits with a
// subtraction-with-borrow circuit (c − r, c public, r shared) run over the
// bits' boolean representation, converting each resulting bit back to F at
// the end.
func BitDecomposition[F ff.Field[F]](ctx context.Context, mc mpc.Context, record party.RecordId, x share.Replicated[F], bitWidth int, rbg RandomBitsGenerator[F]) ([]share.Replicated[F], error) {
	rXor, rField, err := rbg.GenerateBoth(ctx, mc, record, "bit-decomposition")
	if err != nil {
		return nil, err
	}

	rSum := share.Zero(x.Left)
	for i, ri := range rField {
		rSum = rSum.Add(ri.MulByPublic(uint64(1) << uint(i)))
	}

	revealed, err := Reveal(ctx, mc.NarrowString("bit-decomposition/reveal"), record, x.Add(rSum))
	if err != nil {
		return nil, err
	}
	c := revealed.AsUint64()

	borrow := share.NewXorReplicated(bits.New(0, 1), bits.New(0, 1))
	diffBits := make([]share.XorReplicated, bitWidth)
	for i := 0; i < bitWidth; i++ {
		ci := (c>>uint(i))&1 == 1
		bc := mc.NarrowString(fmt.Sprintf("bit-decomposition/sub%d", i))

		andRB, err := andBit(ctx, bc, record, rXor[i], borrow)
		if err != nil {
			return nil, err
		}

		combined := rXor[i].Xor(borrow)
		diff := combined
		if ci {
			diff = notBit(mc, combined)
		}
		diffBits[i] = diff

		if ci {
			borrow = andRB
		} else {
			borrow = combined.Xor(andRB)
		}
	}

	out := make([]share.Replicated[F], bitWidth)
	for i, d := range diffBits {
		fc := mc.NarrowString(fmt.Sprintf("bit-decomposition/to-field%d", i))
		converted, err := modconv.ConvertBit(ctx, fc, record, d, x.Left)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
