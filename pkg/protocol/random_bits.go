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

// RandomBitsGenerator produces F::BITS uniformly random shared bits per
// call (spec.md §4.3's bit-decomposition primitive). Each bit starts as a
// PRSS-derived XOR-replicated coin — a valid, non-interactive sharing of a
// uniformly random bit, since PRSS's ring-correlated values already sum (in
// the telescoping sense used throughout this package) to something neither
// peer alone controls — and is then lifted to an additive F-share via
// modconv.ConvertBit.
//
// RandomBitsGenerator is a cheap, stateless handle: every field of it is
// immutable, so the zero-cost "clone" spec.md describes is simply copying
// the struct. Concurrent callers narrow independently (distinct callerTag)
// before calling Generate, so no shared mutable state or locking is needed.
type RandomBitsGenerator[F ff.Field[F]] struct {
	bitWidth int
	zero     F
}

// NewRandomBitsGenerator builds a generator producing bitWidth-bit values
// (F::BITS in spec.md's notation) over the field zero belongs to.
func NewRandomBitsGenerator[F ff.Field[F]](bitWidth int, zero F) RandomBitsGenerator[F] {
	return RandomBitsGenerator[F]{bitWidth: bitWidth, zero: zero}
}

// Zero exposes the field witness this generator was built with, so callers
// needing a zero-F value for unrelated local share construction (e.g.
// aggregate_credit's synthetic per-breakdown-key rows) don't need a second
// parameter just for that.
func (g RandomBitsGenerator[F]) Zero() F { return g.zero }

// Generate returns bitWidth fresh additive-replicated shares of independent
// random bits, narrowed under callerTag so concurrent callers in the same
// step never collide.
func (g RandomBitsGenerator[F]) Generate(ctx context.Context, mc mpc.Context, record party.RecordId, callerTag string) ([]share.Replicated[F], error) {
	_, field, err := g.GenerateBoth(ctx, mc, record, callerTag)
	return field, err
}

// GenerateBoth is Generate, additionally returning each bit's underlying
// XOR-replicated coin — needed by BitDecomposition's subtraction-with-borrow
// circuit, which operates on boolean shares before the final lift to F.
func (g RandomBitsGenerator[F]) GenerateBoth(ctx context.Context, mc mpc.Context, record party.RecordId, callerTag string) ([]share.XorReplicated, []share.Replicated[F], error) {
	bc := mc.NarrowString(fmt.Sprintf("random-bits/%s", callerTag))
	xorBits := make([]share.XorReplicated, g.bitWidth)
	fieldBits := make([]share.Replicated[F], g.bitWidth)
	for i := 0; i < g.bitWidth; i++ {
		ic := bc.NarrowString(fmt.Sprintf("bit%d", i))
		u, v := mpc.PRSSBitPair(ic, record)
		coin := share.NewXorReplicated(bits.New(boolToUint64(u), 1), bits.New(boolToUint64(v), 1))
		converted, err := modconv.ConvertBit(ctx, ic, record, coin, g.zero)
		if err != nil {
			return nil, nil, err
		}
		xorBits[i] = coin
		fieldBits[i] = converted
	}
	return xorBits, fieldBits, nil
}
