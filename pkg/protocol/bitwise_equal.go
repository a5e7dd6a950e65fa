package protocol

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/bits"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// BitwiseEqual computes a single shared bit that is 1 iff x and y, two
// bitwise XOR-shared arrays of equal width, hold the same cleartext value
// (spec.md §4.3/§4.4's ComputeHelperBits call site). It XORs the two arrays
// locally (free — no communication), inverts each resulting bit (also
// local: notBit flips H0's component in the two places it is held, the way
// share.Public places a constant), and AND-reduces the inverted bits
// into one: all-zero after XOR means every bit matched, so the AND of all
// "bit is zero" indicators is the equality flag.
func BitwiseEqual(ctx context.Context, mc mpc.Context, record party.RecordId, x, y share.XorReplicated) (share.XorReplicated, error) {
	if x.Width() != y.Width() {
		return share.XorReplicated{}, fmt.Errorf("bitwise_equal: width mismatch (%d vs %d)", x.Width(), y.Width())
	}
	width := x.Width()
	diff := x.Xor(y)

	notBits := make([]share.XorReplicated, width)
	for i := 0; i < width; i++ {
		notBits[i] = notBit(mc, extractBit(diff, i))
	}

	acc := notBits[0]
	for i := 1; i < width; i++ {
		ac := mc.NarrowString(fmt.Sprintf("bitwise-equal/and%d", i))
		var err error
		acc, err = andBit(ctx, ac, record, acc, notBits[i])
		if err != nil {
			return share.XorReplicated{}, err
		}
	}
	return acc, nil
}

func extractBit(a share.XorReplicated, i int) share.XorReplicated {
	return share.NewXorReplicated(bits.New(boolToUint64(a.Left.Bit(i)), 1), bits.New(boolToUint64(a.Right.Bit(i)), 1))
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// notBit flips a shared bit by the public constant 1. party.H0 is the
// designated helper for this flip: it bumps its own Left coordinate, and
// H0.Left() bumps its Right coordinate in tandem, since the replicated
// invariant requires H0.Left()'s Right to track H0's Left. The third role
// leaves its share untouched.
func notBit(mc mpc.Context, b share.XorReplicated) share.XorReplicated {
	switch mc.Role() {
	case party.H0:
		return share.NewXorReplicated(b.Left.Xor(bits.New(1, 1)), b.Right)
	case party.H0.Left():
		return share.NewXorReplicated(b.Left, b.Right.Xor(bits.New(1, 1)))
	default:
		return b
	}
}

// andBit computes the replicated AND of two shared bits, the boolean analogue
// of Multiply: each helper locally computes
//
//	d = x_l·y_l ⊕ x_l·y_r ⊕ x_r·y_l ⊕ α⊕β
//
// using a single-bit PRSS pair, sends d to the right peer, and adopts the
// bit received from the left peer as its new left coordinate.
func andBit(ctx context.Context, mc mpc.Context, record party.RecordId, x, y share.XorReplicated) (share.XorReplicated, error) {
	alpha, beta := mpc.PRSSBitPair(mc, record)

	xl, xr := x.Left.Bit(0), x.Right.Bit(0)
	yl, yr := y.Left.Bit(0), y.Right.Bit(0)

	d := (xl && yl) != (xl && yr)
	d = d != (xr && yl)
	d = d != alpha
	d = d != beta

	if err := mc.Send(mc.Role().Right(), record, bits.New(boolToUint64(d), 1).Bytes()); err != nil {
		return share.XorReplicated{}, err
	}

	raw, err := mc.Receive(ctx, mc.Role().Left(), record)
	if err != nil {
		return share.XorReplicated{}, err
	}
	newLeft, err := bits.SetBytes(raw, 1)
	if err != nil {
		return share.XorReplicated{}, err
	}

	return share.NewXorReplicated(newLeft, bits.New(boolToUint64(d), 1)), nil
}
