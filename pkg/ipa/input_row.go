// Package ipa assembles the L2 protocol library and pkg/attribution into
// the end-to-end circuit spec.md §4.6 describes: modulus-convert match
// keys, sort by them, derive helper bits, then accumulate, cap, and
// aggregate credit by breakdown key.
package ipa

import (
	"fmt"

	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/share"
)

// InputRow is one secret-shared event record as it arrives at a helper
// (spec.md §4.1/§4.6), matching original_source/src/protocol/ipa/mod.rs's
// IPAInputRow field-for-field: an XOR-shared match key plus three
// field-shared sidecar values.
type InputRow[F ff.Field[F]] struct {
	MatchKeyShares share.XorReplicated
	IsTriggerBit   share.Replicated[F]
	BreakdownKey   share.Replicated[F]
	TriggerValue   share.Replicated[F]
}

// SizeInBytes is the canonical per-row encoding length: the XOR-shared
// match key followed by the three field shares, in that order.
func SizeInBytes[F ff.Field[F]](zero F, matchKeyWidth int) int {
	return share.XorSizeInBytes(matchKeyWidth) + 3*share.SizeInBytes(zero)
}

// Serialize writes the canonical little-endian encoding (match key shares,
// is_trigger_bit, breakdown_key, trigger_value) into buf, mirroring
// IPAInputRow::serialize's concatenation order.
func (r InputRow[F]) Serialize(buf []byte) error {
	if err := r.MatchKeyShares.Serialize(buf); err != nil {
		return err
	}
	mkWidth := share.XorSizeInBytes(r.MatchKeyShares.Width())
	fieldWidth := share.SizeInBytes(r.IsTriggerBit.Left)
	if err := r.IsTriggerBit.Serialize(buf[mkWidth:]); err != nil {
		return err
	}
	if err := r.BreakdownKey.Serialize(buf[mkWidth+fieldWidth:]); err != nil {
		return err
	}
	if err := r.TriggerValue.Serialize(buf[mkWidth+2*fieldWidth:]); err != nil {
		return err
	}
	return nil
}

// FromByteSlice splits input into SizeInBytes-aligned chunks and decodes
// each into an InputRow, mirroring IPAInputRow::from_byte_slice. matchKeyWidth
// is B::BITS (spec.md's match-key bit-array width); zero determines F's
// concrete type and byte width.
func FromByteSlice[F ff.Field[F]](input []byte, zero F, matchKeyWidth int) ([]InputRow[F], error) {
	rowSize := SizeInBytes(zero, matchKeyWidth)
	if rowSize == 0 || len(input)%rowSize != 0 {
		return nil, fmt.Errorf("ipa: input is not aligned to %d-byte rows (got %d bytes)", rowSize, len(input))
	}
	mkWidth := share.XorSizeInBytes(matchKeyWidth)
	fieldWidth := share.SizeInBytes(zero)

	n := len(input) / rowSize
	out := make([]InputRow[F], n)
	for i := 0; i < n; i++ {
		chunk := input[i*rowSize : (i+1)*rowSize]

		mk, err := share.DeserializeXor(chunk, matchKeyWidth)
		if err != nil {
			return nil, err
		}
		isTrigger, err := share.Deserialize(chunk[mkWidth:], zero)
		if err != nil {
			return nil, err
		}
		breakdownKey, err := share.Deserialize(chunk[mkWidth+fieldWidth:], zero)
		if err != nil {
			return nil, err
		}
		triggerValue, err := share.Deserialize(chunk[mkWidth+2*fieldWidth:], zero)
		if err != nil {
			return nil, err
		}

		out[i] = InputRow[F]{
			MatchKeyShares: mk,
			IsTriggerBit:   isTrigger,
			BreakdownKey:   breakdownKey,
			TriggerValue:   triggerValue,
		}
	}
	return out, nil
}

// Deserialize decodes exactly one InputRow from a single SizeInBytes-sized
// buffer. original_source left this path as an explicit todo!() — a
// single-row path was never exercised because the only caller always had a
// whole aligned stream to hand to from_byte_slice. spec.md §9 requires this
// implementation to provide both and for a single SIZE_IN_BYTES buffer to
// match one iteration of FromByteSlice, so this delegates to it.
func Deserialize[F ff.Field[F]](buf []byte, zero F, matchKeyWidth int) (InputRow[F], error) {
	rows, err := FromByteSlice(buf, zero, matchKeyWidth)
	if err != nil {
		return InputRow[F]{}, err
	}
	if len(rows) != 1 {
		return InputRow[F]{}, fmt.Errorf("ipa: Deserialize expects exactly one row's worth of bytes, got %d", len(rows))
	}
	return rows[0], nil
}
