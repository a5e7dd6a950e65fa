package ipa

import (
	"fmt"
	"io"

	"github.com/luxfi/ipa/internal/ipaerr"
	"github.com/luxfi/ipa/pkg/ff"
)

// AlignedRowReader reads InputRows out of an io.Reader whose bytes are
// required to be an exact multiple of the row size, surfacing
// ipaerr.ErrInputMisaligned the moment a short trailing chunk is seen
// rather than waiting for an end-of-stream length check (the same
// contract original_source's AlignedByteArrStream gives its callers by
// construction, asserting size_in_bytes alignment on every chunk it
// yields instead of only on the fully buffered whole).
type AlignedRowReader[F ff.Field[F]] struct {
	r             io.Reader
	zero          F
	matchKeyWidth int
	rowSize       int
}

// NewAlignedRowReader wraps r, reading matchKeyWidth-bit match keys and
// rows sized by zero's concrete field.
func NewAlignedRowReader[F ff.Field[F]](r io.Reader, zero F, matchKeyWidth int) *AlignedRowReader[F] {
	return &AlignedRowReader[F]{
		r:             r,
		zero:          zero,
		matchKeyWidth: matchKeyWidth,
		rowSize:       SizeInBytes(zero, matchKeyWidth),
	}
}

// ReadRow reads exactly one row. It returns io.EOF only when the stream
// ends precisely on a row boundary; any other short read is reported as
// ipaerr.ErrInputMisaligned rather than a bare io.ErrUnexpectedEOF, so
// callers can distinguish "the input was simply finished" from "the
// input was truncated mid-row".
func (a *AlignedRowReader[F]) ReadRow() (InputRow[F], error) {
	buf := make([]byte, a.rowSize)
	n, err := io.ReadFull(a.r, buf)
	if err == io.EOF && n == 0 {
		return InputRow[F]{}, io.EOF
	}
	if err != nil {
		return InputRow[F]{}, fmt.Errorf("%w: %v", ipaerr.ErrInputMisaligned, err)
	}
	return Deserialize(buf, a.zero, a.matchKeyWidth)
}

// ReadAll drains the reader into a slice of rows, stopping cleanly at a
// row-aligned EOF and otherwise propagating ipaerr.ErrInputMisaligned.
func (a *AlignedRowReader[F]) ReadAll() ([]InputRow[F], error) {
	var rows []InputRow[F]
	for {
		row, err := a.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
