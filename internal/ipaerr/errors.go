// Package ipaerr defines the error kinds the core raises, per spec.md §7.
//
// Sub-protocols surface all errors to the caller; there is no per-record
// recovery. Callers should use errors.Is against the sentinels below to
// decide how to react (e.g. retry the whole query vs. abandon it).
package ipaerr

import "fmt"

// Sentinel error kinds. Wrap these with fmt.Errorf("%w: ...", Err...) to add
// context while keeping errors.Is working.
var (
	// ErrInputMisaligned: byte-stream length not a multiple of row size.
	ErrInputMisaligned = fmt.Errorf("ipa: input byte stream is not aligned to the row size")

	// ErrPeerIO: transport failure delivering or receiving a message.
	ErrPeerIO = fmt.Errorf("ipa: peer i/o failure")

	// ErrProtocolInvariant: an internal assertion failed. Fatal within the query.
	ErrProtocolInvariant = fmt.Errorf("ipa: protocol invariant violated")

	// ErrFieldOverflow: a value claimed to fit in a field does not.
	ErrFieldOverflow = fmt.Errorf("ipa: value does not fit in field")

	// ErrCancelled: the enclosing task was aborted.
	ErrCancelled = fmt.Errorf("ipa: operation cancelled")
)

// Invariant wraps ErrProtocolInvariant with a formatted message, mirroring
// the teacher's pkg/protocol.Error pattern of a typed wrapper carrying
// specific failure context while still satisfying the error interface.
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocolInvariant, fmt.Sprintf(format, args...))
}
