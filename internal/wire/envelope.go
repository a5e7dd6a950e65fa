// Package wire implements the CBOR-framed message envelope the
// illustrative helper-to-helper transport (spec.md §6) uses to carry one
// gateway payload across a process boundary. The core protocol itself
// never depends on this package: internal/gateway's Link interface is
// satisfied directly, in-process, by internal/testworld for every test in
// this repo, and a production transport is explicitly out of scope
// (spec.md §1 Non-goals). This package exists so cmd/ipa-helper has
// something concrete to marshal onto a socket, the same way the teacher
// CBOR-encodes round.Message.Content onto protocol.Message.Data before
// putting it on the wire (pkg/protocol/handler.go, before the final
// adaptation pass removed that file).
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/ipa/pkg/party"
)

// Envelope is the over-the-wire framing for one gateway message: which
// step path and record id it belongs to (so the receiving Gateway can
// route it to the right rendezvous cell), plus the raw share payload.
// This is the three-party-mesh message spec.md §6 describes ("messages
// tagged (step_path, record_id, channel_direction)") reduced to its wire
// shape — "channel_direction" is implicit in which peer's socket the
// envelope arrived on, so it is not a field here.
type Envelope struct {
	From     party.Role `cbor:"from"`
	StepPath string     `cbor:"step_path"`
	RecordID uint64     `cbor:"record_id"`
	Payload  []byte     `cbor:"payload"`
}

// Encode serializes e with cbor.Marshal's default encoding options (not
// the canonical or core-deterministic mode); struct fields are written as
// map entries in the struct's declared field order, so two identical
// Envelope values produce identical wire bytes — relevant only for
// logging/debugging in this repo, since no component hashes or signs the
// envelope itself.
func (e Envelope) Encode() ([]byte, error) {
	b, err := cbor.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("wire: encoding envelope: %w", err)
	}
	return b, nil
}

// Decode parses an Envelope previously produced by Encode.
func Decode(b []byte) (Envelope, error) {
	var e Envelope
	if err := cbor.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("wire: decoding envelope: %w", err)
	}
	return e, nil
}
