// Package mpc implements Context, the immutable per-sub-protocol handle
// spec.md §4.2 describes: a helper's role, its current step path, and
// references to the gateway and PRSS. Narrowing is the only permitted way
// to spawn concurrent sub-protocols.
//
// Grounded on the teacher's round.Helper, which every round type in
// protocols/{cmp,frost,lss} embeds to carry SelfID/PartyIDs/SSID across
// round-to-round advance; Context generalizes that to narrow-by-name
// sub-protocol trees instead of a fixed round sequence, since IPA composes
// many concurrently-running named sub-protocols rather than one global
// round counter.
package mpc

import (
	"context"

	"github.com/luxfi/ipa/internal/gateway"
	"github.com/luxfi/ipa/internal/prss"
	"github.com/luxfi/ipa/internal/step"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/party"
)

// Context is an immutable handle carrying the helper's role, the current
// step path, and shared references to the gateway and PRSS. Values are
// cheap to copy; Narrow returns a new Context sharing everything except the
// step path.
type Context struct {
	role party.Role
	path *step.Path
	gw   *gateway.Gateway
	prss *prss.PRSS
}

// New builds the root Context for a query, identified by queryName.
func New(role party.Role, queryName string, gw *gateway.Gateway, p *prss.PRSS) Context {
	return Context{role: role, path: step.Root(queryName), gw: gw, prss: p}
}

// Role returns the helper's fixed role for the lifetime of this Context
// tree.
func (c Context) Role() party.Role { return c.role }

// Path returns the current step path.
func (c Context) Path() *step.Path { return c.path }

// Narrow returns a new Context whose step path is c's path with sub
// appended. Two operations that must not share a channel MUST narrow with
// distinct segments.
func (c Context) Narrow(sub step.Substep) Context {
	return Context{role: c.role, path: c.path.Narrow(sub), gw: c.gw, prss: c.prss}
}

// NarrowString narrows by a raw segment name, used for per-index loop
// narrowing where a dedicated Substep enum would be overkill (e.g. one
// segment per row in a batch).
func (c Context) NarrowString(segment string) Context {
	return Context{role: c.role, path: c.path.NarrowString(segment), gw: c.gw, prss: c.prss}
}

// Send transmits payload to peer, tagged with the current step path and
// record id.
func (c Context) Send(peer party.Role, record party.RecordId, payload []byte) error {
	return c.gw.Send(peer, c.path, record, payload)
}

// Receive suspends until peer's message for record on the current channel
// arrives, or ctx is cancelled.
func (c Context) Receive(ctx context.Context, peer party.Role, record party.RecordId) ([]byte, error) {
	return c.gw.Receive(ctx, peer, c.path, record)
}

// PRSSPair derives the PRSS (u, v) field-element pair for record on the
// current step path: u is shared with the left neighbor, v with the right.
func PRSSPair[F ff.Field[F]](c Context, record party.RecordId, zero F) (u, v F) {
	return prss.Generate(c.prss, c.path, record, zero)
}

// PRSSBitPair derives the PRSS (u, v) boolean pair for record on the current
// step path, for use by the boolean sub-protocols (bitwise AND/equality).
func PRSSBitPair(c Context, record party.RecordId) (u, v bool) {
	return c.prss.GenerateBit(c.path, record)
}
