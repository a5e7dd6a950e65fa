// Package gateway implements the per-channel, record-id-ordered message
// exchange between helpers (spec.md §4.2's "Gateway" and §5's ordering
// guarantees).
//
// Grounded on the teacher's pkg/protocol.MultiHandler (which keys
// per-round messages by party.ID in a map guarded by a mutex, exposing a
// Listen()/Accept() pair) and on original_source's
// test_fixture/network/receive.rs ReceiveRecords, whose Pending/Ready
// waiter cell is the direct model for the rendezvous channel below: a
// receiver suspends until its counterpart's Send fills the cell, regardless
// of which happens first.
package gateway

import (
	"context"
	"sync"

	"github.com/luxfi/ipa/internal/ipaerr"
	"github.com/luxfi/ipa/internal/step"
	"github.com/luxfi/ipa/pkg/party"
)

// Link delivers a payload sent to a peer's gateway. The real transport
// (out of scope per spec.md §1/§6) would implement this over HTTP; the test
// harness (internal/testworld) implements it as a direct call into the
// peer's Gateway.
type Link interface {
	Deliver(from party.Role, stepPath string, record party.RecordId, payload []byte)
}

type channelKey struct {
	peer     party.Role
	stepPath string
	record   party.RecordId
}

// Gateway is one helper's view of the three-party message fabric. Exactly
// one Gateway exists per helper process; Context narrows share the same
// Gateway instance, using the step path to keep their channels disjoint.
type Gateway struct {
	self  party.Role
	peers map[party.Role]Link

	mu    sync.Mutex
	inbox map[channelKey]chan []byte
}

// New builds a Gateway for self, with the two outbound links to its peers.
func New(self party.Role, peers map[party.Role]Link) *Gateway {
	return &Gateway{
		self:  self,
		peers: peers,
		inbox: make(map[channelKey]chan []byte),
	}
}

func (g *Gateway) cell(key channelKey) chan []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.inbox[key]
	if !ok {
		// Capacity 1: exactly one message is ever sent per (channel, record).
		ch = make(chan []byte, 1)
		g.inbox[key] = ch
	}
	return ch
}

// Send transmits payload to peer, tagged with the step path and record id.
// It is non-blocking from the caller's perspective (buffered); within one
// channel (peer, step path), delivery to the record-id waiter happens
// regardless of arrival order (spec.md §4.2/§5).
func (g *Gateway) Send(to party.Role, path *step.Path, record party.RecordId, payload []byte) error {
	link, ok := g.peers[to]
	if !ok {
		return ipaerr.Invariant("gateway: no link configured to peer %s", to)
	}
	link.Deliver(g.self, path.String(), record, payload)
	return nil
}

// Deliver implements Link: it is called by a peer's Gateway.Send to place a
// message into this gateway's inbox for the (from, path, record) channel.
func (g *Gateway) Deliver(from party.Role, stepPath string, record party.RecordId, payload []byte) {
	key := channelKey{peer: from, stepPath: stepPath, record: record}
	// Buffered with capacity 1: a concurrent Receive registering the cell
	// first, or a Send arriving first, both resolve correctly.
	ch := g.cell(key)
	select {
	case ch <- payload:
	default:
		// A message was already delivered for this (channel, record) pair.
		// This can only happen if a sender violates the per-record
		// single-message contract; surfacing it silently would hide a
		// protocol bug, but Deliver has no error return, so the duplicate
		// is dropped: the receiver gets the first payload and never sees
		// the second.
	}
}

// Receive suspends until the peer's message for record on this channel
// arrives, or until ctx is cancelled.
func (g *Gateway) Receive(ctx context.Context, from party.Role, path *step.Path, record party.RecordId) ([]byte, error) {
	key := channelKey{peer: from, stepPath: path.String(), record: record}
	ch := g.cell(key)
	select {
	case payload := <-ch:
		return payload, nil
	case <-ctx.Done():
		return nil, ipaerr.ErrCancelled
	}
}

// Self returns the role this gateway belongs to.
func (g *Gateway) Self() party.Role { return g.self }

// SetPeers replaces the outbound peer links, for callers (e.g. testworld)
// that must construct all three helpers' Gateways before any of them can
// reference the others.
func (g *Gateway) SetPeers(peers map[party.Role]Link) {
	g.peers = peers
}
