// Package testworld implements an in-process three-party world for tests:
// three mpc.Context values wired together over direct Gateway links instead
// of a real network transport, plus Reconstruct helpers that recombine a
// role-indexed array of shares back into its cleartext value.
//
// Grounded on original_source's test_fixture::{TestWorld, Runner,
// Reconstruct} pattern (used throughout ipa/mod.rs's own tests) and the
// teacher's internal/test helper package (test.PartyIDs(N) in
// pkg/math/polynomial/lagrange_test.go) for the shape of a lightweight
// fixture package living alongside the production code it exercises.
package testworld

import (
	"crypto/rand"
	"fmt"

	"github.com/luxfi/ipa/internal/gateway"
	"github.com/luxfi/ipa/internal/prss"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// World holds one mpc.Context per helper role, all wired to the same query
// name and a consistent set of pairwise PRSS seeds.
type World struct {
	Contexts map[party.Role]mpc.Context
}

// New builds a World for queryName with freshly generated pairwise PRSS
// seeds. Every call produces an independent, uncorrelated-with-any-other-
// World set of randomness.
func New(queryName string) (*World, error) {
	seedH0H1, err := randomSeed()
	if err != nil {
		return nil, err
	}
	seedH1H2, err := randomSeed()
	if err != nil {
		return nil, err
	}
	seedH2H0, err := randomSeed()
	if err != nil {
		return nil, err
	}

	gwH0 := gateway.New(party.H0, nil)
	gwH1 := gateway.New(party.H1, nil)
	gwH2 := gateway.New(party.H2, nil)
	wireGateways(gwH0, gwH1, gwH2)

	prssH0, err := prss.NewFromSeeds(seedH2H0, seedH0H1)
	if err != nil {
		return nil, err
	}
	prssH1, err := prss.NewFromSeeds(seedH0H1, seedH1H2)
	if err != nil {
		return nil, err
	}
	prssH2, err := prss.NewFromSeeds(seedH1H2, seedH2H0)
	if err != nil {
		return nil, err
	}

	return &World{
		Contexts: map[party.Role]mpc.Context{
			party.H0: mpc.New(party.H0, queryName, gwH0, prssH0),
			party.H1: mpc.New(party.H1, queryName, gwH1, prssH1),
			party.H2: mpc.New(party.H2, queryName, gwH2, prssH2),
		},
	}, nil
}

// wireGateways points every gateway's peer links directly at the other two
// in-process Gateway values, since testworld has no real transport.
func wireGateways(gwH0, gwH1, gwH2 *gateway.Gateway) {
	gwH0.SetPeers(map[party.Role]gateway.Link{party.H1: gwH1, party.H2: gwH2})
	gwH1.SetPeers(map[party.Role]gateway.Link{party.H0: gwH0, party.H2: gwH2})
	gwH2.SetPeers(map[party.Role]gateway.Link{party.H0: gwH0, party.H1: gwH1})
}

func randomSeed() ([]byte, error) {
	seed := make([]byte, prss.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("testworld: generating PRSS seed: %w", err)
	}
	return seed, nil
}

// RunEach runs fn once per role, concurrently, and returns its results
// indexed by role. If any invocation errors, RunEach returns the first
// error observed.
func RunEach[T any](w *World, fn func(mc mpc.Context) (T, error)) (map[party.Role]T, error) {
	type result struct {
		role party.Role
		val  T
		err  error
	}
	ch := make(chan result, 3)
	for role, mc := range w.Contexts {
		go func(role party.Role, mc mpc.Context) {
			v, err := fn(mc)
			ch <- result{role: role, val: v, err: err}
		}(role, mc)
	}
	out := make(map[party.Role]T, 3)
	var firstErr error
	for i := 0; i < 3; i++ {
		r := <-ch
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		out[r.role] = r.val
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// ReconstructField recombines a per-role Replicated[F] map into its
// cleartext value: any helper's Left plus its left peer's Left plus its
// left peer's left peer's Left sums to the secret (spec.md §4.1).
func ReconstructField[F ff.Field[F]](shares map[party.Role]share.Replicated[F]) F {
	sum := shares[party.H0].Left
	sum = sum.Add(shares[party.H1].Left)
	sum = sum.Add(shares[party.H2].Left)
	return sum
}

// ReconstructBool recombines a per-role XorReplicated map into its
// cleartext bit array.
func ReconstructBool(shares map[party.Role]share.XorReplicated) uint64 {
	v := shares[party.H0].Left.AsUint64()
	v ^= shares[party.H1].Left.AsUint64()
	v ^= shares[party.H2].Left.AsUint64()
	return v
}
