package sort

import (
	"context"
	"fmt"
	"sort"

	"github.com/luxfi/ipa/internal/ipaerr"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/protocol"
	"github.com/luxfi/ipa/pkg/share"
)

// GeneratePermutationAndRevealShuffled derives the sort permutation π for a
// batch of bit-decomposed keys (spec.md §4.4): bitKeys is already
// bit-major (outer index = bit position, inner index = record), bitsInKey
// is the key width, and the result is π such that perm[i] is record i's
// rank when the composite keys are sorted ascending.
//
// Each record's composite key is first recombined locally (Σ 2^i k_i — no
// communication). The array is then carried through a three-round blind
// shuffle (shuffleArray) before anything is revealed: round r re-randomizes
// and permutes every row using a permutation known only to the two roles
// other than r, so that by the time composite keys are reshared toward H0
// and revealed, no single helper can tell which shuffled position a
// revealed value came from — each of the three rounds hides the mapping
// from a different helper, so no one helper knows the end-to-end
// permutation, even though any two of them jointly always could (true of
// every value under this replicated scheme, not something particular to
// sorting; the guarantee this protocol owes is against a single corrupted
// helper).
//
// Sorting the revealed (now unlinkable) values gives each shuffled
// position's rank. That rank array is public, but which original record
// landed at which shuffled position is not, so it is carried back to
// original-record order by running it through the exact inverse of the
// same three rounds (unshuffleArray) as a fresh, publicly-known input, and
// only the final per-record rank — π itself, the function's actual
// contract — is reshared toward H0 and revealed. Ties between equal
// composite keys are broken by shuffled position rather than original
// record order: the two cannot both be preserved without reintroducing the
// original-index leak this shuffle exists to close.
//
// multiBitsPerRound is accepted for interface fidelity with spec.md's
// radix-sort windowing but the composite-key approach below sorts on the
// full key at once rather than windowed radix passes. A full
// position-permutation network (a Waksman/Benes-style routing shuffle) is
// absent from this retrieval pack; the three-round blind shuffle below is
// this package's own construction grounded in the standard replicated-3PC
// shuffle pattern (each of the three rounds hidden from a different
// party), not a line-for-line port of any file in the pack.
func GeneratePermutationAndRevealShuffled[F ff.Field[F]](ctx context.Context, mc mpc.Context, records []party.RecordId, bitKeys [][]share.Replicated[F], bitsInKey, multiBitsPerRound int, zero F) ([]int, error) {
	_ = multiBitsPerRound
	if bitsInKey != len(bitKeys) {
		return nil, fmt.Errorf("sort: bitsInKey=%d but bitKeys has %d rows", bitsInKey, len(bitKeys))
	}
	n := len(records)
	for _, row := range bitKeys {
		if len(row) != n {
			return nil, fmt.Errorf("sort: bit row has %d entries, want %d", len(row), n)
		}
	}

	composite := make([]share.Replicated[F], n)
	for i := 0; i < n; i++ {
		c := share.Zero(zero)
		for bit, row := range bitKeys {
			c = c.Add(row[i].MulByPublic(uint64(1) << uint(bit)))
		}
		composite[i] = c
	}

	sc := mc.NarrowString("gen-perm/shuffle")
	shuffled, perms, err := shuffleArray(ctx, sc, records, composite, "keys", zero)
	if err != nil {
		return nil, err
	}

	revealed := make([]uint64, n)
	for j := 0; j < n; j++ {
		rc := sc.NarrowString(fmt.Sprintf("reveal%d", j))
		reshared, err := protocol.Reshare(ctx, rc, records[j], shuffled[j], party.H0)
		if err != nil {
			return nil, err
		}
		val, err := protocol.Reveal(ctx, rc.NarrowString("reveal"), records[j], reshared)
		if err != nil {
			return nil, err
		}
		revealed[j] = val.AsUint64()
	}

	shuffledOrder := make([]int, n)
	for i := range shuffledOrder {
		shuffledOrder[i] = i
	}
	sort.SliceStable(shuffledOrder, func(a, b int) bool {
		return revealed[shuffledOrder[a]] < revealed[shuffledOrder[b]]
	})
	shuffledRank := make([]int, n)
	for rank, shuffledPos := range shuffledOrder {
		shuffledRank[shuffledPos] = rank
	}

	rankShares := make([]share.Replicated[F], n)
	for j := 0; j < n; j++ {
		rankShares[j] = share.Public(zero, mc.Role(), party.H0, uint64(shuffledRank[j]))
	}

	originalOrderRanks, err := unshuffleArray(ctx, sc, records, rankShares, perms, zero)
	if err != nil {
		return nil, err
	}

	perm := make([]int, n)
	for i := 0; i < n; i++ {
		rc := sc.NarrowString(fmt.Sprintf("unreveal%d", i))
		reshared, err := protocol.Reshare(ctx, rc, records[i], originalOrderRanks[i], party.H0)
		if err != nil {
			return nil, err
		}
		val, err := protocol.Reveal(ctx, rc.NarrowString("reveal"), records[i], reshared)
		if err != nil {
			return nil, err
		}
		perm[i] = int(val.AsUint64())
	}
	return perm, nil
}

// blindOrder is the fixed sequence of rounds shuffleArray/unshuffleArray run:
// round idx hides its permutation from blindOrder[idx].
var blindOrder = [3]party.Role{party.H0, party.H1, party.H2}

// shuffleArray carries rows through three rounds of shuffleRound, one per
// role in blindOrder, and returns the fully shuffled array along with each
// round's permutation (as known by the calling role — nil for the round
// this role was blind to) so a later unshuffleArray call can invert it.
func shuffleArray[F ff.Field[F]](ctx context.Context, mc mpc.Context, records []party.RecordId, rows []share.Replicated[F], stream string, zero F) ([]share.Replicated[F], [3][]int, error) {
	var perms [3][]int
	current := rows
	for idx, blind := range blindOrder {
		rc := mc.NarrowString(fmt.Sprintf("hide-%s", blind))
		var perm []int
		var mask []F
		if mc.Role() != blind {
			perm = derivePerm(rc, blind, len(current), zero)
			mask = deriveMask(rc.NarrowString(stream), blind, len(current), zero)
		}
		next, err := shuffleRound(ctx, rc, records, current, blind, perm, mask, zero)
		if err != nil {
			return nil, perms, err
		}
		perms[idx] = perm
		current = next
	}
	return current, perms, nil
}

// unshuffleArray applies the exact inverse of shuffleArray's three rounds, in
// reverse order, to rows — a fresh array (e.g. publicly-known values wrapped
// with share.Public) rather than the array shuffleArray originally produced.
// perms must be the permutation array shuffleArray returned for the run being
// inverted. A distinct mask stream is used so the masking randomness here
// never correlates with the original shuffle's.
func unshuffleArray[F ff.Field[F]](ctx context.Context, mc mpc.Context, records []party.RecordId, rows []share.Replicated[F], perms [3][]int, zero F) ([]share.Replicated[F], error) {
	current := rows
	for idx := len(blindOrder) - 1; idx >= 0; idx-- {
		blind := blindOrder[idx]
		rc := mc.NarrowString(fmt.Sprintf("hide-%s", blind)).NarrowString("unshuffle")
		var perm []int
		var mask []F
		if mc.Role() != blind {
			perm = invertPerm(perms[idx])
			mask = deriveMask(rc, blind, len(current), zero)
		}
		next, err := shuffleRound(ctx, rc, records, current, blind, perm, mask, zero)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// shuffleRound runs one round of the blind shuffle: every role other than
// blind scatters its local rows to their perm-assigned destination, masking
// the half it sends to blind so blind's received array carries no usable
// correlation with input order; blind only ever receives, never computing
// perm or mask itself.
//
// Write B = blind.Left(), C = blind.Right(). Every role already holds each
// row as (Left, Right) with the replicated invariant Right_P = Left_{P.Right()}
// — in particular B holds (compB, compBlind) and C holds (compC, compB), so
// B and C between them already hold all three of the row's native
// components without any message between them. Row i moves to position
// perm[i] = j:
//
//	B: newLeft_B[j]  = compB[i]                  (kept locally, unmasked)
//	   sent to blind  = compBlind[i] + mask[j]    (becomes blind's new Left)
//	C: sent to blind  = compC[i] - mask[j]        (becomes blind's new Right)
//	   newRight_C[j] = compB[i]                  (kept locally, unmasked,
//	                                               matches B's copy)
//
// which preserves the replicated invariant for all three roles (the two
// masked terms cancel in the reconstructed sum) while blind never sees
// mask, perm, or any unmasked component.
func shuffleRound[F ff.Field[F]](ctx context.Context, mc mpc.Context, records []party.RecordId, rows []share.Replicated[F], blind party.Role, perm []int, mask []F, zero F) ([]share.Replicated[F], error) {
	n := len(rows)
	role := mc.Role()
	out := make([]share.Replicated[F], n)

	switch role {
	case blind:
		for j := 0; j < n; j++ {
			leftMsg, err := mc.Receive(ctx, blind.Left(), records[j])
			if err != nil {
				return nil, err
			}
			left, err := zero.SetBytes(leftMsg)
			if err != nil {
				return nil, err
			}
			rightMsg, err := mc.Receive(ctx, blind.Right(), records[j])
			if err != nil {
				return nil, err
			}
			right, err := zero.SetBytes(rightMsg)
			if err != nil {
				return nil, err
			}
			out[j] = share.Replicated[F]{Left: left, Right: right}
		}
		return out, nil

	case blind.Left():
		for i, row := range rows {
			j := perm[i]
			masked := row.Right.Add(mask[j])
			if err := mc.Send(blind, records[j], masked.Bytes()); err != nil {
				return nil, err
			}
			out[j] = share.Replicated[F]{Left: row.Left, Right: masked}
		}
		return out, nil

	case blind.Right():
		for i, row := range rows {
			j := perm[i]
			masked := row.Left.Sub(mask[j])
			if err := mc.Send(blind, records[j], masked.Bytes()); err != nil {
				return nil, err
			}
			out[j] = share.Replicated[F]{Left: masked, Right: row.Right}
		}
		return out, nil

	default:
		return nil, ipaerr.Invariant("shuffle: role %s is not blind %s or one of its peers", role, blind)
	}
}

// derivePerm derives the pseudorandom permutation hidden from blind: one
// pseudorandom key per output row, drawn from the PRSS edge that blind.Left()
// and blind.Right() share directly (every pair of roles is mutually adjacent
// in the three-party ring) and so blind's own PRSS pair never touches.
// Argsort-with-stable-tiebreak turns the keys into a permutation even in a
// small test field where raw key collisions are not vanishingly rare.
func derivePerm[F ff.Field[F]](mc mpc.Context, blind party.Role, n int, zero F) []int {
	role := mc.Role()
	b, c := blind.Left(), blind.Right()
	keys := make([]F, n)
	for j := 0; j < n; j++ {
		kc := mc.NarrowString(fmt.Sprintf("perm-key%d", j))
		u, v := mpc.PRSSPair(kc, party.RecordIdFromInt(j), zero)
		switch role {
		case b:
			keys[j] = u
		case c:
			keys[j] = v
		}
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return keys[order[x]].AsUint64() < keys[order[y]].AsUint64()
	})
	perm := make([]int, n)
	for rank, original := range order {
		perm[original] = rank
	}
	return perm
}

// deriveMask derives the per-destination-position masking values B and C
// use to hide their sent halves from blind, the same way derivePerm derives
// the permutation — from the PRSS edge only B and C share.
func deriveMask[F ff.Field[F]](mc mpc.Context, blind party.Role, n int, zero F) []F {
	role := mc.Role()
	b, c := blind.Left(), blind.Right()
	mask := make([]F, n)
	for j := 0; j < n; j++ {
		kc := mc.NarrowString(fmt.Sprintf("mask-key%d", j))
		u, v := mpc.PRSSPair(kc, party.RecordIdFromInt(j), zero)
		switch role {
		case b:
			mask[j] = u
		case c:
			mask[j] = v
		}
	}
	return mask
}

// invertPerm returns the permutation q such that q[perm[i]] == i for all i.
func invertPerm(perm []int) []int {
	inv := make([]int, len(perm))
	for i, j := range perm {
		inv[j] = i
	}
	return inv
}
