// Package sort implements the oblivious sort spec.md §4.4 describes:
// generating a sort permutation from bit-decomposed keys and applying it to
// arbitrary Resharable rows.
//
// Grounded on spec.md §4.4 and §4.7 (the Resharable capability contract),
// and on original_source/src/protocol/ipa/mod.rs's call sites for
// generate_permutation_and_reveal_shuffled/apply_sort_permutation — the
// Rust source for sort.rs itself was not part of this retrieval pack, so
// the permutation-generation algorithm below is this package's own
// synthesis of the documented contract rather than a line-for-line port;
// see the doc comment on GeneratePermutationAndRevealShuffled for the
// three-round blind shuffle construction used to keep any revealed
// intermediate value unlinkable to the record it came from.
package sort

import (
	"context"
	"fmt"

	"github.com/luxfi/ipa/pkg/mpc"
	"github.com/luxfi/ipa/pkg/party"
)

// Resharable is the capability spec.md §4.7 requires of any row type
// ApplySortPermutation moves: Reshare narrows the context internally (once
// per field, for a compound type) and returns a fresh instance whose shares
// to does not learn.
type Resharable[T any] interface {
	Reshare(ctx context.Context, mc mpc.Context, record party.RecordId, to party.Role) (T, error)
}

// ApplySortPermutation reshares every row toward to, then reorders the
// reshared rows according to perm: perm[i] is the destination index of
// row i (spec.md §4.4's apply_sort_permutation). Reshare runs before the
// reorder so a helper that already knew a row's old position can't track
// it to its new one just by comparing share values. All three helpers MUST
// pass the identical to (a protocol precondition per spec.md §5, not
// something this function can check across processes).
func ApplySortPermutation[T Resharable[T]](ctx context.Context, mc mpc.Context, records []party.RecordId, rows []T, perm []int, to party.Role) ([]T, error) {
	if len(rows) != len(perm) || len(rows) != len(records) {
		panic("sort: rows, records, and perm must have equal length")
	}
	out := make([]T, len(rows))
	for i, row := range rows {
		rc := mc.NarrowString(fmt.Sprintf("apply-sort/row%d", i))
		reshared, err := row.Reshare(ctx, rc, records[i], to)
		if err != nil {
			return nil, err
		}
		out[perm[i]] = reshared
	}
	return out, nil
}
