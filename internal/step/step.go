// Package step implements the hierarchical, append-only step path that
// identifies one logical sub-protocol instance (spec.md §3 "Step path",
// Design Note §9).
//
// A Path is an immutable linked structure shared by reference: narrowing is
// O(1) (append one segment, return a new handle sharing the parent's
// backbone) and two paths are equal iff their segment sequences are equal.
// This plays the role the teacher's round.Number/ProtocolID pair plays in
// pkg/protocol/handler.go: the sole namespace that lets concurrent
// sub-protocols share a gateway without message collisions.
package step

import "strings"

// Substep is any type that names a well-known narrowing segment. The set of
// strings a Substep can produce is part of the protocol: every helper MUST
// derive the identical sequence of segment names for a given logical
// operation (spec.md §5). Typically a small enum type with a String method,
// e.g. a Step type per protocol listing its sub-phases.
type Substep interface {
	String() string
}

// Path is one node in the step-path linked list. The zero value is not
// valid; use Root to construct the top of a path tree.
type Path struct {
	parent  *Path
	segment string
	depth   int
}

// Root returns the top-level path for a query, identified by name (e.g. a
// query ID). All per-query step paths descend from a Root.
func Root(name string) *Path {
	return &Path{segment: name, depth: 0}
}

// Narrow returns a new Path whose segment sequence is p's sequence with sub
// appended. Narrowing is the only permitted way to spawn concurrent
// sub-protocols; two operations that must not share a channel MUST narrow
// with distinct segments.
func (p *Path) Narrow(sub Substep) *Path {
	return &Path{parent: p, segment: sub.String(), depth: p.depth + 1}
}

// NarrowString is Narrow for a raw segment name, used where the caller
// doesn't have a dedicated Substep enum (e.g. per-index loop narrowing).
func (p *Path) NarrowString(segment string) *Path {
	return &Path{parent: p, segment: segment, depth: p.depth + 1}
}

// Equal reports whether two paths have identical segment sequences. This is
// pointer-chain equality when both paths share a common ancestor produced
// by the same sequence of Narrow calls, falling back to segment-by-segment
// comparison otherwise — still O(depth), never a full string comparison.
func (p *Path) Equal(o *Path) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil {
		return false
	}
	if p.depth != o.depth {
		return false
	}
	a, b := p, o
	for a != nil && b != nil {
		if a == b {
			return true
		}
		if a.segment != b.segment {
			return false
		}
		a, b = a.parent, b.parent
	}
	return a == nil && b == nil
}

// String renders the full dotted path, used only for debugging, logging,
// and as the map key in the gateway's channel table.
func (p *Path) String() string {
	if p == nil {
		return ""
	}
	segs := make([]string, 0, p.depth+1)
	for n := p; n != nil; n = n.parent {
		segs = append(segs, n.segment)
	}
	// reverse
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}
