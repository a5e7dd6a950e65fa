// Package prss implements pseudorandom secret sharing: per spec.md §4.2, a
// way for each pair of helpers to non-interactively agree on common
// randomness, keyed by step path and record id.
//
// Grounded on spec.md §4.2's PRSS contract and the teacher's use of BLAKE3
// as a domain-separated keyed hash (protocols/frost/sign/round1.go). The
// pairwise master seeds are assumed already established at helper startup
// (key distribution is out of scope per spec.md's Non-goals); NewFromSeeds
// only expands them into per-step randomness.
package prss

import (
	"hash"
	"io"

	"github.com/luxfi/ipa/internal/step"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"
)

func newBlake3Hash() hash.Hash { return blake3.New() }

// SeedSize is the width of a pairwise master seed.
const SeedSize = 32

// PRSS provides, per step path and record-id, a pair (u, v) of field
// elements such that the left peer's v equals this helper's u (and
// symmetrically for the right peer). It holds two independent keys: one
// derived from the seed shared with the left neighbor, one from the seed
// shared with the right neighbor.
type PRSS struct {
	leftKey  [32]byte
	rightKey [32]byte
}

// NewFromSeeds expands the two pairwise master seeds (with the left and
// right neighbor respectively) into the PRSS's per-step derivation keys via
// HKDF, using BLAKE3 as the underlying hash — mirroring the teacher's
// pattern of deriving a domain-separated hash key from a fixed context
// string (deriveHashKeyContext in protocols/frost/sign/round1.go).
func NewFromSeeds(seedWithLeft, seedWithRight []byte) (*PRSS, error) {
	// Both keys are expanded under the identical info string: the two
	// helpers sharing one edge seed must derive byte-for-byte identical key
	// material regardless of which one calls it "left" and which calls it
	// "right", or the pairwise correlation this whole scheme exists for
	// never materializes.
	p := &PRSS{}
	if err := expand(seedWithLeft, "github.com/luxfi/ipa PRSS", p.leftKey[:]); err != nil {
		return nil, err
	}
	if err := expand(seedWithRight, "github.com/luxfi/ipa PRSS", p.rightKey[:]); err != nil {
		return nil, err
	}
	return p, nil
}

func expand(seed []byte, info string, out []byte) error {
	r := hkdf.New(newBlake3Hash, seed, nil, []byte(info))
	_, err := io.ReadFull(r, out)
	return err
}

// GenerateBytes derives nBytes of pseudorandom output shared with the left
// neighbor (u) and nBytes shared with the right neighbor (v), both bound to
// the given step path and record id so that concurrent sub-protocols and
// distinct records never collide.
func (p *PRSS) GenerateBytes(path *step.Path, record party.RecordId, nBytes int) (u, v []byte) {
	return derive(p.leftKey[:], path, record, nBytes), derive(p.rightKey[:], path, record, nBytes)
}

func derive(key []byte, path *step.Path, record party.RecordId, nBytes int) []byte {
	var k [32]byte
	copy(k[:], key)
	hasher, err := blake3.NewKeyed(k[:])
	if err != nil {
		panic(err) // key is always exactly 32 bytes; this cannot fail
	}
	_, _ = hasher.Write([]byte(path.String()))
	var recBuf [4]byte
	recBuf[0] = byte(record)
	recBuf[1] = byte(record >> 8)
	recBuf[2] = byte(record >> 16)
	recBuf[3] = byte(record >> 24)
	_, _ = hasher.Write(recBuf[:])
	out := make([]byte, nBytes)
	d := hasher.Digest()
	_, _ = io.ReadFull(d, out)
	return out
}

// Generate derives a field-element pair (u, v) for path/record, reducing
// the raw PRSS bytes modulo F's prime via FromWideBytes.
func Generate[F ff.Field[F]](p *PRSS, path *step.Path, record party.RecordId, zero F) (u, v F) {
	width := len(zero.Bytes())
	// Oversample before reducing so the distribution is close enough to
	// uniform for either field width used in this core.
	ub, vb := p.GenerateBytes(path, record, width+8)
	return zero.FromWideBytes(ub), zero.FromWideBytes(vb)
}

// GenerateBit derives a single pseudorandom bit pair (u, v) for path/record,
// for use in the boolean (XOR-replicated) sub-protocols such as bitwise AND.
func (p *PRSS) GenerateBit(path *step.Path, record party.RecordId) (u, v bool) {
	ub, vb := p.GenerateBytes(path, record, 1)
	return ub[0]&1 == 1, vb[0]&1 == 1
}
