package testworld

import (
	"crypto/rand"

	"github.com/luxfi/ipa/pkg/bits"
	"github.com/luxfi/ipa/pkg/ff"
	"github.com/luxfi/ipa/pkg/party"
	"github.com/luxfi/ipa/pkg/share"
)

// ShareField splits the cleartext value v into a fresh replicated sharing,
// one Replicated[F] per role, for test fixture assembly (spec.md §4.1's
// "public splits into Left/Right such that Right_P = Left_{P.Right()}").
// Not constant-time and not meant for anything but tests.
func ShareField[F ff.Field[F]](zero F, v uint64) map[party.Role]share.Replicated[F] {
	x0 := randomField(zero)
	x1 := randomField(zero)
	secret := zero.Public(v)
	x2 := secret.Sub(x0).Sub(x1)

	return map[party.Role]share.Replicated[F]{
		party.H0: share.New(x0, x1),
		party.H1: share.New(x1, x2),
		party.H2: share.New(x2, x0),
	}
}

// ShareMatchKey splits a cleartext match key into a fresh XOR-replicated
// sharing, one per role.
func ShareMatchKey(v uint64, width int) map[party.Role]share.XorReplicated {
	y0 := randomBits(width)
	y1 := randomBits(width)
	secret := bits.New(v, width)
	y2 := secret.Xor(y0).Xor(y1)

	return map[party.Role]share.XorReplicated{
		party.H0: share.NewXorReplicated(y0, y1),
		party.H1: share.NewXorReplicated(y1, y2),
		party.H2: share.NewXorReplicated(y2, y0),
	}
}

func randomField[F ff.Field[F]](zero F) F {
	buf := make([]byte, len(zero.Bytes())+8)
	_, _ = rand.Read(buf)
	return zero.FromWideBytes(buf)
}

func randomBits(width int) bits.Array {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	var v uint64
	for i := 7; i >= 0; i-- {
		v = (v << 8) | uint64(buf[i])
	}
	return bits.New(v, width)
}
