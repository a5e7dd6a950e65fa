// Package ff implements the prime-field element types the replicated
// secret-sharing layer is built over.
//
// Two concrete fields are provided: Fp31, a tiny field used by tests and by
// the attribution-sort fixtures carried over from the reference
// implementation, and Fp32BitPrime, the production field. Both satisfy
// Field, the self-referential constraint every generic share type in
// pkg/share and pkg/protocol is parameterized over.
package ff

// Field is the arithmetic contract every field element type must satisfy.
// It is intentionally self-referential (Field[T]) so that Add/Sub/Mul return
// the concrete type rather than an interface, matching the way the rest of
// the stack (Replicated[F], XorReplicated[B]) is parameterized.
type Field[T any] interface {
	Add(T) T
	Sub(T) T
	Neg() T
	Mul(T) T
	// MulByPublic multiplies by a cleartext constant. Local, no communication.
	MulByPublic(c uint64) T
	// Public returns the field element equal to the cleartext constant c,
	// independent of the receiver's own value. Used to lift a public
	// constant into F, e.g. when adding a known value to one share
	// coordinate.
	Public(c uint64) T
	// Equal reports whether two elements represent the same residue.
	Equal(T) bool

	// Bytes returns the canonical little-endian encoding of the element.
	Bytes() []byte
	// SetBytes decodes the canonical little-endian encoding produced by Bytes.
	SetBytes(b []byte) (T, error)
	// FromWideBytes reduces an arbitrary-length big-endian byte string
	// modulo the field's prime. Unlike SetBytes (which requires an exact,
	// already-reduced canonical encoding), this accepts PRF/hash output of
	// any width — the mechanism PRSS uses to turn pseudorandom bytes into a
	// uniformly distributed field element.
	FromWideBytes(b []byte) T

	// BitWidth is F::BITS: the number of bits needed to bit-decompose any
	// element of this field.
	BitWidth() int

	// AsUint64 exposes the element's integer value for test assembly and
	// reconstruction checks. Never used inside a live protocol.
	AsUint64() uint64
}

// SizeInBytes returns the canonical encoding length for a zero value of T.
func SizeInBytes[T Field[T]](zero T) int {
	return len(zero.Bytes())
}
