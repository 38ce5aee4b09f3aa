package fheregex

// Backend provides the homomorphic primitives the engine schedules.
// C is the ciphertext of one content character, B an encrypted
// boolean. Implementations must be safe for concurrent use: the
// executor evaluates distinct comparisons from parallel workers.
//
// Every operation is assumed deterministic for given inputs; the
// engine never retries a failed primitive.
type Backend[C, B any] interface {
	// CompareEqual tests the encrypted character against a literal,
	// optionally ignoring ASCII case.
	CompareEqual(ch C, literal byte, foldCase bool) (B, error)

	// CompareClass tests the encrypted character for membership in a
	// set of inclusive byte ranges, optionally negated and optionally
	// ignoring ASCII case.
	CompareClass(ch C, ranges []ByteRange, negated, foldCase bool) (B, error)

	// ConstantTrue and ConstantFalse produce encryptions of the two
	// boolean constants without touching any content character.
	ConstantTrue() (B, error)
	ConstantFalse() (B, error)

	// And and Or combine encrypted booleans. Both are associative and
	// commutative over the backend's boolean semantics.
	And(a, b B) (B, error)
	Or(a, b B) (B, error)
}
