package fheregex

// Clear is a cleartext Backend: characters are plain bytes and the
// "encrypted" boolean is a plain bool. It exists for tests, for
// debugging circuits, and for the CLI's --clear mode; it exercises the
// exact planning, pruning and caching paths the cryptographic backends
// do, at none of the cost.
type Clear struct{}

var _ Backend[byte, bool] = Clear{}

// ClearContent adapts a plaintext string to the per-character content
// shape the engine expects.
func ClearContent(s string) []byte { return []byte(s) }

func (Clear) CompareEqual(ch byte, literal byte, foldCase bool) (bool, error) {
	if foldCase {
		return lowerByte(ch) == lowerByte(literal), nil
	}
	return ch == literal, nil
}

func (Clear) CompareClass(ch byte, ranges []ByteRange, negated, foldCase bool) (bool, error) {
	in := bytesInRanges(ch, ranges)
	if foldCase && !in {
		in = bytesInRanges(foldByte(ch), ranges)
	}
	if negated {
		in = !in
	}
	return in, nil
}

func (Clear) ConstantTrue() (bool, error)  { return true, nil }
func (Clear) ConstantFalse() (bool, error) { return false, nil }

func (Clear) And(a, b bool) (bool, error) { return a && b, nil }
func (Clear) Or(a, b bool) (bool, error)  { return a || b, nil }

func bytesInRanges(ch byte, ranges []ByteRange) bool {
	for _, r := range ranges {
		if ch >= r.Lo && ch <= r.Hi {
			return true
		}
	}
	return false
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// foldByte flips the case of an ASCII letter.
func foldByte(b byte) byte {
	switch {
	case b >= 'A' && b <= 'Z':
		return b + ('a' - 'A')
	case b >= 'a' && b <= 'z':
		return b - ('a' - 'A')
	}
	return b
}
