package fheregex

import (
	"fmt"
	"sort"
	"strings"
)

// DescKind identifies the comparison a Desc describes.
type DescKind int

const (
	DescEqual DescKind = iota // equality against one literal byte
	DescClass                 // membership in a set of byte ranges
)

// Desc is the canonical description of one homomorphic comparison.
// Two descriptors share a cache key exactly when they lead to the same
// backend invocation, so semantically identical comparisons collide and
// the underlying primitive runs once.
type Desc struct {
	Kind     DescKind
	Ch       byte        // DescEqual
	Ranges   []ByteRange // DescClass, normalized: sorted and merged
	Negated  bool
	FoldCase bool

	key string
}

// Key returns the canonical cache key of the comparison.
func (d Desc) Key() string { return d.key }

func (d Desc) String() string { return d.key }

// newEqualDesc canonicalizes a literal comparison. Case folding on a
// non-alphabetic byte changes nothing, so it is dropped from the key.
func newEqualDesc(ch byte, fold bool) Desc {
	fold = fold && isAlpha(ch)
	d := Desc{Kind: DescEqual, Ch: ch, FoldCase: fold}
	if fold {
		d.key = fmt.Sprintf("eq(%s,i)", printByte(ch))
	} else {
		d.key = fmt.Sprintf("eq(%s)", printByte(ch))
	}
	return d
}

// newClassDesc canonicalizes a class comparison: ranges are sorted,
// overlapping and adjacent ranges merged, and the fold flag dropped
// when no range covers a letter. A non-negated class reduced to one
// byte is the same backend circuit as a literal comparison, so it
// canonicalizes to one.
func newClassDesc(ranges []ByteRange, negated, fold bool) Desc {
	rs := normalizeRanges(ranges)
	if len(rs) == 1 && rs[0].Lo == rs[0].Hi && !negated {
		return newEqualDesc(rs[0].Lo, fold)
	}

	foldMatters := false
	for _, r := range rs {
		if rangesOverlap(r, ByteRange{'A', 'Z'}) || rangesOverlap(r, ByteRange{'a', 'z'}) {
			foldMatters = true
			break
		}
	}
	fold = fold && foldMatters

	var b strings.Builder
	b.WriteString("cls(")
	for _, r := range rs {
		if r.Lo == r.Hi {
			b.WriteString(printByte(r.Lo))
		} else {
			b.WriteString(printByte(r.Lo))
			b.WriteByte('-')
			b.WriteString(printByte(r.Hi))
		}
	}
	if negated {
		b.WriteString(",neg")
	}
	if fold {
		b.WriteString(",i")
	}
	b.WriteByte(')')

	return Desc{Kind: DescClass, Ranges: rs, Negated: negated, FoldCase: fold, key: b.String()}
}

func normalizeRanges(ranges []ByteRange) []ByteRange {
	rs := make([]ByteRange, len(ranges))
	copy(rs, ranges)
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Lo != rs[j].Lo {
			return rs[i].Lo < rs[j].Lo
		}
		return rs[i].Hi < rs[j].Hi
	})
	merged := rs[:0]
	for _, r := range rs {
		n := len(merged)
		if n > 0 && int(r.Lo) <= int(merged[n-1].Hi)+1 {
			if r.Hi > merged[n-1].Hi {
				merged[n-1].Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func rangesOverlap(a, b ByteRange) bool {
	return a.Lo <= b.Hi && b.Lo <= a.Hi
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func printByte(b byte) string {
	if b > 0x20 && b < 0x7f {
		return string(b)
	}
	return fmt.Sprintf("\\x%02x", b)
}

// Atom is one indivisible homomorphic comparison between a single
// content position and a single pattern requirement.
type Atom struct {
	Pos  int
	Desc Desc
}

// Key returns the canonical cache key of the atom.
func (a Atom) Key() string { return fmt.Sprintf("%s@%d", a.Desc.Key(), a.Pos) }

func (a Atom) String() string { return a.Key() }

// Variant is one complete candidate alignment of the pattern against
// the content: the conjunction of its atoms. Atoms are ordered by
// ascending content position. A variant with no atoms matches
// unconditionally at its alignment.
type Variant struct {
	Atoms []Atom
}

// Key is the canonical signature of the variant, used to drop
// duplicate alignments during enumeration.
func (v Variant) Key() string {
	parts := make([]string, len(v.Atoms))
	for i, a := range v.Atoms {
		parts[i] = a.Key()
	}
	return strings.Join(parts, "&")
}

func (v Variant) String() string {
	if len(v.Atoms) == 0 {
		return "(empty)"
	}
	return v.Key()
}

// Plan is the full, finite description of the work one match request
// requires: every surviving variant plus the deduplicated set of
// comparisons they share. Producing it is pure computation; no
// cryptography happens until the plan is executed.
type Plan struct {
	// ContentLen is the public content length the plan was built for.
	ContentLen int

	// Variants, in deterministic enumeration order: ascending start
	// offset, alternation branches in document order, ascending
	// repeat counts.
	Variants []Variant

	// Atoms is the deduplicated comparison set, ordered by first use.
	Atoms []Atom

	// Pruned counts branches discarded on public information alone.
	Pruned int
}

// HasEmptyVariant reports whether some variant carries no atoms, in
// which case the pattern trivially matches any content of this length.
func (p *Plan) HasEmptyVariant() bool {
	for _, v := range p.Variants {
		if len(v.Atoms) == 0 {
			return true
		}
	}
	return false
}
