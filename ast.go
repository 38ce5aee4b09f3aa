package fheregex

// NodeType identifies the type of AST node.
type NodeType int

const (
	NodeLiteral NodeType = iota
	NodeAnyChar
	NodeCharClass
	NodeAnchor
	NodeQuantifier
	NodeConcat
	NodeAlternate
)

// Node is the base interface for AST nodes. The node set is closed:
// every consumer switches exhaustively over the concrete types below.
// An AST is immutable once parsed and is shared read-only by every
// match variant derived from it.
type Node interface {
	Type() NodeType
}

// Literal matches one content character equal to Ch.
type Literal struct {
	Ch       byte
	FoldCase bool // case-insensitive matching
}

func (n *Literal) Type() NodeType { return NodeLiteral }

// AnyChar matches any single content character.
type AnyChar struct{}

func (n *AnyChar) Type() NodeType { return NodeAnyChar }

// ByteRange is an inclusive range of bytes inside a character class.
// A single character c is the range {c, c}.
type ByteRange struct {
	Lo, Hi byte
}

// CharClass matches a single character by (non-)membership in Ranges.
type CharClass struct {
	Ranges   []ByteRange
	Negated  bool
	FoldCase bool
}

func (n *CharClass) Type() NodeType { return NodeCharClass }

// AnchorKind distinguishes the two zero-width anchors.
type AnchorKind int

const (
	AnchorStart AnchorKind = iota // ^
	AnchorEnd                     // $
)

// Anchor constrains the alignment of the pattern, not the content.
type Anchor struct {
	Kind AnchorKind
}

func (n *Anchor) Type() NodeType { return NodeAnchor }

// Quantifier matches Body repeated Min..Max times.
type Quantifier struct {
	Body Node
	Min  int
	Max  int // -1 for unbounded
}

func (n *Quantifier) Type() NodeType { return NodeQuantifier }

// Concat matches a sequence of nodes.
type Concat struct {
	Nodes []Node
}

func (n *Concat) Type() NodeType { return NodeConcat }

// Alternate matches one of several branches. Branch order is irrelevant
// to the matched result but fixed so that enumeration is deterministic.
type Alternate struct {
	Nodes []Node
}

func (n *Alternate) Type() NodeType { return NodeAlternate }
