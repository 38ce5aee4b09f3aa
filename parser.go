package fheregex

import (
	"fmt"
	"strconv"
)

// Parser parses a slash-delimited pattern into an AST.
//
// The accepted syntax is /body/ with an optional trailing i flag for
// case-insensitive matching. The body grammar, loosest to tightest:
//
//	expr   = term { '|' expr }
//	term   = { factor }
//	factor = atom [ '?' | '*' | '+' | '{' bounds '}' ]
//	atom   = literal | escaped | '.' | '^' | '$' | class | '(' expr ')'
//
// Alternation binds loosest, so /^ab|cd$/ splits the whole pattern at
// the pipe and each anchor belongs to its own branch.
type Parser struct {
	input string // pattern body, delimiters stripped
	pos   int
	base  int // offset of input within the original pattern string
	fold  bool
}

// escapable is the set of metacharacters that may follow a backslash.
const escapable = `.*[]$^+?|\/`

// NewParser prepares a parser for the body of a pattern whose
// delimiters have already been stripped.
func NewParser(body string, at int, foldCase bool) *Parser {
	return &Parser{input: body, base: at, fold: foldCase}
}

// ParsePattern splits the /.../ delimiters and flag off pattern and
// parses the body. It reports the AST and the global case-insensitive
// flag.
func ParsePattern(pattern string) (Node, bool, error) {
	if len(pattern) == 0 || pattern[0] != '/' {
		return nil, false, &SyntaxError{Pos: 0, Excerpt: excerpt(pattern), Msg: "pattern must start with '/'"}
	}

	// Find the closing delimiter, honoring \/ escapes.
	end := -1
	for i := 1; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '/':
			end = i
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, false, &SyntaxError{Pos: len(pattern), Msg: "unterminated pattern delimiter"}
	}

	fold := false
	switch flags := pattern[end+1:]; flags {
	case "":
	case "i":
		fold = true
	default:
		return nil, false, &SyntaxError{Pos: end + 1, Excerpt: flags, Msg: "unknown pattern flag"}
	}

	body := pattern[1:end]
	if body == "" {
		return nil, false, &SyntaxError{Pos: 1, Msg: "empty pattern"}
	}

	p := NewParser(body, 1, fold)
	node, err := p.parseExpr()
	if err != nil {
		return nil, false, err
	}
	if p.pos < len(p.input) {
		return nil, false, p.errorf("unexpected %q", p.rest())
	}
	return node, fold, nil
}

// parseExpr handles alternation: term | expr
func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.input) && p.peek() == '|' {
		p.consume() // eat |
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		// Flatten right-nested alternations for stable document order.
		if alt, ok := right.(*Alternate); ok {
			return &Alternate{Nodes: append([]Node{left}, alt.Nodes...)}, nil
		}
		return &Alternate{Nodes: []Node{left, right}}, nil
	}
	return left, nil
}

// parseTerm handles concatenation: factor factor ...
func (p *Parser) parseTerm() (Node, error) {
	var nodes []Node
	for p.pos < len(p.input) && p.peek() != '|' && p.peek() != ')' {
		node, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	// A zero-length term (as in /a|/) matches the empty string.
	return &Concat{Nodes: nodes}, nil
}

// parseFactor handles quantifiers: atom?, atom*, atom+, atom{m,n}
func (p *Parser) parseFactor() (Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	if p.pos >= len(p.input) {
		return atom, nil
	}

	var q *Quantifier
	switch p.peek() {
	case '*':
		p.consume()
		q = &Quantifier{Body: atom, Min: 0, Max: -1}
	case '+':
		p.consume()
		q = &Quantifier{Body: atom, Min: 1, Max: -1}
	case '?':
		p.consume()
		q = &Quantifier{Body: atom, Min: 0, Max: 1}
	case '{':
		open := p.pos
		p.consume() // eat {

		min, ok := p.parseInt()
		if !ok {
			return nil, p.errorAt(open, "malformed quantifier: missing lower bound")
		}
		max := min // {m} means exactly m

		if p.pos < len(p.input) && p.peek() == ',' {
			p.consume() // eat ,
			if p.pos < len(p.input) && p.peek() == '}' {
				max = -1 // {m,} means m or more
			} else {
				max, ok = p.parseInt()
				if !ok {
					return nil, p.errorAt(open, "malformed quantifier: missing upper bound")
				}
			}
		}

		if p.pos >= len(p.input) || p.consume() != '}' {
			return nil, p.errorAt(open, "unterminated quantifier")
		}
		if max >= 0 && min > max {
			return nil, p.errorAt(open, "malformed quantifier: min "+strconv.Itoa(min)+" exceeds max "+strconv.Itoa(max))
		}
		q = &Quantifier{Body: atom, Min: min, Max: max}
	default:
		return atom, nil
	}

	if _, ok := atom.(*Anchor); ok {
		return nil, p.errorf("quantifier applied to anchor")
	}
	if p.pos < len(p.input) {
		switch p.peek() {
		case '*', '+', '?', '{':
			return nil, p.errorf("nested quantifier")
		}
	}
	return q, nil
}

// parseAtom handles literals, escapes, anchors, classes and groups.
func (p *Parser) parseAtom() (Node, error) {
	switch ch := p.peek(); ch {
	case '(':
		p.consume()
		node, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.input) || p.consume() != ')' {
			return nil, p.errorf("unterminated group")
		}
		return node, nil
	case '[':
		open := p.pos
		p.consume()
		return p.parseCharClass(open)
	case '.':
		p.consume()
		return &AnyChar{}, nil
	case '^':
		p.consume()
		return &Anchor{Kind: AnchorStart}, nil
	case '$':
		p.consume()
		return &Anchor{Kind: AnchorEnd}, nil
	case '\\':
		at := p.pos
		p.consume() // eat backslash
		if p.pos >= len(p.input) {
			return nil, p.errorAt(at, "trailing backslash")
		}
		esc := p.consume()
		if !escapableByte(esc) {
			return nil, p.errorAt(at, "unknown escape sequence")
		}
		return &Literal{Ch: esc, FoldCase: p.fold}, nil
	case '*', '+', '?', '{':
		return nil, p.errorf("quantifier with nothing to repeat")
	case '|', ')':
		// Callers stop at these; reaching here is a parser bug.
		return nil, p.errorf("unexpected metacharacter %q", string(ch))
	default:
		p.consume()
		if ch >= 0x80 {
			return nil, &UnsupportedError{Construct: "non-ASCII literal"}
		}
		return &Literal{Ch: ch, FoldCase: p.fold}, nil
	}
}

// parseCharClass parses the remainder of a bracket expression; the
// opening [ has been consumed and is at offset open.
func (p *Parser) parseCharClass(open int) (Node, error) {
	negated := false
	if p.pos < len(p.input) && p.peek() == '^' {
		p.consume()
		negated = true
	}

	var ranges []ByteRange
	for p.pos < len(p.input) && p.peek() != ']' {
		lo, err := p.classChar()
		if err != nil {
			return nil, err
		}

		if p.pos+1 < len(p.input) && p.peek() == '-' && p.input[p.pos+1] != ']' {
			p.consume() // eat -
			hi, err := p.classChar()
			if err != nil {
				return nil, err
			}
			if lo > hi {
				return nil, p.errorAt(open, "invalid class range: lower bound exceeds upper")
			}
			ranges = append(ranges, ByteRange{Lo: lo, Hi: hi})
		} else {
			ranges = append(ranges, ByteRange{Lo: lo, Hi: lo})
		}
	}

	if p.pos >= len(p.input) || p.consume() != ']' {
		return nil, p.errorAt(open, "unterminated bracket expression")
	}
	if len(ranges) == 0 {
		return nil, p.errorAt(open, "empty bracket expression")
	}
	return &CharClass{Ranges: ranges, Negated: negated, FoldCase: p.fold}, nil
}

// classChar reads one (possibly escaped) class member character.
func (p *Parser) classChar() (byte, error) {
	at := p.pos
	ch := p.consume()
	if ch == '\\' {
		if p.pos >= len(p.input) {
			return 0, p.errorAt(at, "trailing backslash in bracket expression")
		}
		esc := p.consume()
		switch esc {
		case '[', ']', '\\', '^', '-', '/':
			return esc, nil
		}
		return 0, p.errorAt(at, "unknown escape sequence in bracket expression")
	}
	if ch >= 0x80 {
		return 0, &UnsupportedError{Construct: "non-ASCII literal"}
	}
	return ch, nil
}

// parseInt reads a decimal integer, reporting false if none is present.
func (p *Parser) parseInt() (int, bool) {
	start := p.pos
	for p.pos < len(p.input) && p.peek() >= '0' && p.peek() <= '9' {
		p.consume()
	}
	if p.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Helpers

func (p *Parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) consume() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	ch := p.input[p.pos]
	p.pos++
	return ch
}

func (p *Parser) rest() string {
	return excerpt(p.input[p.pos:])
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return p.errorAt(p.pos, fmt.Sprintf(format, args...))
}

func (p *Parser) errorAt(pos int, msg string) error {
	tail := p.input
	if pos < len(tail) {
		tail = tail[pos:]
	} else {
		tail = ""
	}
	return &SyntaxError{Pos: p.base + pos, Excerpt: excerpt(tail), Msg: msg}
}

func escapableByte(b byte) bool {
	for i := 0; i < len(escapable); i++ {
		if escapable[i] == b {
			return true
		}
	}
	return false
}

func excerpt(s string) string {
	const n = 12
	if len(s) > n {
		return s[:n]
	}
	return s
}
