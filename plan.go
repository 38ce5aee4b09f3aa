package fheregex

// planner enumerates match variants for one AST against one public
// content length. It treats the AST as a non-deterministic matcher
// over positions [0, L] and expands it with an explicit worklist of
// partial alignments, so no recursion depth depends on the pattern.
// Enumeration is pure: no backend call happens here, and pruning uses
// only public structure (anchors, lengths, quantifier bounds).
type planner struct {
	length int
	work   []partial
	seen   map[string]struct{}
	plan   *Plan
}

// partial is one in-progress alignment: the nodes still to match (top
// of the stack first), the next content position, and the comparisons
// accumulated so far.
type partial struct {
	pos   int
	atoms []Atom
	rest  []Node
}

// newPlan enumerates every surviving variant of the AST aligned
// against content of the given length. Patterns without a start
// anchor get contains-semantics: every start offset in [0, L] is
// tried, and the anchors themselves prune impossible alignments.
func newPlan(ast Node, length int) *Plan {
	p := &planner{
		length: length,
		seen:   make(map[string]struct{}),
		plan:   &Plan{ContentLen: length},
	}

	// Seed in descending offset order; the worklist is a stack, so
	// variants surface in ascending start-offset order.
	for s := length; s >= 0; s-- {
		p.work = append(p.work, partial{pos: s, rest: []Node{ast}})
	}
	for len(p.work) > 0 {
		w := p.work[len(p.work)-1]
		p.work = p.work[:len(p.work)-1]
		p.step(w)
	}

	p.collectAtoms()
	return p.plan
}

func (p *planner) step(w partial) {
	if len(w.rest) == 0 {
		p.emit(w.atoms)
		return
	}

	node := w.rest[len(w.rest)-1]
	rest := w.rest[:len(w.rest)-1]

	switch n := node.(type) {
	case *Literal:
		if w.pos >= p.length {
			p.prune()
			return
		}
		p.push(w.pos+1, appendAtom(w.atoms, Atom{Pos: w.pos, Desc: newEqualDesc(n.Ch, n.FoldCase)}), cloneNodes(rest))

	case *CharClass:
		if w.pos >= p.length {
			p.prune()
			return
		}
		p.push(w.pos+1, appendAtom(w.atoms, Atom{Pos: w.pos, Desc: newClassDesc(n.Ranges, n.Negated, n.FoldCase)}), cloneNodes(rest))

	case *AnyChar:
		// Consumes a position but needs no comparison: conjunction
		// with a constant true is the identity.
		if w.pos >= p.length {
			p.prune()
			return
		}
		p.push(w.pos+1, w.atoms, cloneNodes(rest))

	case *Anchor:
		switch n.Kind {
		case AnchorStart:
			if w.pos != 0 {
				p.prune()
				return
			}
		case AnchorEnd:
			if w.pos != p.length {
				p.prune()
				return
			}
		}
		p.push(w.pos, w.atoms, cloneNodes(rest))

	case *Concat:
		next := cloneNodes(rest)
		for i := len(n.Nodes) - 1; i >= 0; i-- {
			next = append(next, n.Nodes[i])
		}
		p.push(w.pos, w.atoms, next)

	case *Alternate:
		// Reversed push keeps document order on the stack.
		for i := len(n.Nodes) - 1; i >= 0; i-- {
			p.push(w.pos, w.atoms, append(cloneNodes(rest), n.Nodes[i]))
		}

	case *Quantifier:
		// The cap for unbounded repetition is the remaining content:
		// more copies than characters left cannot produce a new
		// circuit. This bound is public, never content-derived.
		effMax := n.Max
		if effMax < 0 {
			effMax = p.length - w.pos
		}
		if n.Min > effMax {
			p.prune()
			return
		}
		// Descending push, ascending pop: repeat counts surface
		// smallest first.
		for k := effMax; k >= n.Min; k-- {
			next := cloneNodes(rest)
			for i := 0; i < k; i++ {
				next = append(next, n.Body)
			}
			p.push(w.pos, w.atoms, next)
		}
	}
}

func (p *planner) push(pos int, atoms []Atom, rest []Node) {
	p.work = append(p.work, partial{pos: pos, atoms: atoms, rest: rest})
}

func (p *planner) prune() {
	p.plan.Pruned++
}

func (p *planner) emit(atoms []Atom) {
	v := Variant{Atoms: atoms}
	key := v.Key()
	if _, dup := p.seen[key]; dup {
		return
	}
	p.seen[key] = struct{}{}
	p.plan.Variants = append(p.plan.Variants, v)
}

// collectAtoms fills the deduplicated comparison set in first-use order.
func (p *planner) collectAtoms() {
	seen := make(map[string]struct{})
	for _, v := range p.plan.Variants {
		for _, a := range v.Atoms {
			k := a.Key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			p.plan.Atoms = append(p.plan.Atoms, a)
		}
	}
}

// appendAtom extends an atom list into fresh backing storage. Partials
// fork at alternations and quantifiers, so sharing a backing array
// between siblings would let one branch clobber another.
func appendAtom(atoms []Atom, a Atom) []Atom {
	out := make([]Atom, len(atoms), len(atoms)+1)
	copy(out, atoms)
	return append(out, a)
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes), len(nodes)+4)
	copy(out, nodes)
	return out
}
