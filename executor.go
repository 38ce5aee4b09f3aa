package fheregex

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// executor drives one evaluation of a plan against encrypted content.
// Atoms carry no data dependency on each other, so they are resolved
// by parallel workers first; the AND/OR combination phase is a serial
// reduction over already-resolved inputs and is itself memoized, so
// variants sharing a prefix (quantifier expansions in particular)
// reuse combination results.
type executor[C, B any] struct {
	backend Backend[C, B]
	cache   *circuitCache[B]
	workers int
}

// term is an intermediate circuit value together with the canonical
// key of the circuit that produced it.
type term[B any] struct {
	key string
	val B
}

func (ex *executor[C, B]) run(ctx context.Context, plan *Plan, content []C) (B, error) {
	var zero B
	if len(content) != plan.ContentLen {
		return zero, fmt.Errorf("fheregex: plan built for length %d, content has length %d", plan.ContentLen, len(content))
	}

	// All variants pruned: the pattern provably cannot fit the
	// content length, and the answer is a constant.
	if len(plan.Variants) == 0 {
		return ex.constant(false)
	}
	// Some alignment needs no comparison at all (only anchors and
	// any-char steps): the pattern trivially matches.
	if plan.HasEmptyVariant() {
		return ex.constant(true)
	}

	if err := ex.resolveAtoms(ctx, plan, content); err != nil {
		return zero, err
	}

	// OR-reduce variants as their AND-reductions complete.
	var res term[B]
	for i, v := range plan.Variants {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		t, err := ex.variantTerm(v, content)
		if err != nil {
			return zero, err
		}
		if i == 0 {
			res = t
			continue
		}
		res, err = ex.combine("or", res, t, ex.backend.Or)
		if err != nil {
			return zero, err
		}
	}
	return res.val, nil
}

// resolveAtoms computes every distinct comparison in the plan, in
// parallel up to the configured worker count. Each atom touches one
// content ciphertext and one pattern constant, nothing else.
func (ex *executor[C, B]) resolveAtoms(ctx context.Context, plan *Plan, content []C) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ex.workers)
	for _, a := range plan.Atoms {
		if err := ctx.Err(); err != nil {
			break
		}
		a := a
		g.Go(func() error {
			_, err := ex.atomTerm(a, content)
			return err
		})
	}
	return g.Wait()
}

// atomTerm resolves one comparison through the cache; the backend
// primitive runs at most once per key per request.
func (ex *executor[C, B]) atomTerm(a Atom, content []C) (term[B], error) {
	key := a.Key()
	val, err := ex.cache.getOrCompute(key, func() (B, error) {
		switch a.Desc.Kind {
		case DescEqual:
			return ex.backend.CompareEqual(content[a.Pos], a.Desc.Ch, a.Desc.FoldCase)
		case DescClass:
			return ex.backend.CompareClass(content[a.Pos], a.Desc.Ranges, a.Desc.Negated, a.Desc.FoldCase)
		}
		var zero B
		return zero, fmt.Errorf("unknown comparison kind %d", a.Desc.Kind)
	})
	if err != nil {
		return term[B]{}, evalErr(key, err)
	}
	return term[B]{key: key, val: val}, nil
}

// variantTerm left-folds the variant's atoms with AND. The fold order
// is fixed (ascending position) so shared prefixes across variants hit
// the cache.
func (ex *executor[C, B]) variantTerm(v Variant, content []C) (term[B], error) {
	res, err := ex.atomTerm(v.Atoms[0], content)
	if err != nil {
		return term[B]{}, err
	}
	for _, a := range v.Atoms[1:] {
		t, err := ex.atomTerm(a, content)
		if err != nil {
			return term[B]{}, err
		}
		res, err = ex.combine("and", res, t, ex.backend.And)
		if err != nil {
			return term[B]{}, err
		}
	}
	return res, nil
}

func (ex *executor[C, B]) combine(op string, a, b term[B], f func(B, B) (B, error)) (term[B], error) {
	key := op + "(" + a.key + "," + b.key + ")"
	val, err := ex.cache.getOrCompute(key, func() (B, error) {
		return f(a.val, b.val)
	})
	if err != nil {
		return term[B]{}, evalErr(key, err)
	}
	return term[B]{key: key, val: val}, nil
}

func (ex *executor[C, B]) constant(v bool) (B, error) {
	var (
		res B
		err error
	)
	if v {
		res, err = ex.backend.ConstantTrue()
	} else {
		res, err = ex.backend.ConstantFalse()
	}
	if err != nil {
		var zero B
		return zero, evalErr(fmt.Sprintf("const(%v)", v), err)
	}
	return res, nil
}

func evalErr(step string, err error) error {
	if _, ok := err.(*EvalError); ok {
		return err
	}
	return &EvalError{Step: step, Err: err}
}
