// Package fheregex matches regular expressions against content whose
// characters are individually encrypted under a fully-homomorphic
// encryption scheme, producing an encrypted boolean without ever
// decrypting the content.
//
// The pattern and the content length are public; the content values
// are not. A match request is compiled into a finite set of candidate
// alignments ("variants"), alignments that are impossible on public
// information alone are pruned before any cryptographic work, and the
// surviving comparisons are deduplicated so each distinct homomorphic
// primitive runs at most once.
//
// Basic usage, with the Lattigo BFV backend in the bfv subpackage:
//
//	engine := fheregex.NewEngine[*rlwe.Ciphertext, *rlwe.Ciphertext](server)
//	res, err := engine.HasMatch(ctx, encryptedContent, "/^a+b$/i")
//
// The returned ciphertext decrypts to 1 on a match and 0 otherwise.
package fheregex

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
)

// Regex is a compiled pattern. It is immutable and safe for concurrent
// use; plans for different content lengths can be derived from one
// Regex.
type Regex struct {
	pattern string
	ast     Node
	fold    bool
}

// Compile parses a slash-delimited pattern (/body/ or /body/i) into a
// reusable Regex. No cryptography is involved.
func Compile(pattern string) (*Regex, error) {
	ast, fold, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Regex{pattern: pattern, ast: ast, fold: fold}, nil
}

// MustCompile is like Compile but panics on a malformed pattern.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("fheregex: Compile(%q): %v", pattern, err))
	}
	return re
}

// String returns the source pattern.
func (re *Regex) String() string { return re.pattern }

// FoldCase reports whether the pattern carried the i flag.
func (re *Regex) FoldCase() bool { return re.fold }

// Plan enumerates the match variants of the pattern against content of
// the given public length. Planning is pure computation and may be
// reused for any content of that length.
func (re *Regex) Plan(contentLen int) (*Plan, error) {
	if contentLen < 0 {
		return nil, fmt.Errorf("fheregex: negative content length %d", contentLen)
	}
	return newPlan(re.ast, contentLen), nil
}

// Config carries engine tuning knobs.
type Config struct {
	// Workers bounds the number of comparisons evaluated in
	// parallel. Combination steps run serially regardless.
	Workers int

	// Logger receives planning summaries at Debug and per-request
	// operation totals at Info. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the configuration used by NewEngine.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.GOMAXPROCS(0),
		Logger:  zap.NewNop(),
	}
}

// Engine evaluates patterns against encrypted content through a
// Backend. C is the backend's character ciphertext type, B its
// encrypted boolean type. An Engine is safe for concurrent use; each
// request gets its own comparison cache.
type Engine[C, B any] struct {
	backend Backend[C, B]
	cfg     Config
	log     *zap.Logger
}

// NewEngine creates an Engine with DefaultConfig.
func NewEngine[C, B any](b Backend[C, B]) *Engine[C, B] {
	return NewEngineWithConfig(b, DefaultConfig())
}

// NewEngineWithConfig creates an Engine with explicit configuration.
func NewEngineWithConfig[C, B any](b Backend[C, B], cfg Config) *Engine[C, B] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Engine[C, B]{backend: b, cfg: cfg, log: cfg.Logger}
}

// HasMatch compiles pattern, plans it against the (public) length of
// content and evaluates the circuit, returning the encrypted match
// boolean. The content is assumed to be ASCII-origin, one ciphertext
// per character; validating that before encryption is the caller's
// concern.
func (e *Engine[C, B]) HasMatch(ctx context.Context, content []C, pattern string) (B, error) {
	var zero B
	re, err := Compile(pattern)
	if err != nil {
		return zero, err
	}
	plan, err := re.Plan(len(content))
	if err != nil {
		return zero, err
	}
	res, _, err := e.Evaluate(ctx, plan, content)
	return res, err
}

// Evaluate runs a previously built plan against content of the
// matching length and reports per-request statistics alongside the
// encrypted result.
func (e *Engine[C, B]) Evaluate(ctx context.Context, plan *Plan, content []C) (B, Stats, error) {
	e.log.Debug("evaluating plan",
		zap.Int("content_len", plan.ContentLen),
		zap.Int("variants", len(plan.Variants)),
		zap.Int("distinct_atoms", len(plan.Atoms)),
		zap.Int("pruned", plan.Pruned),
	)

	ex := &executor[C, B]{
		backend: e.backend,
		cache:   newCircuitCache[B](),
		workers: e.cfg.Workers,
	}
	res, err := ex.run(ctx, plan, content)

	ops, hits := ex.cache.stats()
	stats := Stats{
		Variants:    len(plan.Variants),
		Pruned:      plan.Pruned,
		Comparisons: len(plan.Atoms),
		CipherOps:   ops,
		CacheHits:   hits,
	}
	if err != nil {
		return res, stats, err
	}

	e.log.Info("match evaluated",
		zap.Int("ciphertext_ops", stats.CipherOps),
		zap.Int("cache_hits", stats.CacheHits),
	)
	return res, stats, nil
}
