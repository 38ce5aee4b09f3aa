package fheregex

import (
	"sync"
	"sync/atomic"
)

// circuitCache memoizes every ciphertext produced during one match
// request, keyed by the canonical description of the circuit that
// produced it: atoms as well as AND/OR combination steps. For any key
// the backend primitive runs at most once; concurrent requests for the
// same key block on a per-key once instead of racing.
//
// A cache lives for a single match request and is discarded with it.
type circuitCache[B any] struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry[B]

	ops  atomic.Int64 // backend primitives executed
	hits atomic.Int64 // lookups served from memory
}

type cacheEntry[B any] struct {
	once sync.Once
	val  B
	err  error
}

func newCircuitCache[B any]() *circuitCache[B] {
	return &circuitCache[B]{entries: make(map[string]*cacheEntry[B])}
}

// getOrCompute returns the memoized result for key, invoking compute
// exactly once across all callers on first use.
func (c *circuitCache[B]) getOrCompute(key string, compute func() (B, error)) (B, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry[B]{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	}
	e.once.Do(func() {
		c.ops.Add(1)
		e.val, e.err = compute()
	})
	return e.val, e.err
}

// Stats summarizes the work one evaluation performed.
type Stats struct {
	Variants    int // surviving variants in the plan
	Pruned      int // branches discarded on public information
	Comparisons int // distinct atom comparisons requested
	CipherOps   int // backend primitives actually executed
	CacheHits   int // operations served from the cache
}

func (c *circuitCache[B]) stats() (ops, hits int) {
	return int(c.ops.Load()), int(c.hits.Load())
}
