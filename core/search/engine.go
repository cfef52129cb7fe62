package search

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultPredicateCacheSize = 256
	defaultMaxFieldPaths      = 4096
)

// Engine answers quick searches over records. It holds the field cache
// and a cache of compiled predicates; both are safe for concurrent use, so
// one Engine is meant to be shared.
type Engine struct {
	fields             *FieldCache
	predicateCacheSize int
	maxFieldPaths      int
	compiled           *lru.Cache[string, Predicate]
}

type EngineOption func(*Engine)

// WithFieldCache shares an existing field cache with the engine.
func WithFieldCache(c *FieldCache) EngineOption {
	return func(e *Engine) {
		e.fields = c
	}
}

// WithPredicateCacheSize bounds the compiled predicate cache. A size of
// zero or less disables it.
func WithPredicateCacheSize(size int) EngineOption {
	return func(e *Engine) {
		e.predicateCacheSize = size
	}
}

// WithMaxFieldPaths bounds how many field paths Compile may unroll for one
// record type. Recursive types branching on every level otherwise grow
// exponentially with depth. A limit of zero or less disables it.
func WithMaxFieldPaths(limit int) EngineOption {
	return func(e *Engine) {
		e.maxFieldPaths = limit
	}
}

func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		predicateCacheSize: defaultPredicateCacheSize,
		maxFieldPaths:      defaultMaxFieldPaths,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.fields == nil {
		e.fields = NewFieldCache()
	}

	if e.predicateCacheSize > 0 {
		compiled, err := lru.New[string, Predicate](e.predicateCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create predicate cache: %w", err)
		}
		e.compiled = compiled
	}

	return e, nil
}

// Fields exposes the engine's field cache.
func (e *Engine) Fields() *FieldCache {
	return e.fields
}
