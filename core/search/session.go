package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goto/quicksearch/pkg/statsd"
	"github.com/goto/salt/log"
)

const defaultMinDeferredQueryLength = 3

// Session holds the quick search state of one result view. Without a source
// it filters its items in memory with Matches. With a source it compiles the
// query, conjoins it with the base predicate and lets the source evaluate
// it; queries shorter than the minimum length keep the previous result.
//
// Search errors never reach the caller: they are logged and the session
// falls back to the unfiltered result.
type Session[T any] struct {
	engine                 *Engine
	logger                 log.Logger
	reporter               *statsd.Reporter
	opts                   Options
	minDeferredQueryLength int
	onResultChanged        func(query string, result []T)

	mu        sync.Mutex
	items     []T
	source    Source[T]
	base      Predicate
	query     string
	lastQuery string
	result    []T
	evaluated bool
}

type SessionOption[T any] func(*Session[T])

func WithSearchOptions[T any](opts Options) SessionOption[T] {
	return func(s *Session[T]) {
		s.opts = opts
	}
}

// WithSource evaluates searches at src, always restricted by base.
func WithSource[T any](src Source[T], base Predicate) SessionOption[T] {
	return func(s *Session[T]) {
		s.source = src
		s.base = base
	}
}

func WithMinDeferredQueryLength[T any](n int) SessionOption[T] {
	return func(s *Session[T]) {
		s.minDeferredQueryLength = n
	}
}

func WithReporter[T any](r *statsd.Reporter) SessionOption[T] {
	return func(s *Session[T]) {
		s.reporter = r
	}
}

// WithResultChanged registers fn to be called, outside the session lock,
// whenever a search runs for a query different from the previous one.
func WithResultChanged[T any](fn func(query string, result []T)) SessionOption[T] {
	return func(s *Session[T]) {
		s.onResultChanged = fn
	}
}

func NewSession[T any](engine *Engine, logger log.Logger, items []T, opts ...SessionOption[T]) *Session[T] {
	s := &Session[T]{
		engine:                 engine,
		logger:                 logger,
		opts:                   DefaultOptions(),
		minDeferredQueryLength: defaultMinDeferredQueryLength,
		items:                  items,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewNoop()
	}
	return s
}

// SetItems replaces the in-memory items and drops the cached result.
func (s *Session[T]) SetItems(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items
	s.evaluated = false
}

func (s *Session[T]) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.query
}

// Search sets the query and returns the filtered result.
func (s *Session[T]) Search(ctx context.Context, query string) []T {
	s.mu.Lock()
	if query != s.query {
		s.query = query
		s.evaluated = false
	}
	result, changed := s.refresh(ctx)
	s.mu.Unlock()

	if changed && s.onResultChanged != nil {
		s.onResultChanged(query, result)
	}
	return result
}

// Clear resets the query; the result is the unfiltered one again.
func (s *Session[T]) Clear(ctx context.Context) []T {
	return s.Search(ctx, "")
}

// Result returns the result for the current query.
func (s *Session[T]) Result(ctx context.Context) []T {
	return s.Search(ctx, s.Query())
}

func (s *Session[T]) refresh(ctx context.Context) ([]T, bool) {
	changed := s.query != s.lastQuery
	s.lastQuery = s.query
	if s.evaluated {
		return s.result, changed
	}

	blank := strings.TrimSpace(s.query) == ""
	switch {
	case s.source == nil:
		s.result = s.filterItems(blank)
	case blank:
		s.result = s.where(ctx, s.base)
	case len([]rune(strings.TrimSpace(s.query))) < s.minDeferredQueryLength:
		// short queries keep the previous result
		if s.result == nil {
			s.result = s.where(ctx, s.base)
		}
	default:
		s.result = s.searchSource(ctx)
	}
	s.evaluated = true

	return s.result, changed
}

func (s *Session[T]) filterItems(blank bool) []T {
	if blank {
		return s.items
	}

	start := time.Now()
	result, err := Filter(s.engine, s.items, s.query, s.opts)
	if err != nil {
		s.reporter.Incr("session.search").Tag("source", "memory").Failure(err).Publish()
		s.logger.Error("quick search failed, showing unfiltered items", "query", s.query, "err", err)
		return s.items
	}
	s.reporter.Timing("session.search", time.Since(start)).Tag("source", "memory").Success().Publish()
	s.reporter.Histogram("session.results", float64(len(result))).Tag("source", "memory").Publish()
	return result
}

func (s *Session[T]) searchSource(ctx context.Context) []T {
	start := time.Now()
	pred, err := CompileFor[T](s.engine, s.query, s.opts)
	if err == nil {
		s.reporter.Timing("session.compile", time.Since(start)).Success().Publish()
		pred, err = s.base.And(pred)
	}
	if err != nil {
		s.reporter.Incr("session.compile").Failure(err).Publish()
		s.logger.Error("compile quick search failed, showing unfiltered items", "query", s.query, "err", err)
		return s.where(ctx, s.base)
	}

	return s.where(ctx, pred)
}

func (s *Session[T]) where(ctx context.Context, pred Predicate) []T {
	start := time.Now()
	result, err := s.source.Where(ctx, pred)
	if err != nil {
		s.reporter.Incr("session.search").Tag("source", "deferred").Failure(err).Publish()
		s.logger.Error("deferred search failed", "query", s.query, "predicate", pred.String(), "err", err)
		return nil
	}
	s.reporter.Timing("session.search", time.Since(start)).Tag("source", "deferred").Success().Publish()
	s.reporter.Histogram("session.results", float64(len(result))).Tag("source", "deferred").Publish()
	return result
}
