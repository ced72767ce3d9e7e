// Package filterstate holds the per-list-view session state: the current raw
// and canonical filter, pagination and sort, and the lifecycle of the fetch
// they drive. One State belongs to exactly one view session; the rendering
// layer only dispatches transitions and reads snapshots.
package filterstate

import (
	"context"
	"sync"
	"time"

	"github.com/storeline/storeadmin/internal/domain"
)

// Phase is the state machine's current phase.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// Page is one page of fetch results.
type Page struct {
	Entities   []domain.Entity
	TotalCount int
}

// Fetcher executes a list query for a canonical filter.
type Fetcher interface {
	Fetch(ctx context.Context, filter domain.CanonicalFilter, pagination domain.Pagination, sort domain.EntitySort) (Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, filter domain.CanonicalFilter, pagination domain.Pagination, sort domain.EntitySort) (Page, error)

func (f FetcherFunc) Fetch(ctx context.Context, filter domain.CanonicalFilter, pagination domain.Pagination, sort domain.EntitySort) (Page, error) {
	return f(ctx, filter, pagination, sort)
}

// State is the filter state machine for one list view session. Transitions
// are serialized internally; a fetch result is applied only when its
// originating version still matches, so the last submitted action wins
// regardless of completion order.
type State struct {
	schema  domain.FilterSchema
	fetcher Fetcher
	timeout time.Duration

	mu         sync.Mutex
	phase      Phase
	raw        domain.RawFilter
	canonical  domain.CanonicalFilter
	expanded   bool
	pagination domain.Pagination
	sort       domain.EntitySort
	results    Page
	lastErr    error
	version    uint64
	cancel     context.CancelFunc

	inflight sync.WaitGroup
}

// Option configures a State at construction.
type Option func(*State)

// WithSeed seeds the initial raw filter from a persisted value.
func WithSeed(raw domain.RawFilter) Option {
	return func(s *State) {
		s.raw = raw.Clone()
		s.canonical = domain.Cast(s.schema, s.raw)
	}
}

// WithTimeout bounds each fetch; a timeout surfaces as the Error transition.
func WithTimeout(timeout time.Duration) Option {
	return func(s *State) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithSort sets the initial sort order.
func WithSort(sort domain.EntitySort) Option {
	return func(s *State) {
		s.sort = sort
	}
}

// New creates an Idle state for one list view session.
func New(schema domain.FilterSchema, fetcher Fetcher, opts ...Option) *State {
	s := &State{
		schema:     schema,
		fetcher:    fetcher,
		timeout:    30 * time.Second,
		phase:      PhaseIdle,
		raw:        domain.RawFilter{},
		canonical:  schema.Empty(),
		pagination: domain.Pagination{}.Normalize(),
		sort:       domain.DefaultSort(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot is a consistent read of the current state.
type Snapshot struct {
	Phase     Phase
	Raw       domain.RawFilter
	Canonical domain.CanonicalFilter
	Expanded  bool
	Results   Page
	Err       error
}

// Snapshot returns a copy of the current state for rendering.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:     s.phase,
		Raw:       s.raw.Clone(),
		Canonical: s.canonical,
		Expanded:  s.expanded,
		Results:   s.results,
		Err:       s.lastErr,
	}
}

// Submit validates raw input strictly, stores the canonical filter and
// issues a fetch. A validation failure returns the error without
// transitioning. A submit received while Loading supersedes the in-flight
// fetch.
func (s *State) Submit(ctx context.Context, raw domain.RawFilter) error {
	canonical, err := domain.CastStrict(s.schema, raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.raw = raw.Clone()
	s.canonical = canonical
	s.expanded = false
	s.pagination.Offset = 0
	s.dispatchLocked(ctx)
	s.mu.Unlock()
	return nil
}

// Reset clears raw and canonical filters to the schema's empty values,
// closes the panel and re-fetches with the empty filter.
func (s *State) Reset(ctx context.Context) {
	s.mu.Lock()
	s.raw = domain.RawFilter{}
	s.canonical = s.schema.Empty()
	s.expanded = false
	s.pagination.Offset = 0
	s.dispatchLocked(ctx)
	s.mu.Unlock()
}

// RemoveOne clears a single field from the current raw filter and resubmits,
// leaving all other active filters in place.
func (s *State) RemoveOne(ctx context.Context, field string) error {
	s.mu.Lock()
	raw := s.raw.Clone()
	s.mu.Unlock()
	delete(raw, field)
	return s.Submit(ctx, raw)
}

// SetPage moves the pagination window and re-fetches with the current filter.
func (s *State) SetPage(ctx context.Context, pagination domain.Pagination) {
	s.mu.Lock()
	s.pagination = pagination.Normalize()
	s.dispatchLocked(ctx)
	s.mu.Unlock()
}

// SetSort changes the sort order and re-fetches with the current filter.
func (s *State) SetSort(ctx context.Context, sort domain.EntitySort) {
	s.mu.Lock()
	s.sort = sort
	s.dispatchLocked(ctx)
	s.mu.Unlock()
}

// SetExpanded toggles the filter panel without touching the filter itself.
func (s *State) SetExpanded(expanded bool) {
	s.mu.Lock()
	s.expanded = expanded
	s.mu.Unlock()
}

// Wait blocks until every issued fetch, superseded ones included, has
// finished. Intended for tests and teardown.
func (s *State) Wait() {
	s.inflight.Wait()
}

// dispatchLocked cancels any in-flight fetch, bumps the version and launches
// a new fetch whose result is applied only if the version still matches on
// completion. Callers must hold s.mu.
func (s *State) dispatchLocked(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	s.version++
	version := s.version
	s.phase = PhaseLoading

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	s.cancel = cancel

	filter := s.canonical
	pagination := s.pagination
	sort := s.sort

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		page, err := s.fetcher.Fetch(fetchCtx, filter, pagination, sort)
		s.apply(version, page, err)
	}()
}

// apply commits a fetch result unless a later action superseded it.
func (s *State) apply(version uint64, page Page, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		// A later submit/reset/removeOne won; discard this result.
		return
	}
	if err != nil {
		// Previous results are retained on a failed fetch.
		s.phase = PhaseError
		s.lastErr = err
		return
	}
	s.phase = PhaseReady
	s.lastErr = nil
	s.results = page
}
