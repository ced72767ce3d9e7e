package filterstate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storeline/storeadmin/internal/domain"
)

func listSchema(t *testing.T) domain.FilterSchema {
	t.Helper()
	schema, err := domain.NewFilterSchema([]domain.FilterFieldSpec{
		{Name: "name", Kind: domain.FieldKindText},
		{Name: "active", Kind: domain.FieldKindBoolean},
	})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	return schema
}

// recordingFetcher captures every fetch and answers from a scripted queue.
type recordingFetcher struct {
	mu      sync.Mutex
	filters []domain.CanonicalFilter
	results []func(ctx context.Context) (Page, error)
}

func (f *recordingFetcher) Fetch(ctx context.Context, filter domain.CanonicalFilter, _ domain.Pagination, _ domain.EntitySort) (Page, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	var next func(ctx context.Context) (Page, error)
	if len(f.results) > 0 {
		next = f.results[0]
		f.results = f.results[1:]
	}
	f.mu.Unlock()
	if next == nil {
		return Page{}, nil
	}
	return next(ctx)
}

func (f *recordingFetcher) calls() []domain.CanonicalFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := make([]domain.CanonicalFilter, len(f.filters))
	copy(clone, f.filters)
	return clone
}

func immediate(page Page) func(ctx context.Context) (Page, error) {
	return func(context.Context) (Page, error) { return page, nil }
}

func failing(err error) func(ctx context.Context) (Page, error) {
	return func(context.Context) (Page, error) { return Page{}, err }
}

func TestSubmit_SuccessReachesReady(t *testing.T) {
	schema := listSchema(t)
	fetcher := &recordingFetcher{results: []func(context.Context) (Page, error){
		immediate(Page{TotalCount: 3}),
	}}
	state := New(schema, fetcher)

	if got := state.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("expected initial phase idle, got %s", got)
	}

	if err := state.Submit(context.Background(), domain.RawFilter{"name": " Dairy "}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	state.Wait()

	snap := state.Snapshot()
	if snap.Phase != PhaseReady {
		t.Fatalf("expected ready, got %s (err %v)", snap.Phase, snap.Err)
	}
	if snap.Results.TotalCount != 3 {
		t.Fatalf("expected results applied, got %+v", snap.Results)
	}
	value, ok := snap.Canonical.Get("name")
	if !ok || value.Text != "Dairy" {
		t.Fatalf("expected canonical name Dairy, got %+v set=%v", value, ok)
	}
	if snap.Expanded {
		t.Fatalf("expected panel closed after submit")
	}
}

func TestSubmit_ValidationErrorNoTransition(t *testing.T) {
	schema, err := domain.NewFilterSchema([]domain.FilterFieldSpec{
		{Name: "name", Kind: domain.FieldKindText},
		{Name: "shop", Kind: domain.FieldKindRelationToOne, RelatedType: "shop"},
	})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	fetcher := &recordingFetcher{}
	state := New(schema, fetcher)

	if err := state.Submit(context.Background(), domain.RawFilter{"shop": "not-an-id"}); err == nil {
		t.Fatalf("expected validation error for malformed relation value")
	}
	state.Wait()

	if got := len(fetcher.calls()); got != 0 {
		t.Fatalf("expected no fetch on validation failure, got %d", got)
	}
	if got := state.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("expected state unchanged, got %s", got)
	}
}

func TestSubmit_RequiredFormFieldDoesNotBlockFilters(t *testing.T) {
	schema, err := domain.NewFilterSchema([]domain.FilterFieldSpec{
		{Name: "name", Kind: domain.FieldKindText, Required: true},
		{Name: "shop", Kind: domain.FieldKindRelationToOne, RelatedType: "shop"},
	})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	fetcher := &recordingFetcher{results: []func(context.Context) (Page, error){
		immediate(Page{TotalCount: 7}),
	}}
	state := New(schema, fetcher)

	// Required applies to forms; a shop-only filter still submits.
	shopID := "3f8e2b6a-8f63-4b43-9c1e-1c2d3e4f5a6b"
	if err := state.Submit(context.Background(), domain.RawFilter{"shop": shopID}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	state.Wait()

	snap := state.Snapshot()
	if snap.Phase != PhaseReady {
		t.Fatalf("expected ready, got %s (err %v)", snap.Phase, snap.Err)
	}
	if _, ok := snap.Canonical.Get("name"); ok {
		t.Fatalf("expected name unset in the submitted filter")
	}
	if value, ok := snap.Canonical.Get("shop"); !ok || value.Relation.String() != shopID {
		t.Fatalf("expected canonical shop %s, got %+v set=%v", shopID, value, ok)
	}
}

func TestSubmit_FailureRetainsPreviousResults(t *testing.T) {
	schema := listSchema(t)
	fetchErr := errors.New("storage down")
	fetcher := &recordingFetcher{results: []func(context.Context) (Page, error){
		immediate(Page{TotalCount: 7}),
		failing(fetchErr),
	}}
	state := New(schema, fetcher)

	if err := state.Submit(context.Background(), domain.RawFilter{"name": "Dairy"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	state.Wait()

	if err := state.Submit(context.Background(), domain.RawFilter{"name": "Bakery"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	state.Wait()

	snap := state.Snapshot()
	if snap.Phase != PhaseError {
		t.Fatalf("expected error phase, got %s", snap.Phase)
	}
	if !errors.Is(snap.Err, fetchErr) {
		t.Fatalf("expected fetch error surfaced, got %v", snap.Err)
	}
	if snap.Results.TotalCount != 7 {
		t.Fatalf("expected previous results retained, got %+v", snap.Results)
	}
}

func TestReset_EmptyFilterSingleFetch(t *testing.T) {
	schema := listSchema(t)
	fetcher := &recordingFetcher{}
	state := New(schema, fetcher, WithSeed(domain.RawFilter{"name": "Dairy"}))
	state.SetExpanded(true)

	state.Reset(context.Background())
	state.Wait()

	snap := state.Snapshot()
	if !snap.Canonical.IsEmpty() {
		t.Fatalf("expected empty canonical filter after reset")
	}
	if snap.Expanded {
		t.Fatalf("expected panel closed after reset")
	}
	calls := fetcher.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one fetch, got %d", len(calls))
	}
	if !calls[0].IsEmpty() {
		t.Fatalf("expected reset fetch to carry the empty filter")
	}
}

func TestRemoveOne_ClearsFieldAndRefetches(t *testing.T) {
	schema := listSchema(t)
	fetcher := &recordingFetcher{}
	state := New(schema, fetcher)

	if err := state.Submit(context.Background(), domain.RawFilter{"name": "Dairy", "active": "true"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	state.Wait()

	if err := state.RemoveOne(context.Background(), "name"); err != nil {
		t.Fatalf("unexpected removeOne error: %v", err)
	}
	state.Wait()

	snap := state.Snapshot()
	if _, ok := snap.Canonical.Get("name"); ok {
		t.Fatalf("expected name cleared")
	}
	if _, ok := snap.Canonical.Get("active"); !ok {
		t.Fatalf("expected active untouched")
	}
	if got := len(fetcher.calls()); got != 2 {
		t.Fatalf("expected a re-fetch after removeOne, got %d fetches", got)
	}
}

func TestSubmit_LastSubmittedWins(t *testing.T) {
	schema := listSchema(t)

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	fetcher := &recordingFetcher{results: []func(context.Context) (Page, error){
		func(ctx context.Context) (Page, error) {
			close(firstStarted)
			select {
			case <-release:
			case <-ctx.Done():
			}
			// Slow first fetch completes after the second one.
			return Page{TotalCount: 111}, nil
		},
		immediate(Page{TotalCount: 222}),
	}}
	state := New(schema, fetcher)

	if err := state.Submit(context.Background(), domain.RawFilter{"name": "Dairy"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	<-firstStarted
	if err := state.Submit(context.Background(), domain.RawFilter{"name": "Bakery"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	close(release)
	state.Wait()

	snap := state.Snapshot()
	if snap.Phase != PhaseReady {
		t.Fatalf("expected ready, got %s (err %v)", snap.Phase, snap.Err)
	}
	if snap.Results.TotalCount != 222 {
		t.Fatalf("expected last submit to win, got results %+v", snap.Results)
	}
	value, _ := snap.Canonical.Get("name")
	if value.Text != "Bakery" {
		t.Fatalf("expected canonical from last submit, got %q", value.Text)
	}
}

func TestSubmit_TimeoutSurfacesAsError(t *testing.T) {
	schema := listSchema(t)
	fetcher := &recordingFetcher{results: []func(context.Context) (Page, error){
		func(ctx context.Context) (Page, error) {
			<-ctx.Done()
			return Page{}, ctx.Err()
		},
	}}
	state := New(schema, fetcher, WithTimeout(10*time.Millisecond))

	if err := state.Submit(context.Background(), domain.RawFilter{"name": "Dairy"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	state.Wait()

	snap := state.Snapshot()
	if snap.Phase != PhaseError {
		t.Fatalf("expected timeout to surface as error phase, got %s", snap.Phase)
	}
	if !errors.Is(snap.Err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", snap.Err)
	}
}
