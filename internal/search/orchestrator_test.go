package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mediaranker/internal/board"
	"mediaranker/internal/catalog"
	"mediaranker/internal/media"
	"mediaranker/internal/notices"
)

type fakeCatalog struct {
	mu      sync.Mutex
	calls   []string
	search  func(ctx context.Context, query string, category catalog.Category) ([]catalog.Record, error)
	credits map[int64][]catalog.Record
	err     error
}

func (f *fakeCatalog) Search(ctx context.Context, query string, category catalog.Category) ([]catalog.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	fn := f.search
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, query, category)
}

func (f *fakeCatalog) PersonCredits(_ context.Context, id int64) ([]catalog.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.credits[id], nil
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func inception() catalog.Record {
	return catalog.Record{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", PosterPath: "/abc.jpg", MediaType: "movie"}
}

func newTestOrchestrator(cat catalog.Catalog, opts Options) (*Orchestrator, *board.Board, *notices.Queue) {
	b := board.New()
	q := notices.NewQueue(16)
	return New(cat, b, q, nil, opts), b, q
}

func messages(q *notices.Queue) []string {
	var out []string
	for _, n := range q.Drain() {
		out = append(out, n.Message)
	}
	return out
}

func TestShortQueryClearsWithoutCatalogCall(t *testing.T) {
	cat := &fakeCatalog{}
	delivered := make(chan Results, 4)
	o, _, _ := newTestOrchestrator(cat, Options{Debounce: time.Millisecond, Deliver: func(r Results) { delivered <- r }})

	o.Input(context.Background(), "a")
	res := <-delivered
	if res.Query != "a" || len(res.Candidates) != 0 || res.Loading {
		t.Fatalf("unexpected results %+v", res)
	}
	time.Sleep(20 * time.Millisecond)
	if calls := cat.Calls(); len(calls) != 0 {
		t.Fatalf("expected no catalog calls, got %v", calls)
	}
}

func TestInputDebouncesToLastQuery(t *testing.T) {
	cat := &fakeCatalog{search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
		return []catalog.Record{inception()}, nil
	}}
	done := make(chan Results, 8)
	o, _, _ := newTestOrchestrator(cat, Options{Debounce: 30 * time.Millisecond, Deliver: func(r Results) {
		if !r.Loading {
			done <- r
		}
	}})
	ctx := context.Background()

	o.Input(ctx, "In")
	o.Input(ctx, "Ince")
	o.Input(ctx, "Inception")

	select {
	case res := <-done:
		if res.Query != "Inception" || len(res.Candidates) != 1 {
			t.Fatalf("unexpected results %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced search")
	}
	if calls := cat.Calls(); len(calls) != 1 || calls[0] != "Inception" {
		t.Fatalf("expected one search for the last query, got %v", calls)
	}
}

func TestFlushFiresPendingSearch(t *testing.T) {
	cat := &fakeCatalog{search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
		return []catalog.Record{inception()}, nil
	}}
	done := make(chan Results, 4)
	o, _, _ := newTestOrchestrator(cat, Options{Debounce: time.Hour, Deliver: func(r Results) {
		if !r.Loading {
			done <- r
		}
	}})
	o.Input(context.Background(), "Inception")
	if !o.Flush() {
		t.Fatal("expected a pending search to flush")
	}
	select {
	case res := <-done:
		if len(res.Candidates) != 1 {
			t.Fatalf("unexpected results %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for flushed search")
	}
	if o.Flush() {
		t.Fatal("nothing should be pending after flush")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	cat := &fakeCatalog{search: func(_ context.Context, query string, _ catalog.Category) ([]catalog.Record, error) {
		if query == "slow" {
			close(started)
			<-release
			return []catalog.Record{{ID: 1, Title: "Slow", PosterPath: "/s.jpg", MediaType: "movie"}}, nil
		}
		return []catalog.Record{inception()}, nil
	}}
	o, _, _ := newTestOrchestrator(cat, Options{})
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		_, err := o.Search(ctx, "slow")
		errc <- err
	}()
	<-started

	fast, err := o.Search(ctx, "fast")
	if err != nil {
		t.Fatalf("fast search: %v", err)
	}
	close(release)

	if err := <-errc; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected slow search superseded, got %v", err)
	}
	current := o.Current()
	if current.Seq != fast.Seq || current.Query != "fast" || current.Candidates[0].Item.Title != "Inception" {
		t.Fatalf("stale response replaced newer results: %+v", current)
	}
}

func TestMediaResultsFilteredAndLimited(t *testing.T) {
	records := []catalog.Record{
		{ID: 1, Name: "Some Person", MediaType: "person", KnownForDepartment: "Acting"},
		inception(),
		{ID: 2, Name: "Dark", MediaType: "tv", PosterPath: "/d.jpg", FirstAirDate: "2017-12-01"},
		{ID: 3, Title: "NoPoster", MediaType: "movie"},
		{ID: 4, Title: "Four", MediaType: "movie", PosterPath: "/4.jpg"},
		{ID: 5, Title: "Five", MediaType: "movie", PosterPath: "/5.jpg"},
		{ID: 6, Title: "Six", MediaType: "movie", PosterPath: "/6.jpg"},
		{ID: 7, Title: "Unknown", MediaType: ""},
	}
	cat := &fakeCatalog{search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
		return records, nil
	}}
	o, _, _ := newTestOrchestrator(cat, Options{ResultLimit: 5})

	res, err := o.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Candidates) != 5 {
		t.Fatalf("expected 5 candidates, got %d", len(res.Candidates))
	}
	for _, c := range res.Candidates {
		if c.Item.Kind == media.KindPerson {
			t.Fatalf("person leaked into media results: %+v", c)
		}
	}
	if res.Candidates[1].Item.Kind != media.KindTV || res.Candidates[2].Item.Title != "NoPoster" {
		t.Fatalf("unexpected candidate order %+v", res.Candidates)
	}
}

func TestCatalogFailureFailsSoft(t *testing.T) {
	cat := &fakeCatalog{search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
		return nil, errors.New("connection refused")
	}}
	o, _, q := newTestOrchestrator(cat, Options{})

	res, err := o.Search(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("search should not return catalog errors, got %v", err)
	}
	if !res.Failed || res.Loading || len(res.Candidates) != 0 {
		t.Fatalf("unexpected results %+v", res)
	}
	if o.Current().Loading {
		t.Fatal("loading flag left set")
	}
	if msgs := messages(q); len(msgs) != 1 || msgs[0] != MsgSearchFailed {
		t.Fatalf("unexpected notices %v", msgs)
	}
}

func TestSelectMediaAddsToPending(t *testing.T) {
	cat := &fakeCatalog{search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
		return []catalog.Record{inception(), {ID: 9, Title: "Blank", MediaType: "movie"}}, nil
	}}
	o, b, q := newTestOrchestrator(cat, Options{})
	ctx := context.Background()

	if _, err := o.Search(ctx, "Inception"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	sel, err := o.Select(ctx, 0)
	if err != nil || len(sel.Added) != 1 {
		t.Fatalf("Select: %+v, %v", sel, err)
	}
	pending := b.Entries(board.Pending)
	want := media.Item{ID: "27205", Title: "Inception", Year: "2010", Poster: "/abc.jpg", Kind: media.KindMovie}
	if len(pending) != 1 || pending[0].Item != want {
		t.Fatalf("unexpected pending %+v", pending)
	}
	if msgs := messages(q); len(msgs) != 1 || msgs[0] != `Added "Inception" to your selection` {
		t.Fatalf("unexpected notices %v", msgs)
	}
	if len(o.Current().Candidates) != 0 {
		t.Fatal("results should clear after selection")
	}

	if _, err := o.Search(ctx, "Blank"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, err := o.Select(ctx, 1); !errors.Is(err, media.ErrNotPlaceable) {
		t.Fatalf("expected ErrNotPlaceable, got %v", err)
	}
	if b.Len() != 1 {
		t.Fatal("not-placeable item was added")
	}
	if _, err := o.Select(ctx, 7); !errors.Is(err, ErrNoSuchResult) {
		t.Fatalf("expected ErrNoSuchResult, got %v", err)
	}
}

func TestSelectPersonAddsTopCredits(t *testing.T) {
	cat := &fakeCatalog{
		search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
			return []catalog.Record{{ID: 6193, Name: "Leonardo DiCaprio", KnownForDepartment: "Acting", ProfilePath: "/leo.jpg"}}, nil
		},
		credits: map[int64][]catalog.Record{6193: {
			{ID: 1, Title: "Low", Popularity: 1, PosterPath: "/low.jpg", MediaType: "movie"},
			{ID: 2, Title: "TieFirst", Popularity: 50, PosterPath: "/t1.jpg", MediaType: "movie"},
			{ID: 3, Title: "Top", Popularity: 90, MediaType: "movie"},
			{ID: 4, Title: "TieSecond", Popularity: 50, PosterPath: "/t2.jpg", MediaType: "movie"},
		}},
	}
	o, b, q := newTestOrchestrator(cat, Options{})
	ctx := context.Background()

	o.SetCategory(catalog.CategoryPerson)
	if _, err := o.Search(ctx, "Leonardo"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	q.Drain()

	sel, err := o.Select(ctx, 0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(sel.Added) != 2 || sel.Skipped != 1 {
		t.Fatalf("unexpected selection %+v", sel)
	}
	pending := b.Entries(board.Pending)
	if len(pending) != 2 || pending[0].Item.Title != "TieFirst" || pending[1].Item.Title != "TieSecond" {
		t.Fatalf("unexpected pending %+v", pending)
	}
	msgs := messages(q)
	if len(msgs) != 2 || msgs[0] != "Finding movies with Leonardo DiCaprio..." || msgs[1] != "Added 2 titles from Leonardo DiCaprio" {
		t.Fatalf("unexpected notices %v", msgs)
	}
}

func TestSelectPersonWithoutCredits(t *testing.T) {
	cat := &fakeCatalog{
		search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
			return []catalog.Record{{ID: 1, Name: "Nobody", KnownForDepartment: "Acting"}}, nil
		},
		credits: map[int64][]catalog.Record{},
	}
	o, b, q := newTestOrchestrator(cat, Options{})
	o.SetCategory(catalog.CategoryPerson)
	ctx := context.Background()
	if _, err := o.Search(ctx, "Nobody"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if _, err := o.Select(ctx, 0); err != nil {
		t.Fatalf("Select: %v", err)
	}
	msgs := messages(q)
	if msgs[len(msgs)-1] != MsgNoCredits || b.Len() != 0 {
		t.Fatalf("unexpected notices %v", msgs)
	}
}

func TestSetCategoryClearsResults(t *testing.T) {
	cat := &fakeCatalog{search: func(context.Context, string, catalog.Category) ([]catalog.Record, error) {
		return []catalog.Record{inception()}, nil
	}}
	o, _, _ := newTestOrchestrator(cat, Options{})
	if _, err := o.Search(context.Background(), "Inception"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	o.SetCategory(catalog.CategoryPerson)
	if got := o.Current(); len(got.Candidates) != 0 || got.Category != catalog.CategoryPerson {
		t.Fatalf("unexpected results after category switch %+v", got)
	}
}

func TestTopCreditsStable(t *testing.T) {
	credits := []catalog.Record{{ID: 1, Popularity: 5}, {ID: 2, Popularity: 5}, {ID: 3, Popularity: 7}, {ID: 4, Popularity: 5}}
	top := TopCredits(credits, 3)
	if len(top) != 3 || top[0].ID != 3 || top[1].ID != 1 || top[2].ID != 2 {
		t.Fatalf("unexpected order %+v", top)
	}
	if credits[0].ID != 1 {
		t.Fatal("input slice was reordered")
	}
}
