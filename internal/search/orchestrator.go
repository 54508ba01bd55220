package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"mediaranker/internal/board"
	"mediaranker/internal/catalog"
	"mediaranker/internal/logging"
	"mediaranker/internal/media"
	"mediaranker/internal/notices"
)

// Notice texts.
const (
	MsgSearchFailed = "Error searching. Please try again."
	MsgAddFailed    = "Error adding item. Please try again."
	MsgNoCredits    = "No movies or shows found for this actor"
)

var (
	// ErrNoSuchResult is returned by Select for an index outside the current results.
	ErrNoSuchResult = errors.New("no such search result")
	// ErrSuperseded marks a synchronous search overtaken by newer input.
	ErrSuperseded = errors.New("search superseded by newer input")
)

// Candidate is one selectable search result.
type Candidate struct {
	Record catalog.Record
	Item   media.Item
}

// Results is the state of the result list.
type Results struct {
	Seq        uint64
	Query      string
	Category   catalog.Category
	Candidates []Candidate
	Loading    bool
	// Failed is set when the catalog call errored; Candidates is then empty.
	Failed bool
}

// Selection reports what Select added.
type Selection struct {
	Added   []board.Result
	Skipped int
}

// Options tune the orchestrator.
type Options struct {
	Debounce          time.Duration
	MinQueryLength    int
	ResultLimit       int
	PersonCreditLimit int
	// Deliver is called with every result-list change, outside the lock.
	Deliver func(Results)
}

// Orchestrator runs searches and selections.
type Orchestrator struct {
	catalog catalog.Catalog
	adder   board.Dispatcher
	sink    notices.Sink
	logger  *slog.Logger
	opts    Options

	mu       sync.Mutex
	category catalog.Category
	timer    *time.Timer
	pending  func()
	seq      uint64
	current  Results
}

// New builds an orchestrator. Selected items are added through adder.
func New(cat catalog.Catalog, adder board.Dispatcher, sink notices.Sink, logger *slog.Logger, opts Options) *Orchestrator {
	if sink == nil {
		sink = notices.Nop{}
	}
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = 2
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = 5
	}
	if opts.PersonCreditLimit <= 0 {
		opts.PersonCreditLimit = 3
	}
	return &Orchestrator{
		catalog:  cat,
		adder:    adder,
		sink:     sink,
		logger:   logging.NewComponentLogger(logger, "search"),
		opts:     opts,
		category: catalog.CategoryMedia,
		current:  Results{Category: catalog.CategoryMedia},
	}
}

// Category returns the active search category.
func (o *Orchestrator) Category() catalog.Category {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.category
}

// Current returns the latest result list.
func (o *Orchestrator) Current() Results {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// SetCategory switches between media and person search. Pending input and
// results are cleared.
func (o *Orchestrator) SetCategory(category catalog.Category) {
	o.mu.Lock()
	o.stopTimerLocked()
	o.seq++
	o.category = category
	o.current = Results{Seq: o.seq, Category: category}
	res := o.current
	o.mu.Unlock()
	o.deliver(res)
}

// Input records a keystroke. Short queries clear results at once; others are
// searched after the debounce period unless more input arrives first.
func (o *Orchestrator) Input(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	o.mu.Lock()
	o.stopTimerLocked()
	o.seq++
	seq, category := o.seq, o.category
	if o.tooShort(query) {
		o.current = Results{Seq: seq, Query: query, Category: category}
		res := o.current
		o.mu.Unlock()
		o.deliver(res)
		return
	}
	fire := func() {
		o.run(ctx, seq, query, category)
	}
	o.pending = fire
	o.timer = time.AfterFunc(o.opts.Debounce, fire)
	o.mu.Unlock()
}

// Search runs query immediately and returns its results. It fails with
// ErrSuperseded when newer input arrived while the catalog was answering.
func (o *Orchestrator) Search(ctx context.Context, query string) (Results, error) {
	query = strings.TrimSpace(query)

	o.mu.Lock()
	o.stopTimerLocked()
	o.seq++
	seq, category := o.seq, o.category
	if o.tooShort(query) {
		o.current = Results{Seq: seq, Query: query, Category: category}
		res := o.current
		o.mu.Unlock()
		o.deliver(res)
		return res, nil
	}
	o.mu.Unlock()

	res, ok := o.run(ctx, seq, query, category)
	if !ok {
		return res, ErrSuperseded
	}
	return res, nil
}

// Flush fires a pending debounced search now. Used by surfaces that submit on
// enter.
func (o *Orchestrator) Flush() bool {
	o.mu.Lock()
	if o.timer == nil || !o.timer.Stop() {
		o.timer, o.pending = nil, nil
		o.mu.Unlock()
		return false
	}
	fire := o.pending
	o.timer, o.pending = nil, nil
	o.mu.Unlock()
	go fire()
	return true
}

func (o *Orchestrator) tooShort(query string) bool {
	return utf8.RuneCountInString(query) < o.opts.MinQueryLength
}

func (o *Orchestrator) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.pending = nil
}

// run performs one tagged lookup. It reports false when the response was
// stale and therefore not delivered.
func (o *Orchestrator) run(ctx context.Context, seq uint64, query string, category catalog.Category) (Results, bool) {
	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()
		return Results{}, false
	}
	o.current = Results{Seq: seq, Query: query, Category: category, Loading: true}
	loading := o.current
	o.mu.Unlock()
	o.deliver(loading)

	res := Results{Seq: seq, Query: query, Category: category}
	records, err := o.catalog.Search(ctx, query, category)
	if err != nil {
		res.Failed = true
		logging.WarnWithContext(o.logger, "catalog search failed", "catalog_search_failed",
			logging.String("query", query),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and tmdb.api_key"),
			logging.String(logging.FieldImpact, "no results shown"))
	} else {
		res.Candidates = o.candidates(records, category)
	}

	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()
		o.logger.Debug("discarded stale search response",
			logging.String(logging.FieldEventType, "stale_search"),
			logging.String("query", query),
			logging.Uint64("seq", seq))
		return res, false
	}
	o.current = res
	o.mu.Unlock()

	if res.Failed {
		notices.Error(o.sink, MsgSearchFailed)
	}
	o.deliver(res)
	return res, true
}

// candidates filters to the active category and applies the result limit.
func (o *Orchestrator) candidates(records []catalog.Record, category catalog.Category) []Candidate {
	out := make([]Candidate, 0, o.opts.ResultLimit)
	for _, rec := range records {
		if len(out) >= o.opts.ResultLimit {
			break
		}
		if category == catalog.CategoryMedia && rec.MediaType != "movie" && rec.MediaType != "tv" {
			continue
		}
		item, err := media.Preview(rec, category)
		if err != nil {
			continue
		}
		out = append(out, Candidate{Record: rec, Item: item})
	}
	return out
}

func (o *Orchestrator) deliver(res Results) {
	if o.opts.Deliver != nil {
		o.opts.Deliver(res)
	}
}

// Select adds the candidate at index from the current results. A media
// candidate adds one item; a person candidate adds their most popular
// credits. Results are cleared afterwards.
func (o *Orchestrator) Select(ctx context.Context, index int) (Selection, error) {
	o.mu.Lock()
	current := o.current
	if index < 0 || index >= len(current.Candidates) {
		o.mu.Unlock()
		return Selection{}, fmt.Errorf("%w: %d", ErrNoSuchResult, index+1)
	}
	candidate := current.Candidates[index]
	o.stopTimerLocked()
	o.seq++
	o.current = Results{Seq: o.seq, Category: current.Category}
	cleared := o.current
	o.mu.Unlock()
	o.deliver(cleared)

	if current.Category == catalog.CategoryPerson {
		return o.selectPerson(ctx, candidate)
	}
	return o.selectMedia(ctx, candidate)
}

func (o *Orchestrator) selectMedia(ctx context.Context, c Candidate) (Selection, error) {
	item, err := media.Normalize(c.Record, catalog.CategoryMedia)
	if err != nil {
		var npe *media.NotPlaceableError
		if errors.As(err, &npe) {
			notices.Warn(o.sink, npe.Notice())
		}
		return Selection{Skipped: 1}, err
	}
	res, err := o.adder.Dispatch(ctx, board.AddItem{Item: item})
	if err != nil {
		notices.Error(o.sink, MsgAddFailed)
		return Selection{}, err
	}
	notices.Success(o.sink, fmt.Sprintf("Added %q to your selection", item.Title))
	return Selection{Added: []board.Result{res}}, nil
}

func (o *Orchestrator) selectPerson(ctx context.Context, c Candidate) (Selection, error) {
	name := c.Item.Title
	notices.Info(o.sink, fmt.Sprintf("Finding movies with %s...", name))

	credits, err := o.catalog.PersonCredits(ctx, c.Record.ID)
	if err != nil {
		logging.WarnWithContext(o.logger, "person credits lookup failed", "catalog_credits_failed",
			logging.Int64("person_id", c.Record.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no titles added"))
		notices.Error(o.sink, MsgAddFailed)
		return Selection{}, nil
	}
	if len(credits) == 0 {
		notices.Info(o.sink, MsgNoCredits)
		return Selection{}, nil
	}

	top := TopCredits(credits, o.opts.PersonCreditLimit)
	var sel Selection
	for _, credit := range top {
		item, err := media.Normalize(credit, catalog.CategoryMedia)
		if err != nil {
			sel.Skipped++
			continue
		}
		res, err := o.adder.Dispatch(ctx, board.AddItem{Item: item})
		if err != nil {
			return sel, err
		}
		sel.Added = append(sel.Added, res)
	}
	notices.Success(o.sink, fmt.Sprintf("Added %d titles from %s", len(sel.Added), name))
	return sel, nil
}

// TopCredits returns the n most popular credits. Equal popularity keeps
// provider order.
func TopCredits(credits []catalog.Record, n int) []catalog.Record {
	sorted := append([]catalog.Record(nil), credits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Popularity > sorted[j].Popularity
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Close stops any pending debounced search.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopTimerLocked()
	o.seq++
}
