package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediaranker/internal/api"
	"mediaranker/internal/catalog"
	"mediaranker/internal/events"
	"mediaranker/internal/logging"
	"mediaranker/internal/notices"
	"mediaranker/internal/search"
	"mediaranker/internal/session"
	"mediaranker/internal/storage"
	"mediaranker/internal/testsupport"
)

type stubCatalog struct {
	records []catalog.Record
	credits []catalog.Record
	err     error
}

func (c *stubCatalog) Search(context.Context, string, catalog.Category) ([]catalog.Record, error) {
	return c.records, c.err
}

func (c *stubCatalog) PersonCredits(context.Context, int64) ([]catalog.Record, error) {
	return c.credits, c.err
}

type harness struct {
	srv     *httptest.Server
	session *session.Session
	queue   *notices.Queue
}

func newHarness(t *testing.T, cat catalog.Catalog) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	kv := testsupport.MustOpenStore(t, cfg)
	store := storage.NewBoardStore(kv, logging.NewNop())

	hub := events.NewHub(logging.NewNop())
	queue := notices.NewQueue(notices.DefaultQueueSize)
	sink := notices.Multi{queue, hub}
	sess, err := session.Open(context.Background(), store, sink, logging.NewNop())
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	server := api.New(api.Deps{
		Session: sess,
		Catalog: cat,
		Hub:     hub,
		Notices: queue,
		Sink:    sink,
	}, api.Options{
		Images: api.Images{BaseURL: "https://img.example/w500", Placeholder: "https://img.example/none.png"},
		Search: search.Options{Debounce: 10 * time.Millisecond},
	}, logging.NewNop())

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, session: sess, queue: queue}
}

func (h *harness) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d (%s)", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func (h *harness) seed(t *testing.T, title string) uint64 {
	t.Helper()
	res, err := h.session.Add(context.Background(), testsupport.Movie(strings.ToLower(title), title, "2001"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return uint64(res.Ref)
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(t, http.MethodGet, "/health", nil)
	expectStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "OK" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSearchAndSelectAddsToPending(t *testing.T) {
	cat := &stubCatalog{records: []catalog.Record{
		{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", MediaType: "movie", PosterPath: "/inc.jpg"},
		{ID: 6193, Name: "Leonardo DiCaprio", MediaType: "person", ProfilePath: "/leo.jpg"},
	}}
	h := newHarness(t, cat)

	resp := h.do(t, http.MethodGet, "/api/search?q=inception", nil)
	expectStatus(t, resp, http.StatusOK)
	results := decode[api.SearchResults](t, resp)
	if len(results.Candidates) != 1 || results.Candidates[0].Title != "Inception" {
		t.Fatalf("unexpected candidates: %+v", results.Candidates)
	}
	if results.Candidates[0].Label != "2010 • Movie" {
		t.Fatalf("unexpected label %q", results.Candidates[0].Label)
	}

	resp = h.do(t, http.MethodPost, "/api/search/select", map[string]int{"index": 0})
	expectStatus(t, resp, http.StatusOK)
	sel := decode[api.SelectionResponse](t, resp)
	if len(sel.Added) != 1 || sel.Added[0].PosterURL != "https://img.example/w500/inc.jpg" {
		t.Fatalf("unexpected selection: %+v", sel)
	}

	board := decode[api.Board](t, h.do(t, http.MethodGet, "/api/board", nil))
	if len(board.Pending.Cards) != 1 || board.Pending.Cards[0].ID != "27205" {
		t.Fatalf("unexpected pending: %+v", board.Pending)
	}
	if len(board.Tiers) != 6 || board.Tiers[0].Letter != "S" {
		t.Fatalf("unexpected tiers: %+v", board.Tiers)
	}

	list := decode[map[string][]notices.Notice](t, h.do(t, http.MethodGet, "/api/notices", nil))
	found := false
	for _, n := range list["notices"] {
		if n.Message == `Added "Inception" to your selection` {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected added notice, got %+v", list)
	}

	resp = h.do(t, http.MethodPost, "/api/search/select", map[string]int{"index": 0})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestSearchWithoutCatalog(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(t, http.MethodGet, "/api/search?q=alien", nil)
	expectStatus(t, resp, http.StatusServiceUnavailable)
}

func TestSearchCategoryValidation(t *testing.T) {
	h := newHarness(t, &stubCatalog{})
	resp := h.do(t, http.MethodPost, "/api/search/category", map[string]string{"category": "person"})
	expectStatus(t, resp, http.StatusOK)
	if got := decode[api.SearchResults](t, resp); got.Category != "person" {
		t.Fatalf("unexpected category %q", got.Category)
	}
	resp = h.do(t, http.MethodPost, "/api/search/category", map[string]string{"category": "books"})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestMoveItem(t *testing.T) {
	h := newHarness(t, nil)
	ref := h.seed(t, "Heat")

	resp := h.do(t, http.MethodPost, "/api/items/move", api.MoveRequest{Ref: ref, To: "S"})
	expectStatus(t, resp, http.StatusOK)
	board := decode[api.Board](t, resp)
	if len(board.Tiers[0].Cards) != 1 || board.Tiers[0].Cards[0].Title != "Heat" {
		t.Fatalf("expected Heat in S tier, got %+v", board.Tiers[0])
	}

	resp = h.do(t, http.MethodPost, "/api/items/move", api.MoveRequest{Ref: ref, To: "Z"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = h.do(t, http.MethodPost, "/api/items/move", api.MoveRequest{Ref: 999, To: "A"})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestDragGesture(t *testing.T) {
	h := newHarness(t, nil)
	ref := h.seed(t, "Jaws")

	expectStatus(t, h.do(t, http.MethodPut, "/api/drag/surfaces", map[string]any{
		"surfaces": []api.Surface{{Collection: "great", X: 0, Y: 100, W: 800, H: 100}},
	}), http.StatusNoContent)

	expectStatus(t, h.do(t, http.MethodPost, "/api/drag/start", api.DragRequest{Ref: ref}), http.StatusOK)
	resp := h.do(t, http.MethodPost, "/api/drag/start", api.DragRequest{Ref: ref})
	expectStatus(t, resp, http.StatusConflict)

	x, y := 10, 150
	resp = h.do(t, http.MethodPost, "/api/drag/hover", api.DragRequest{X: &x, Y: &y})
	expectStatus(t, resp, http.StatusOK)
	if got := decode[api.DragResponse](t, resp); got.Highlight != "great" {
		t.Fatalf("expected great highlighted, got %+v", got)
	}

	resp = h.do(t, http.MethodPost, "/api/drag/drop", api.DragRequest{X: &x, Y: &y})
	expectStatus(t, resp, http.StatusOK)
	out := decode[api.DragResponse](t, resp)
	if out.State != "dropped" || out.Board == nil || len(out.Board.Tiers[1].Cards) != 1 {
		t.Fatalf("unexpected drop response: %+v", out)
	}

	resp = h.do(t, http.MethodPost, "/api/drag/drop", api.DragRequest{Collection: "S"})
	expectStatus(t, resp, http.StatusConflict)
}

func TestDropOutsideSurfacesCancels(t *testing.T) {
	h := newHarness(t, nil)
	ref := h.seed(t, "Up")
	expectStatus(t, h.do(t, http.MethodPost, "/api/drag/start", api.DragRequest{Ref: ref}), http.StatusOK)

	x, y := 5000, 5000
	resp := h.do(t, http.MethodPost, "/api/drag/drop", api.DragRequest{X: &x, Y: &y})
	expectStatus(t, resp, http.StatusOK)
	out := decode[api.DragResponse](t, resp)
	if out.State != "cancelled" || len(out.Board.Pending.Cards) != 1 {
		t.Fatalf("expected cancelled drop with card still pending, got %+v", out)
	}
}

func TestEditModeClickRemoves(t *testing.T) {
	h := newHarness(t, nil)
	ref := h.seed(t, "Rocky")

	resp := h.do(t, http.MethodPost, "/api/edit-mode", map[string]bool{"enabled": true})
	expectStatus(t, resp, http.StatusOK)
	if !decode[api.Board](t, resp).EditMode {
		t.Fatal("expected edit mode enabled")
	}

	resp = h.do(t, http.MethodPost, "/api/drag/start", api.DragRequest{Ref: ref})
	expectStatus(t, resp, http.StatusConflict)

	resp = h.do(t, http.MethodPost, "/api/items/1/click", nil)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[api.Board](t, resp); got.Total != 0 {
		t.Fatalf("expected card removed, got total %d", got.Total)
	}

	resp = h.do(t, http.MethodPost, "/api/edit-mode", nil)
	expectStatus(t, resp, http.StatusOK)
	if decode[api.Board](t, resp).EditMode {
		t.Fatal("expected toggle to disable edit mode")
	}
}

func TestRemoveItem(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "Alien")

	resp := h.do(t, http.MethodDelete, "/api/items/1", nil)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[api.Board](t, resp); got.Total != 0 || got.Stale {
		t.Fatalf("unexpected board after removal: total=%d stale=%v", got.Total, got.Stale)
	}

	// A repeated removal from a racing client is quietly ignored.
	resp = h.do(t, http.MethodDelete, "/api/items/1", nil)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[api.Board](t, resp); got.Total != 0 || !got.Stale {
		t.Fatalf("expected stale no-op, got total=%d stale=%v", got.Total, got.Stale)
	}
	expectStatus(t, h.do(t, http.MethodDelete, "/api/items/abc", nil), http.StatusBadRequest)
}

func TestExportClearImport(t *testing.T) {
	h := newHarness(t, nil)
	ref := h.seed(t, "Amelie")
	expectStatus(t, h.do(t, http.MethodPost, "/api/items/move", api.MoveRequest{Ref: ref, To: "A"}), http.StatusOK)

	resp := h.do(t, http.MethodGet, "/api/export", nil)
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "media-ranker-export.json") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	exported, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	resp = h.do(t, http.MethodPost, "/api/clear", nil)
	expectStatus(t, resp, http.StatusOK)
	if decode[api.Board](t, resp).Total != 0 {
		t.Fatal("expected empty board after clear")
	}

	resp = h.do(t, http.MethodPost, "/api/import", exported)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[api.ImportResponse](t, resp); got.Loaded != 1 {
		t.Fatalf("unexpected import report %+v", got)
	}
	board := decode[api.Board](t, h.do(t, http.MethodGet, "/api/board", nil))
	if len(board.Tiers[1].Cards) != 1 || board.Tiers[1].Cards[0].Title != "Amelie" {
		t.Fatalf("expected Amelie back in A tier, got %+v", board.Tiers[1])
	}

	expectStatus(t, h.do(t, http.MethodPost, "/api/import", []byte(`{"pendingItems":[]}`)), http.StatusBadRequest)
	expectStatus(t, h.do(t, http.MethodPost, "/api/import", []byte(`garbage`)), http.StatusBadRequest)
	if h.session.View().Total != 1 {
		t.Fatal("invalid import changed the board")
	}
}

func TestTheme(t *testing.T) {
	h := newHarness(t, nil)
	got := decode[map[string]string](t, h.do(t, http.MethodGet, "/api/theme", nil))
	if got["theme"] != "dark" {
		t.Fatalf("default theme = %q", got["theme"])
	}
	expectStatus(t, h.do(t, http.MethodPut, "/api/theme", map[string]string{"theme": "light"}), http.StatusOK)
	got = decode[map[string]string](t, h.do(t, http.MethodGet, "/api/theme", nil))
	if got["theme"] != "light" {
		t.Fatalf("theme = %q", got["theme"])
	}
	expectStatus(t, h.do(t, http.MethodPut, "/api/theme", map[string]string{"theme": "sepia"}), http.StatusBadRequest)
}

func TestStartAndStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	kv := testsupport.MustOpenStore(t, cfg)
	sess, err := session.Open(context.Background(), storage.NewBoardStore(kv, logging.NewNop()), nil, logging.NewNop())
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	server := api.New(api.Deps{Session: sess}, api.Options{Bind: "127.0.0.1:0"}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + server.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	server.Stop()
	if _, err := http.Get("http://" + server.Addr() + "/health"); err == nil {
		t.Fatal("expected server to be stopped")
	}
}
