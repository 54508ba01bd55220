package api

import (
	"context"
	"net/http"
	"strings"

	"mediaranker/internal/catalog"
)

func (s *Server) searchReady(w http.ResponseWriter) bool {
	if s.search == nil {
		respondError(w, http.StatusServiceUnavailable, "search is not configured (tmdb.api_key missing)")
		return false
	}
	return true
}

// handleGetSearch returns the current results, or runs a search immediately
// when q is given.
func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	if !s.searchReady(w) {
		return
	}
	query := r.URL.Query()
	if raw := query.Get("category"); raw != "" {
		category, err := catalog.ParseCategory(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if category != s.search.Category() {
			s.search.SetCategory(category)
		}
	}
	if q, ok := query["q"]; ok {
		res, err := s.search.Search(r.Context(), strings.Join(q, " "))
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, FromResults(res, s.opts.Images))
		return
	}
	respondJSON(w, http.StatusOK, FromResults(s.search.Current(), s.opts.Images))
}

// handleSearchInput feeds one keystroke-level update of the search box. The
// search runs after the debounce period; results arrive over the websocket.
func (s *Server) handleSearchInput(w http.ResponseWriter, r *http.Request) {
	if !s.searchReady(w) {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// The debounced lookup outlives this request.
	s.search.Input(context.WithoutCancel(r.Context()), req.Query)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSearchCategory(w http.ResponseWriter, r *http.Request) {
	if !s.searchReady(w) {
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	category, err := catalog.ParseCategory(req.Category)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.search.SetCategory(category)
	respondJSON(w, http.StatusOK, FromResults(s.search.Current(), s.opts.Images))
}

func (s *Server) handleSearchSelect(w http.ResponseWriter, r *http.Request) {
	if !s.searchReady(w) {
		return
	}
	var req struct {
		Index *int `json:"index"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Index == nil {
		respondError(w, http.StatusBadRequest, "index is required")
		return
	}
	sel, err := s.search.Select(r.Context(), *req.Index)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, FromSelection(sel, s.opts.Images))
}
