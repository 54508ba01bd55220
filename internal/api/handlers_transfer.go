package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"mediaranker/internal/notices"
	"mediaranker/internal/storage"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.session.Export(time.Now())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opts.ExportFileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport replaces the board with the uploaded file. The page asks the
// user to confirm before calling it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	report, err := s.session.Import(r.Context(), data)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ImportResponse{
		Loaded:         report.Loaded,
		DroppedTiers:   report.DroppedTiers,
		DroppedNoImage: report.DroppedNoImage,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Clear(r.Context()); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.board())
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.session.Theme(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})
}

func (s *Server) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	theme, err := storage.ParseTheme(req.Theme)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.session.SetTheme(r.Context(), theme); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"theme": string(theme)})
}

// handleNotices drains queued notices.
func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	list := []notices.Notice{}
	if s.notices != nil {
		list = append(list, s.notices.Drain()...)
	}
	respondJSON(w, http.StatusOK, map[string]any{"notices": list})
}
