package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediaranker/internal/board"
	"mediaranker/internal/drag"
	"mediaranker/internal/session"
)

func (s *Server) board() Board {
	return FromView(s.session.View(), s.opts.Images)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.board())
}

func (s *Server) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Ref == 0 || req.To == "" {
		respondError(w, http.StatusBadRequest, "ref and to are required")
		return
	}
	to, err := board.ParseCollection(req.To)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	index := board.AppendIndex
	if req.Index != nil && *req.Index >= 0 {
		index = *req.Index
	}
	if _, err := s.session.Move(r.Context(), board.Ref(req.Ref), to, index); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.board())
}

func refParam(r *http.Request) (board.Ref, error) {
	ref, err := session.ParseRef(chi.URLParam(r, "ref"))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return ref, nil
}

var errBadRequest = errors.New("bad request")

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ref, err := refParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.session.Remove(r.Context(), ref)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	b := s.board()
	b.Stale = res.Stale
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleClickItem(w http.ResponseWriter, r *http.Request) {
	ref, err := refParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.session.Click(r.Context(), ref); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.board())
}

func (s *Server) handleEditMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Enabled == nil {
		s.session.ToggleEditMode()
	} else {
		s.session.SetEditMode(*req.Enabled)
	}
	respondJSON(w, http.StatusOK, s.board())
}

func (s *Server) handleSetSurfaces(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Surfaces []Surface `json:"surfaces"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	surfaces := make([]drag.Surface, 0, len(req.Surfaces))
	for _, sf := range req.Surfaces {
		id, err := board.ParseCollection(sf.Collection)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		surfaces = append(surfaces, drag.Surface{Collection: id, Rect: drag.Rect{X: sf.X, Y: sf.Y, W: sf.W, H: sf.H}})
	}
	s.session.SetSurfaces(surfaces)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if err := decodeJSON(r, &req); err != nil || req.Ref == 0 {
		respondError(w, http.StatusBadRequest, "ref is required")
		return
	}
	if err := s.session.BeginDrag(board.Ref(req.Ref)); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, DragResponse{State: string(drag.Dragging)})
}

func (s *Server) handleDragHover(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var (
		highlight board.CollectionID
		ok        bool
	)
	switch {
	case req.X != nil && req.Y != nil:
		highlight, ok = s.session.Hover(drag.Point{X: *req.X, Y: *req.Y})
	case req.Collection != "":
		id, err := board.ParseCollection(req.Collection)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		highlight, ok = s.session.HoverOn(id)
	default:
		respondError(w, http.StatusBadRequest, "collection or x/y is required")
		return
	}
	resp := DragResponse{State: string(s.session.DragState())}
	if ok {
		resp.Highlight = string(highlight)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDragDrop(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var (
		out drag.Outcome
		err error
	)
	switch {
	case req.X != nil && req.Y != nil:
		out, err = s.session.Drop(r.Context(), drag.Point{X: *req.X, Y: *req.Y})
	case req.Collection != "":
		// Unknown targets cancel the gesture rather than failing the request.
		target, perr := board.ParseCollection(req.Collection)
		if perr != nil {
			target = board.CollectionID(req.Collection)
		}
		out, err = s.session.DropOn(r.Context(), target)
	default:
		respondError(w, http.StatusBadRequest, "collection or x/y is required")
		return
	}
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	b := s.board()
	respondJSON(w, http.StatusOK, DragResponse{State: string(out.State), Reason: out.Reason, Board: &b})
}

func (s *Server) handleDragCancel(w http.ResponseWriter, r *http.Request) {
	out := s.session.CancelDrag()
	respondJSON(w, http.StatusOK, DragResponse{State: string(out.State), Reason: out.Reason})
}
