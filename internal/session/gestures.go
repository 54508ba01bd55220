package session

import (
	"context"

	"mediaranker/internal/board"
	"mediaranker/internal/drag"
)

// SetSurfaces registers drop zones for pointer-driven surfaces.
func (s *Session) SetSurfaces(surfaces []drag.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.SetSurfaces(surfaces)
}

// BeginDrag starts dragging ref.
func (s *Session) BeginDrag(ref board.Ref) error {
	s.mu.Lock()
	err := s.drag.Begin(ref)
	view := s.viewLocked()
	s.mu.Unlock()
	if err == nil {
		s.publish("drag", view)
	}
	return err
}

// Hover moves the pointer during a drag.
func (s *Session) Hover(p drag.Point) (board.CollectionID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Hover(p)
}

// HoverOn highlights a collection during a keyboard drag.
func (s *Session) HoverOn(id board.CollectionID) (board.CollectionID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.HoverOn(id)
}

// Drop releases the drag at p.
func (s *Session) Drop(ctx context.Context, p drag.Point) (drag.Outcome, error) {
	s.mu.Lock()
	out, err := s.drag.Drop(ctx, p)
	view := s.viewLocked()
	s.mu.Unlock()
	s.publish("drop", view)
	return out, err
}

// DropOn releases the drag onto a collection.
func (s *Session) DropOn(ctx context.Context, id board.CollectionID) (drag.Outcome, error) {
	s.mu.Lock()
	out, err := s.drag.DropOn(ctx, id)
	view := s.viewLocked()
	s.mu.Unlock()
	s.publish("drop", view)
	return out, err
}

// CancelDrag abandons the active drag.
func (s *Session) CancelDrag() drag.Outcome {
	s.mu.Lock()
	out := s.drag.Cancel()
	view := s.viewLocked()
	s.mu.Unlock()
	if out.State == drag.Cancelled {
		s.publish("drop", view)
	}
	return out
}

// DragState reports the gesture state.
func (s *Session) DragState() drag.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.State()
}

// SetEditMode switches edit mode.
func (s *Session) SetEditMode(on bool) bool {
	s.mu.Lock()
	s.drag.SetEditMode(on)
	view := s.viewLocked()
	s.mu.Unlock()
	s.publish("edit_mode", view)
	return view.EditMode
}

// ToggleEditMode flips edit mode and returns the new value.
func (s *Session) ToggleEditMode() bool {
	s.mu.Lock()
	on := s.drag.ToggleEditMode()
	view := s.viewLocked()
	s.mu.Unlock()
	s.publish("edit_mode", view)
	return on
}

// EditMode reports whether clicks remove cards.
func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.EditMode()
}

// Click handles a card click; in edit mode the card is removed.
func (s *Session) Click(ctx context.Context, ref board.Ref) (board.Result, error) {
	s.mu.Lock()
	res, err := s.drag.Click(ctx, ref)
	view := s.viewLocked()
	s.mu.Unlock()
	if res.Changed {
		s.publish("remove", view)
	}
	return res, err
}
