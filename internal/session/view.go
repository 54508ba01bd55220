package session

import (
	"mediaranker/internal/board"
)

// CardView is one card as surfaces render it.
type CardView struct {
	Ref    board.Ref `json:"ref"`
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Year   string    `json:"year"`
	Poster string    `json:"poster"`
	Kind   string    `json:"type"`
	Label  string    `json:"label"`
}

// CollectionView is Pending or a tier with its cards.
type CollectionView struct {
	ID     board.CollectionID `json:"id"`
	Letter string             `json:"letter,omitempty"`
	Label  string             `json:"label"`
	Cards  []CardView         `json:"cards"`
}

// View is a render-ready copy of the session state.
type View struct {
	Tiers     []CollectionView   `json:"tiers"`
	Pending   CollectionView     `json:"pending"`
	EditMode  bool               `json:"editMode"`
	Dragging  board.Ref          `json:"dragging,omitempty"`
	Highlight board.CollectionID `json:"highlight,omitempty"`
	Total     int                `json:"total"`
}

// Collection returns the view of id.
func (v View) Collection(id board.CollectionID) CollectionView {
	if id == board.Pending {
		return v.Pending
	}
	for _, tier := range v.Tiers {
		if tier.ID == id {
			return tier
		}
	}
	return CollectionView{ID: id}
}

func collectionView(b *board.Board, id board.CollectionID) CollectionView {
	entries := b.Entries(id)
	cards := make([]CardView, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, CardView{
			Ref:    e.Ref,
			ID:     e.Item.ID,
			Title:  e.Item.Title,
			Year:   e.Item.Year,
			Poster: e.Item.Poster,
			Kind:   string(e.Item.Kind),
			Label:  e.Item.Label(),
		})
	}
	return CollectionView{ID: id, Letter: id.Letter(), Label: id.Label(), Cards: cards}
}

func (s *Session) viewLocked() View {
	v := View{
		Pending:  collectionView(s.board, board.Pending),
		EditMode: s.drag.EditMode(),
		Total:    s.board.Len(),
	}
	for _, tier := range board.Tiers() {
		v.Tiers = append(v.Tiers, collectionView(s.board, tier))
	}
	if ref, ok := s.drag.Dragged(); ok {
		v.Dragging = ref
	}
	if id, ok := s.drag.Highlighted(); ok {
		v.Highlight = id
	}
	return v
}
