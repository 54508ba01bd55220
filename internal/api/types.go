package api

// Card is one placed item.
type Card struct {
	Ref       uint64 `json:"ref"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	Type      string `json:"type"`
	Label     string `json:"label"`
	Poster    string `json:"poster"`
	PosterURL string `json:"posterUrl"`
}

// Collection is Pending or one tier.
type Collection struct {
	ID     string `json:"id"`
	Letter string `json:"letter,omitempty"`
	Label  string `json:"label"`
	Cards  []Card `json:"cards"`
}

// Board is the full board as the page renders it.
type Board struct {
	Tiers     []Collection `json:"tiers"`
	Pending   Collection   `json:"pending"`
	EditMode  bool         `json:"editMode"`
	Dragging  uint64       `json:"dragging,omitempty"`
	Highlight string       `json:"highlight,omitempty"`
	Total     int          `json:"total"`
	// Stale is set when a removal named an item that was already gone.
	Stale bool `json:"stale,omitempty"`
}

// BoardChange is pushed to websocket clients after every change.
type BoardChange struct {
	Reason string `json:"reason"`
	Board  Board  `json:"board"`
}

// SearchCandidate is one row of the search result list.
type SearchCandidate struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	Type      string `json:"type"`
	Label     string `json:"label"`
	PosterURL string `json:"posterUrl"`
}

// SearchResults is the search box state.
type SearchResults struct {
	Seq        uint64            `json:"seq"`
	Query      string            `json:"query"`
	Category   string            `json:"category"`
	Loading    bool              `json:"loading"`
	Failed     bool              `json:"failed"`
	Candidates []SearchCandidate `json:"candidates"`
}

// SelectionResponse reports what a search selection added.
type SelectionResponse struct {
	Added   []Card `json:"added"`
	Skipped int    `json:"skipped"`
}

// MoveRequest moves a card to a collection. Index is 0-based; omitted or
// negative appends.
type MoveRequest struct {
	Ref   uint64 `json:"ref"`
	To    string `json:"to"`
	Index *int   `json:"index,omitempty"`
}

// DragRequest carries either a collection or a pointer position.
type DragRequest struct {
	Ref        uint64 `json:"ref,omitempty"`
	Collection string `json:"collection,omitempty"`
	X          *int   `json:"x,omitempty"`
	Y          *int   `json:"y,omitempty"`
}

// DragResponse reports the gesture state after a drag call.
type DragResponse struct {
	State     string `json:"state"`
	Highlight string `json:"highlight,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Board     *Board `json:"board,omitempty"`
}

// Surface is a drop zone rectangle in page coordinates.
type Surface struct {
	Collection string `json:"collection"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	W          int    `json:"w"`
	H          int    `json:"h"`
}

// ImportResponse summarises an import.
type ImportResponse struct {
	Loaded         int      `json:"loaded"`
	DroppedTiers   []string `json:"droppedTiers,omitempty"`
	DroppedNoImage int      `json:"droppedNoImage,omitempty"`
}
