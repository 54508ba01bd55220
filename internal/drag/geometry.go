package drag

import "mediaranker/internal/board"

// Point is a pointer position.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned box. Max edges are exclusive.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return r.W > 0 && r.H > 0 &&
		p.X >= r.X && p.X < r.X+r.W &&
		p.Y >= r.Y && p.Y < r.Y+r.H
}

// Surface is a drop zone bound to a collection.
type Surface struct {
	Collection board.CollectionID
	Rect       Rect
}
