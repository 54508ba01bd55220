package media

import (
	"strings"
)

// Kind classifies an item for display.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindTV     Kind = "tv"
	KindPerson Kind = "person"
)

// ParseKind maps stored type strings to a Kind, defaulting to movie.
func ParseKind(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tv", "show", "series":
		return KindTV
	case "person":
		return KindPerson
	default:
		return KindMovie
	}
}

// DisplayName is the human label used in result metadata.
func (k Kind) DisplayName() string {
	switch k {
	case KindTV:
		return "TV Show"
	case KindPerson:
		return "Person"
	default:
		return "Movie"
	}
}

// UnknownTitle replaces missing titles.
const UnknownTitle = "Unknown Title"

// Item is a single ranked entity.
type Item struct {
	// ID is the catalog identifier. It is a hint only; the board never uses
	// it as a key.
	ID     string
	Title  string
	Year   string
	Poster string
	Kind   Kind
}

// Placeable reports whether the item has an image reference.
func (i Item) Placeable() bool {
	return strings.TrimSpace(i.Poster) != ""
}

// Label renders the "2010 • Movie" metadata line.
func (i Item) Label() string {
	if i.Year == "" {
		return i.Kind.DisplayName()
	}
	return i.Year + " • " + i.Kind.DisplayName()
}
