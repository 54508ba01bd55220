package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Category selects which kind of candidates a search should return.
type Category string

const (
	// CategoryMedia searches movies and TV shows.
	CategoryMedia Category = "movie"
	// CategoryPerson searches people (actors, directors).
	CategoryPerson Category = "person"
)

// ParseCategory accepts "movie", "media", "tv" or "person".
func ParseCategory(raw string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "movie", "movies", "media", "tv":
		return CategoryMedia, nil
	case "person", "people", "actor":
		return CategoryPerson, nil
	default:
		return "", fmt.Errorf("unknown search category %q", raw)
	}
}

func (c Category) String() string { return string(c) }

// Record is one raw search-result or credit entry.
type Record struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title,omitempty"`
	Name               string   `json:"name,omitempty"`
	ReleaseDate        string   `json:"release_date,omitempty"`
	FirstAirDate       string   `json:"first_air_date,omitempty"`
	MediaType          string   `json:"media_type,omitempty"`
	PosterPath         string   `json:"poster_path,omitempty"`
	ProfilePath        string   `json:"profile_path,omitempty"`
	KnownForDepartment string   `json:"known_for_department,omitempty"`
	KnownFor           []Record `json:"known_for,omitempty"`
	Popularity         float64  `json:"popularity,omitempty"`
}

// IsPerson reports whether the record describes a person rather than a title.
func (r Record) IsPerson() bool {
	return r.MediaType == "person" || strings.TrimSpace(r.KnownForDepartment) != ""
}

// DisplayName returns title, then name, for presenting raw results.
func (r Record) DisplayName() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return strings.TrimSpace(r.Name)
}

// Catalog is the remote search service.
type Catalog interface {
	Search(ctx context.Context, query string, category Category) ([]Record, error)
	PersonCredits(ctx context.Context, personID int64) ([]Record, error)
}

// ImageURL joins a provider image path onto base, or returns placeholder when
// the path is empty.
func ImageURL(base, path, placeholder string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return placeholder
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
