package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"mediaranker/internal/catalog"
)

var (
	// ErrNotPlaceable marks items without a poster or portrait.
	ErrNotPlaceable = errors.New("item not placeable")
	// ErrKindMismatch marks a person record seen during a media search.
	ErrKindMismatch = errors.New("record kind does not match search category")
)

// NotPlaceableError names the title that was skipped.
type NotPlaceableError struct {
	Title string
}

func (e *NotPlaceableError) Error() string {
	return fmt.Sprintf("unable to add %q (missing image)", e.Title)
}

func (e *NotPlaceableError) Is(target error) bool {
	return target == ErrNotPlaceable
}

// Notice is the user-facing message for the skip.
func (e *NotPlaceableError) Notice() string {
	return fmt.Sprintf("Unable to add %q (missing image)", e.Title)
}

// Normalize converts rec into a placeable Item for the given search category.
func Normalize(rec catalog.Record, category catalog.Category) (Item, error) {
	item, err := Preview(rec, category)
	if err != nil {
		return Item{}, err
	}
	if !item.Placeable() {
		return Item{}, &NotPlaceableError{Title: item.Title}
	}
	return item, nil
}

// Preview converts rec for display without the placeability check. Search
// results are shown even when they cannot be added.
func Preview(rec catalog.Record, category catalog.Category) (Item, error) {
	if rec.IsPerson() || category == catalog.CategoryPerson {
		if category != catalog.CategoryPerson {
			return Item{}, fmt.Errorf("normalize %q: %w", rec.DisplayName(), ErrKindMismatch)
		}
		return previewPerson(rec), nil
	}
	return Item{
		ID:     formatID(rec.ID),
		Title:  CleanTitle(rec.DisplayName()),
		Year:   firstYear(rec.ReleaseDate, rec.FirstAirDate),
		Poster: strings.TrimSpace(rec.PosterPath),
		Kind:   mediaKind(rec),
	}, nil
}

func previewPerson(rec catalog.Record) Item {
	item := Item{
		ID:     formatID(rec.ID),
		Title:  CleanTitle(rec.Name),
		Poster: strings.TrimSpace(rec.ProfilePath),
		Kind:   KindPerson,
	}
	if len(rec.KnownFor) > 0 {
		item.Year = firstYear(rec.KnownFor[0].ReleaseDate, rec.KnownFor[0].FirstAirDate)
	}
	return item
}

func mediaKind(rec catalog.Record) Kind {
	switch strings.ToLower(strings.TrimSpace(rec.MediaType)) {
	case "movie":
		return KindMovie
	case "tv":
		return KindTV
	}
	if strings.TrimSpace(rec.FirstAirDate) != "" {
		return KindTV
	}
	return KindMovie
}

// CleanTitle trims, NFC-normalizes and substitutes the placeholder for blanks.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(norm.NFC.String(raw))
	if title == "" {
		return UnknownTitle
	}
	return title
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

var yearLayouts = []string{"2006-01-02", "2006-01", "2006", time.RFC3339}

func firstYear(dates ...string) string {
	for _, date := range dates {
		if date = strings.TrimSpace(date); date != "" {
			return ExtractYear(date)
		}
	}
	return ""
}

// ExtractYear returns the four-digit year of a date-like string, or "".
func ExtractYear(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range yearLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return fmt.Sprintf("%04d", t.Year())
		}
	}
	return ""
}
