package api

import (
	"mediaranker/internal/board"
	"mediaranker/internal/catalog"
	"mediaranker/internal/search"
	"mediaranker/internal/session"
)

// Images resolves poster paths to absolute URLs.
type Images struct {
	BaseURL     string
	Placeholder string
}

// URL returns the poster URL for path, or the placeholder.
func (i Images) URL(path string) string {
	return catalog.ImageURL(i.BaseURL, path, i.Placeholder)
}

// FromView converts a session view.
func FromView(v session.View, images Images) Board {
	out := Board{
		Pending:   fromCollection(v.Pending, images),
		EditMode:  v.EditMode,
		Dragging:  uint64(v.Dragging),
		Highlight: string(v.Highlight),
		Total:     v.Total,
		Tiers:     make([]Collection, 0, len(v.Tiers)),
	}
	for _, tier := range v.Tiers {
		out.Tiers = append(out.Tiers, fromCollection(tier, images))
	}
	return out
}

func fromCollection(c session.CollectionView, images Images) Collection {
	cards := make([]Card, 0, len(c.Cards))
	for _, card := range c.Cards {
		cards = append(cards, Card{
			Ref:       uint64(card.Ref),
			ID:        card.ID,
			Title:     card.Title,
			Year:      card.Year,
			Type:      card.Kind,
			Label:     card.Label,
			Poster:    card.Poster,
			PosterURL: images.URL(card.Poster),
		})
	}
	return Collection{ID: string(c.ID), Letter: c.Letter, Label: c.Label, Cards: cards}
}

// FromResults converts the search result list.
func FromResults(r search.Results, images Images) SearchResults {
	out := SearchResults{
		Seq:        r.Seq,
		Query:      r.Query,
		Category:   string(r.Category),
		Loading:    r.Loading,
		Failed:     r.Failed,
		Candidates: make([]SearchCandidate, 0, len(r.Candidates)),
	}
	for i, c := range r.Candidates {
		out.Candidates = append(out.Candidates, SearchCandidate{
			Index:     i,
			ID:        c.Item.ID,
			Title:     c.Item.Title,
			Year:      c.Item.Year,
			Type:      string(c.Item.Kind),
			Label:     c.Item.Label(),
			PosterURL: images.URL(c.Item.Poster),
		})
	}
	return out
}

// FromSelection converts what a search selection added.
func FromSelection(sel search.Selection, images Images) SelectionResponse {
	out := SelectionResponse{Added: make([]Card, 0, len(sel.Added)), Skipped: sel.Skipped}
	for _, res := range sel.Added {
		out.Added = append(out.Added, fromResult(res, images))
	}
	return out
}

func fromResult(res board.Result, images Images) Card {
	return Card{
		Ref:       uint64(res.Ref),
		ID:        res.Item.ID,
		Title:     res.Item.Title,
		Year:      res.Item.Year,
		Type:      string(res.Item.Kind),
		Label:     res.Item.Label(),
		Poster:    res.Item.Poster,
		PosterURL: images.URL(res.Item.Poster),
	}
}
