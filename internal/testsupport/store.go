package testsupport

import (
	"context"
	"testing"

	"mediaranker/internal/config"
	"mediaranker/internal/logging"
	"mediaranker/internal/media"
	"mediaranker/internal/storage"
)

// MustOpenStore opens a storage.KV for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *storage.KV {
	t.Helper()

	store, err := storage.Open(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Movie builds a placeable movie item.
func Movie(id, title, year string) media.Item {
	return media.Item{ID: id, Title: title, Year: year, Poster: "/" + id + ".jpg", Kind: media.KindMovie}
}
