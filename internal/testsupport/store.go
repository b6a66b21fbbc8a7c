package testsupport

import (
	"context"
	"testing"

	"seminar/internal/config"
	"seminar/internal/records"
	"seminar/internal/store"
)

// MustOpenStore opens the record store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustOpenCatalog opens a record catalog backed by a per-test store.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *records.Catalog {
	t.Helper()
	return records.NewCatalog(MustOpenStore(t, cfg))
}

// NewDiscussion creates a discussion row for tests using the provided catalog.
func NewDiscussion(t testing.TB, catalog *records.Catalog, recordingName, date, section, course string) *records.Discussion {
	t.Helper()

	disc, err := catalog.NewDiscussion(context.Background(), recordingName, recordingName, date, section, course)
	if err != nil {
		t.Fatalf("catalog.NewDiscussion: %v", err)
	}
	return disc
}
