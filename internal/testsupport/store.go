package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"paperweights/internal/store"
)

// MustOpenStore opens an episode ledger for tests and registers cleanup.
func MustOpenStore(t testing.TB) *store.Store {
	t.Helper()

	ledger, err := store.Open(filepath.Join(t.TempDir(), "episodes.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		ledger.Close()
	})
	return ledger
}

// SeedEpisode upserts an episode row for tests using the provided ledger.
func SeedEpisode(t testing.TB, ledger *store.Store, ep store.Episode) {
	t.Helper()

	if err := ledger.Upsert(context.Background(), ep); err != nil {
		t.Fatalf("ledger.Upsert: %v", err)
	}
}
