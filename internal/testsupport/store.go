package testsupport

import (
	"testing"

	"stacks/internal/config"
	"stacks/internal/ingest"
)

// MustOpenStore opens an ingest.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *ingest.Store {
	t.Helper()

	store, err := ingest.Open(cfg)
	if err != nil {
		t.Fatalf("ingest.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
