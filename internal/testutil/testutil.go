// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/lfroes/notas/internal/models"
	"github.com/lfroes/notas/internal/notestore"
	"github.com/lfroes/notas/internal/storage"
)

// TestStore creates a store persisting to a temp snapshot file that is
// cleaned up with the test. Timestamps come from a deterministic counter.
func TestStore(t *testing.T) *notestore.Store {
	t.Helper()
	provider, err := storage.NewFile(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	var tick models.Millis
	store, err := notestore.New(provider,
		notestore.WithClock(func() models.Millis {
			tick++
			return 1700000000000 + tick
		}),
	)
	if err != nil {
		t.Fatalf("notestore.New: %v", err)
	}
	return store
}
