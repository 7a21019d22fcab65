// Package testutil provides shared test helpers for setting up stores and state.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically cleaned up.
func TestStore(t *testing.T) *store.DB {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestState creates a state container hydrated from st.
func TestState(t *testing.T, st store.Store) *appstate.Container {
	t.Helper()
	state := appstate.New()
	if err := state.Hydrate(st); err != nil {
		t.Fatal(err)
	}
	return state
}

// TestLogger returns a JSON logger that discards output.
func TestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
