package confwatch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func parseLevel(path string) (slog.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return slog.LevelInfo, err
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText(data); err != nil {
		return slog.LevelInfo, err
	}
	return lvl, nil
}

func TestWatchAppliesLevelChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("INFO"), 0o644); err != nil {
		t.Fatal(err)
	}

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, path, &level, logger, parseLevel)
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("DEBUG"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for level.Level() != slog.LevelDebug {
		select {
		case <-deadline:
			t.Fatalf("level = %v, want DEBUG", level.Level())
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("INFO"), 0o644); err != nil {
		t.Fatal(err)
	}

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = Watch(ctx, path, &level, logger, parseLevel) }()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("DEBUG"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if level.Level() != slog.LevelInfo {
		t.Fatalf("level = %v, want INFO untouched", level.Level())
	}
}
