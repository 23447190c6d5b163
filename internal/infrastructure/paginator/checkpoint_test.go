package paginator

import (
	"path/filepath"
	"testing"
	"time"

	"EdgarScanner/internal/domain"
)

func TestFileCheckpointStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewFileCheckpointStore(path)

	// Missing file yields a zero checkpoint, not an error.
	ckpt, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if ckpt.Status != "" {
		t.Fatalf("expected zero checkpoint, got %+v", ckpt)
	}

	win := domain.TimeWindow{
		Start: time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC),
	}
	saved := domain.NewCheckpoint(win, 700, "2026-08-26T04:00:00Z")
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != saved {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, saved)
	}
	if !loaded.Matches(win) {
		t.Fatal("loaded checkpoint does not match its window")
	}
}
