package seen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.json")

	s := Load(path)
	if s.Len() != 0 {
		t.Fatalf("fresh store has %d keys", s.Len())
	}

	s.Add("aaa")
	s.Add("bbb")
	s.Add("aaa")
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded := Load(path)
	if !reloaded.Contains("aaa") || !reloaded.Contains("bbb") {
		t.Fatal("keys lost across reload")
	}
	if reloaded.Contains("ccc") {
		t.Fatal("phantom key after reload")
	}
}

func TestLoadToleratesCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := Load(path)
	if s.Len() != 0 {
		t.Fatalf("corrupt file should load empty, got %d keys", s.Len())
	}

	// The store remains writable after a corrupt load.
	s.Add("key")
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !Load(path).Contains("key") {
		t.Fatal("flush after corrupt load did not persist")
	}
}
