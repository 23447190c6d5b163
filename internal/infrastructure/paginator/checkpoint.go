package paginator

import (
	"encoding/json"
	"fmt"
	"os"

	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/ports"
)

// FileCheckpointStore persists the pagination cursor as a flat JSON file,
// written atomically so a killed process never leaves a torn checkpoint.
type FileCheckpointStore struct {
	path string
}

var _ ports.CheckpointStore = (*FileCheckpointStore)(nil)

// NewFileCheckpointStore points the store at a file path; the file need not
// exist yet.
func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

// Load reads the last saved checkpoint. A missing file yields a zero
// checkpoint, not an error.
func (s *FileCheckpointStore) Load() (domain.Checkpoint, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Checkpoint{}, nil
		}
		return domain.Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}

	var ckpt domain.Checkpoint
	if err := json.Unmarshal(raw, &ckpt); err != nil {
		return domain.Checkpoint{}, fmt.Errorf("parse checkpoint: %w", err)
	}
	return ckpt, nil
}

// Save writes the checkpoint via a temp file and rename.
func (s *FileCheckpointStore) Save(ckpt domain.Checkpoint) error {
	raw, err := json.MarshalIndent(ckpt, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
