// Package file persists the session snapshot as a JSON file, the local
// equivalent of browser storage for the terminal runner.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alpha-nc/intake/pkg/session"
)

// Store implements ports.SnapshotStore on the local filesystem. The file
// name embeds the form tag and a format version, so a format change is
// distinguishable from a merely stale session.
type Store struct {
	BasePath string
	Tag      string
}

// New creates a Store rooted at basePath. If basePath is empty, it
// defaults to ".intake".
func New(basePath, tag string) *Store {
	if basePath == "" {
		basePath = ".intake"
	}
	return &Store{BasePath: basePath, Tag: tag}
}

func (s *Store) path() string {
	return filepath.Join(s.BasePath, s.Tag+".v1.json")
}

// Save persists the snapshot atomically: write to a temp file in the same
// directory, fsync, then rename over the destination.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, "tmp-"+s.Tag+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path()); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

// Load reads the snapshot. Absence and corruption are both reported as
// session.ErrSnapshotNotFound: a malformed file must never surface as a
// user-visible error, it just means there is nothing to resume.
func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, session.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, session.ErrSnapshotNotFound
	}
	return &snap, nil
}

// Clear removes the snapshot file.
func (s *Store) Clear(ctx context.Context) error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}
