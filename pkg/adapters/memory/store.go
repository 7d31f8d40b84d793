// Package memory provides an in-memory SnapshotStore, used by tests and by
// the HTTP adapter's default configuration.
package memory

import (
	"context"
	"sync"

	"github.com/alpha-nc/intake/pkg/session"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	snap *session.Snapshot
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Save keeps a deep copy so callers cannot mutate the stored snapshot
// through retained pointers.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) error {
	cp := copySnapshot(snap)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = cp
	return nil
}

// Load returns a copy of the stored snapshot.
func (s *Store) Load(ctx context.Context) (*session.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, session.ErrSnapshotNotFound
	}
	return copySnapshot(s.snap), nil
}

// Clear drops the snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}

func copySnapshot(snap *session.Snapshot) *session.Snapshot {
	cp := *snap
	cp.Answers = make(map[string]any, len(snap.Answers))
	for k, v := range snap.Answers {
		if slice, ok := v.([]string); ok {
			dup := make([]string, len(slice))
			copy(dup, slice)
			cp.Answers[k] = dup
			continue
		}
		cp.Answers[k] = v
	}
	cp.Tracking = snap.Tracking.Clone()
	return &cp
}
