package ports

import (
	"context"

	"github.com/alpha-nc/intake/pkg/session"
)

// SnapshotStore persists the single session snapshot. Implementations own
// exactly one slot keyed by a fixed, versioned storage key; Save always
// overwrites it.
type SnapshotStore interface {
	// Save persists the snapshot, replacing any previous one.
	Save(ctx context.Context, snap *session.Snapshot) error

	// Load retrieves the persisted snapshot.
	// Returns session.ErrSnapshotNotFound when nothing is stored or the
	// stored content cannot be decoded.
	Load(ctx context.Context) (*session.Snapshot, error)

	// Clear removes the snapshot. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
