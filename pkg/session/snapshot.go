package session

import (
	"errors"
	"time"
)

// DefaultTTL is the retention window for persisted snapshots. Anything
// older is treated as absent and cleared on load.
const DefaultTTL = 30 * 24 * time.Hour

// ErrSnapshotNotFound is returned by snapshot stores when nothing is
// persisted under the session key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is the persisted form of a session: enough to resume where the
// user left off, and enough metadata to know when not to.
type Snapshot struct {
	SchemaVersion  string         `json:"schemaVersion"`
	StepIndex      int            `json:"stepIndex"`
	Answers        map[string]any `json:"answers"`
	Tracking       *Tracking      `json:"tracking,omitempty"`
	RateLimitUntil time.Time      `json:"rateLimitUntil,omitzero"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Expired reports whether the snapshot is older than the retention window.
// A zero UpdatedAt is treated as not expired: an ambiguous timestamp is
// never grounds for silently discarding a user's answers.
func (s *Snapshot) Expired(now time.Time, ttl time.Duration) bool {
	if s.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}

// Stale reports whether the snapshot must be discarded on load, either
// because it outlived the TTL or because the live schema moved on.
func (s *Snapshot) Stale(now time.Time, ttl time.Duration, schemaVersion string) bool {
	if s.Expired(now, ttl) {
		return true
	}
	return s.SchemaVersion != "" && s.SchemaVersion != schemaVersion
}
