// Package storetest provides a reusable contract test that every
// SnapshotStore adapter must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpha-nc/intake/pkg/ports"
	"github.com/alpha-nc/intake/pkg/session"
)

// Run exercises the SnapshotStore contract against the given store. The
// store must start empty.
func Run(t *testing.T, store ports.SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("load on empty store", func(t *testing.T) {
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, session.ErrSnapshotNotFound)
	})

	t.Run("clear on empty store", func(t *testing.T) {
		assert.NoError(t, store.Clear(ctx))
	})

	snap := &session.Snapshot{
		SchemaVersion: "v1",
		StepIndex:     3,
		Answers: map[string]any{
			"company_name": "Acme",
			"team_size":    float64(12),
			"channels":     []string{"seo", "ads"},
			"gdpr_consent": true,
		},
		Tracking: &session.Tracking{
			SessionID: "11111111-2222-4333-8444-555555555555",
			Tag:       "storetest",
			Params:    map[string]string{"utm_source": "newsletter"},
		},
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("save and load round-trip", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, snap))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, snap.SchemaVersion, got.SchemaVersion)
		assert.Equal(t, snap.StepIndex, got.StepIndex)
		assert.Equal(t, "Acme", got.Answers["company_name"])
		assert.Equal(t, true, got.Answers["gdpr_consent"])
		require.NotNil(t, got.Tracking)
		assert.Equal(t, snap.Tracking.SessionID, got.Tracking.SessionID)
		assert.True(t, snap.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("save overwrites", func(t *testing.T) {
		next := *snap
		next.StepIndex = 5
		require.NoError(t, store.Save(ctx, &next))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, got.StepIndex)
	})

	t.Run("clear removes snapshot", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, session.ErrSnapshotNotFound)
	})
}
