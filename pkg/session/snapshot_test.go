package session_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpha-nc/intake/pkg/session"
)

func TestSnapshot_Expired(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	fresh := &session.Snapshot{UpdatedAt: now.Add(-29 * 24 * time.Hour)}
	assert.False(t, fresh.Expired(now, session.DefaultTTL))

	old := &session.Snapshot{UpdatedAt: now.Add(-40 * 24 * time.Hour)}
	assert.True(t, old.Expired(now, session.DefaultTTL))

	// Missing timestamp fails open.
	assert.False(t, (&session.Snapshot{}).Expired(now, session.DefaultTTL))
}

func TestSnapshot_Stale(t *testing.T) {
	now := time.Now()
	snap := &session.Snapshot{
		SchemaVersion: "v1",
		UpdatedAt:     now.Add(-time.Hour),
	}

	assert.False(t, snap.Stale(now, session.DefaultTTL, "v1"))
	assert.True(t, snap.Stale(now, session.DefaultTTL, "v2"))

	snap.UpdatedAt = now.Add(-31 * 24 * time.Hour)
	assert.True(t, snap.Stale(now, session.DefaultTTL, "v1"))

	// A snapshot written before versions were recorded is kept.
	legacy := &session.Snapshot{UpdatedAt: now.Add(-time.Hour)}
	assert.False(t, legacy.Stale(now, session.DefaultTTL, "v2"))
}

func TestNewTracking(t *testing.T) {
	query, err := url.ParseQuery("utm_source=newsletter&utm_campaign=spring&ref=partner&irrelevant=x")
	require.NoError(t, err)

	tr := session.NewTracking("intake", query)
	assert.NotEmpty(t, tr.SessionID)
	assert.Equal(t, "intake", tr.Tag)
	assert.Equal(t, "newsletter", tr.Params["utm_source"])
	assert.Equal(t, "spring", tr.Params["utm_campaign"])
	assert.Equal(t, "partner", tr.Params["ref"])
	// Every campaign key is present even when absent from the query.
	assert.Contains(t, tr.Params, "variant")
	assert.Empty(t, tr.Params["variant"])
	assert.NotContains(t, tr.Params, "irrelevant")

	// IDs are unique per session.
	again := session.NewTracking("intake", query)
	assert.NotEqual(t, tr.SessionID, again.SessionID)
}

func TestTracking_Clone(t *testing.T) {
	tr := session.NewTracking("intake", url.Values{"ref": {"partner"}})
	cp := tr.Clone()
	cp.Params["ref"] = "changed"
	assert.Equal(t, "partner", tr.Params["ref"])

	var nilTracking *session.Tracking
	assert.Nil(t, nilTracking.Clone())
}

func TestResult_RetryAfter(t *testing.T) {
	var nilResult *session.Result
	assert.Zero(t, nilResult.RetryAfter())
	assert.Zero(t, session.Failure(session.CodeNetwork, "offline").RetryAfter())

	limited := &session.Result{
		ErrorCode: session.CodeRateLimit,
		Details:   &session.ResultDetails{RetryAfterSeconds: 30},
	}
	assert.Equal(t, 30, limited.RetryAfter())
}
