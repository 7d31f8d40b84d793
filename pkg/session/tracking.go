package session

import (
	"net/url"

	"github.com/google/uuid"
)

// CampaignParams is the fixed set of attribution keys copied verbatim from
// the entry URL into the tracking context. Unknown query parameters are
// ignored.
var CampaignParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"ref",
	"variant",
}

// Tracking identifies a session across saves and resumes. SessionID is
// minted once and persisted; it only changes on an explicit restart.
type Tracking struct {
	SessionID string            `json:"sessionId"`
	Tag       string            `json:"tag"`
	Params    map[string]string `json:"params"`
}

// NewTracking builds a tracking context for a fresh session, copying the
// campaign parameters out of the entry query string.
func NewTracking(tag string, query url.Values) *Tracking {
	params := make(map[string]string, len(CampaignParams))
	for _, key := range CampaignParams {
		params[key] = query.Get(key)
	}
	return &Tracking{
		SessionID: uuid.NewString(),
		Tag:       tag,
		Params:    params,
	}
}

// Clone returns an independent copy.
func (t *Tracking) Clone() *Tracking {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Params = make(map[string]string, len(t.Params))
	for k, v := range t.Params {
		cp.Params[k] = v
	}
	return &cp
}
