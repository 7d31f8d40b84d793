// Package webhook implements the submission transport: a single JSON POST
// to the collector endpoint with a hard deadline and a structured response.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/alpha-nc/intake/pkg/session"
)

// Headers carried on every submission. Tracking and origin metadata travel
// as headers so the collector can gate on them before parsing the body.
const (
	HeaderFormTag      = "X-Form-Tag"
	HeaderClientOrigin = "X-Client-Origin"
)

// Client implements ports.Submitter over HTTP.
type Client struct {
	endpoint string
	tag      string
	origin   string
	http     *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom
// transports). The submission deadline still comes from the context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithOrigin sets the X-Client-Origin header value.
func WithOrigin(origin string) Option {
	return func(c *Client) {
		c.origin = origin
	}
}

// New creates a webhook client for the given endpoint and form tag.
func New(endpoint, tag string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		tag:      tag,
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts the payload and decodes the structured result. All failure
// modes collapse into a Result with a synthesized error code, never an
// engine-visible error: TIMEOUT when the context deadline fires, NETWORK
// when the transport fails, BAD_RESPONSE when the body cannot be parsed or
// lacks the boolean ok discriminator.
func (c *Client) Submit(ctx context.Context, payload *session.Payload) (*session.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderFormTag, c.tag)
	if c.origin != "" {
		req.Header.Set(HeaderClientOrigin, c.origin)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return session.Failure(session.CodeTimeout, "The server took too long to respond. Please retry."), nil
		}
		return session.Failure(session.CodeNetwork, "Network unavailable. Please retry."), nil
	}
	defer res.Body.Close()

	// Two-stage decode: the boolean ok discriminator must be present before
	// the rest of the shape is trusted. Unknown extra fields are ignored.
	var raw map[string]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return session.Failure(session.CodeBadResponse, "Invalid server response."), nil
	}
	if _, isBool := raw["ok"].(bool); !isBool {
		return session.Failure(session.CodeBadResponse, "Invalid server response."), nil
	}

	var wire struct {
		OK           bool   `mapstructure:"ok"`
		SubmissionID string `mapstructure:"submissionId"`
		Analysis     string `mapstructure:"analysis_html"`
		ErrorCode    string `mapstructure:"error_code"`
		UserMessage  string `mapstructure:"message_user"`
		Details      *struct {
			RetryAfterSeconds int `mapstructure:"retry_after_seconds"`
		} `mapstructure:"details"`
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &wire,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build response decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return session.Failure(session.CodeBadResponse, "Invalid server response."), nil
	}

	result := &session.Result{
		OK:           wire.OK,
		SubmissionID: wire.SubmissionID,
		Analysis:     wire.Analysis,
		ErrorCode:    wire.ErrorCode,
		UserMessage:  wire.UserMessage,
	}
	if wire.Details != nil {
		result.Details = &session.ResultDetails{RetryAfterSeconds: wire.Details.RetryAfterSeconds}
	}
	return result, nil
}
