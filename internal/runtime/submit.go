package runtime

import (
	"context"
	"time"

	"github.com/alpha-nc/intake/pkg/observability"
	"github.com/alpha-nc/intake/pkg/session"
)

// PayloadPreview returns the payload as it would be submitted right now.
// Read-only diagnostic view for debug mode; no engine behavior changes.
func (c *Controller) PayloadPreview() *session.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payloadLocked()
}

func (c *Controller) payloadLocked() *session.Payload {
	return &session.Payload{
		Meta: session.Meta{
			SubmittedAt: c.clock(),
			Tracking:    c.tracking.Clone(),
		},
		Answers: c.answers.Map(),
	}
}

// submitLocked runs the submission state machine. It is entered with c.mu
// held and returns with it released; the lock is dropped around the network
// call so edits elsewhere cannot deadlock, while the submitting flag keeps
// a second submission out. The flag is reset on every exit path.
func (c *Controller) submitLocked(ctx context.Context) error {
	now := c.clock()
	if now.Before(c.rateLimitUntil) {
		c.mu.Unlock()
		return nil
	}

	c.submitting = true
	c.banner = ""
	payload := c.payloadLocked()
	c.mu.Unlock()

	if c.hooks.OnSubmit != nil {
		c.hooks.OnSubmit(ctx, &observability.SubmitEvent{Timestamp: now})
	}
	c.logger.Info("submitting", "session_id", payload.Meta.Tracking.SessionID)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	result, err := c.submitter.Submit(callCtx, payload)
	cancel()
	elapsed := c.clock().Sub(now)

	if err != nil {
		// The submitter should map its own failures, but a raw error still
		// must not leave the session stuck in Submitting.
		if callCtx.Err() == context.DeadlineExceeded {
			result = session.Failure(session.CodeTimeout, "The server took too long to respond. Please retry.")
		} else {
			result = session.Failure(session.CodeNetwork, "Network unavailable. Please retry.")
		}
	}
	if result.OK && result.Analysis == "" {
		// A success without an analysis payload is not a success.
		result = session.Failure(session.CodeMissingAnalysis, "Analysis missing. Please retry.")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	c.lastResult = result

	outcome := "success"
	if !result.OK {
		outcome = result.ErrorCode
		if outcome == "" {
			outcome = "error"
		}
	}
	if c.hooks.OnSubmitResult != nil {
		c.hooks.OnSubmitResult(ctx, &observability.SubmitEvent{
			Timestamp: c.clock(),
			Outcome:   outcome,
			Duration:  elapsed,
		})
	}

	if !result.OK {
		c.failLocked(ctx, result)
		return nil
	}

	// Success: persisted state is gone for good, the session pins to the
	// confirmation step and blocks everything except restart.
	c.saver.Stop()
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear snapshot after submission", "err", err)
	}
	from := c.stepIndex
	c.stepIndex = len(c.schema.Steps) - 1
	c.terminal = true
	c.submissionID = result.SubmissionID
	c.analysis = c.sanitizer.Sanitize(result.Analysis)
	c.stepEnterLocked(ctx, from, c.stepIndex)
	c.logger.Info("submission accepted", "submission_id", result.SubmissionID, "duration", elapsed)
	return nil
}

func (c *Controller) failLocked(ctx context.Context, result *session.Result) {
	if result.ErrorCode == session.CodeRateLimit && result.RetryAfter() > 0 {
		c.rateLimitUntil = c.clock().Add(time.Duration(result.RetryAfter()) * time.Second)
		c.saver.Schedule()
		c.startCountdownLocked()
	}

	c.banner = result.UserMessage
	if c.banner == "" {
		c.banner = "Something went wrong. Please retry."
	}
	c.logger.Warn("submission failed",
		"code", result.ErrorCode,
		"message", result.UserMessage,
	)
}

// LastResult returns the most recent submission result, nil before any
// attempt.
func (c *Controller) LastResult() *session.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// SubmissionID returns the identifier issued by the collector after a
// successful submission.
func (c *Controller) SubmissionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submissionID
}

// Analysis returns the sanitized analysis payload for the confirmation
// view. Empty until a successful submission.
func (c *Controller) Analysis() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis
}

// Terminal reports whether the session reached the post-submission state.
func (c *Controller) Terminal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// Banner returns the current user-facing failure message, empty when none.
func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// Tracking returns a copy of the tracking context.
func (c *Controller) Tracking() *session.Tracking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracking.Clone()
}
