package runtime

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alpha-nc/intake/pkg/schema"
	"github.com/alpha-nc/intake/pkg/validation"
)

// NavState is everything a presenter needs to render the navigation
// controls. Both the terminal and HTTP presenters derive their buttons from
// this one struct so the semantics cannot drift.
type NavState struct {
	PrevDisabled bool   `json:"prevDisabled"`
	NextDisabled bool   `json:"nextDisabled"`
	NextLabel    string `json:"nextLabel"`
	Submitting   bool   `json:"submitting"`
	Terminal     bool   `json:"terminal"`
	ProgressPct  int    `json:"progressPct"`
	ProgressText string `json:"progressText"`
	Banner       string `json:"banner,omitempty"`
}

// Next advances the session. Intro advances unconditionally; confirm is
// terminal; the last form page validates and then submits instead of
// advancing; every other form page validates and advances on success. The
// returned validation result carries the first invalid field for the
// presenter to scroll to.
func (c *Controller) Next(ctx context.Context) (validation.Result, error) {
	c.mu.Lock()

	if c.submitting || c.terminal {
		c.mu.Unlock()
		return validation.Result{OK: true}, nil
	}
	c.banner = ""

	step := &c.schema.Steps[c.stepIndex]
	switch step.Type {
	case schema.StepIntro:
		from := c.stepIndex
		c.stepIndex = 1
		c.saver.Schedule()
		c.stepEnterLocked(ctx, from, c.stepIndex)
		c.mu.Unlock()
		return validation.Result{OK: true}, nil

	case schema.StepConfirm:
		c.mu.Unlock()
		return validation.Result{OK: true}, nil
	}

	result := validation.Validate(step, c.answers)
	if !result.OK {
		c.mu.Unlock()
		return result, nil
	}

	if c.schema.IsLastFormStep(c.stepIndex) {
		// Submission owns the lock handoff from here.
		return result, c.submitLocked(ctx)
	}

	from := c.stepIndex
	c.stepIndex = min(c.stepIndex+1, len(c.schema.Steps)-1)
	c.saver.Schedule()
	c.stepEnterLocked(ctx, from, c.stepIndex)
	c.mu.Unlock()
	return result, nil
}

// Prev steps back one step. No-op while submitting, in the terminal state,
// or already at the first step.
func (c *Controller) Prev(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.submitting || c.terminal || c.stepIndex <= 0 {
		return
	}
	from := c.stepIndex
	c.stepIndex--
	c.saver.Schedule()
	c.stepEnterLocked(ctx, from, c.stepIndex)
}

// StepIndex returns the current step position.
func (c *Controller) StepIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepIndex
}

// CurrentStep returns the step the session is on.
func (c *Controller) CurrentStep() *schema.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &c.schema.Steps[c.stepIndex]
}

// VisibleFields returns the current step's fields that should render,
// honeypot excluded.
func (c *Controller) VisibleFields() []*schema.Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := &c.schema.Steps[c.stepIndex]
	var out []*schema.Field
	for i := range step.Fields {
		f := &step.Fields[i]
		if f.Hidden || !c.answers.Visible(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Answer returns the current value for a field.
func (c *Controller) Answer(fieldID string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers.Get(fieldID)
}

// FieldRequired resolves a field's requiredness against the current
// answers, so conditional requirements track their driver.
func (c *Controller) FieldRequired(f *schema.Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers.Required(f)
}

// Progress returns the page-based completion percentage, pinned to 100 on
// the confirmation step.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *Controller) progressLocked() int {
	step := &c.schema.Steps[c.stepIndex]
	if step.Type == schema.StepConfirm {
		return 100
	}
	total := c.schema.TotalPages()
	if total <= 1 {
		return 0
	}
	page := step.Page
	if page < 1 {
		page = 1
	}
	return int(math.Round(float64(page-1) / float64(total-1) * 100))
}

// NavState computes the navigation controls for the current state.
func (c *Controller) NavState() NavState {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	step := &c.schema.Steps[c.stepIndex]
	atRateLimit := now.Before(c.rateLimitUntil)
	lastForm := c.schema.IsLastFormStep(c.stepIndex)

	ns := NavState{
		PrevDisabled: step.Type == schema.StepIntro || c.submitting || c.terminal,
		NextDisabled: c.submitting || c.terminal || (lastForm && atRateLimit),
		Submitting:   c.submitting,
		Terminal:     c.terminal,
		ProgressPct:  c.progressLocked(),
		Banner:       c.banner,
	}

	switch {
	case step.Type == schema.StepIntro:
		ns.NextLabel = step.CTA
		if ns.NextLabel == "" {
			ns.NextLabel = "Start"
		}
		ns.ProgressText = "Ready?"
	case step.Type == schema.StepConfirm:
		ns.NextLabel = "Done"
		ns.ProgressText = "Analysis received"
	case lastForm && atRateLimit:
		seconds := int(math.Ceil(c.rateLimitUntil.Sub(now).Seconds()))
		ns.NextLabel = fmt.Sprintf("Retry in %ds", seconds)
		ns.ProgressText = c.progressText(step)
	case lastForm:
		if c.submitting {
			ns.NextLabel = "Sending..."
		} else {
			ns.NextLabel = "Send"
		}
		ns.ProgressText = c.progressText(step)
	default:
		ns.NextLabel = "Next"
		ns.ProgressText = c.progressText(step)
	}

	return ns
}

func (c *Controller) progressText(step *schema.Step) string {
	return fmt.Sprintf("Progress: page %d/%d", step.Page, c.schema.TotalPages())
}

// RateLimitedUntil returns the active cooldown deadline, zero when none.
func (c *Controller) RateLimitedUntil() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimitUntil
}
