package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/alpha-nc/intake/internal/logging"
	"github.com/alpha-nc/intake/pkg/answers"
	"github.com/alpha-nc/intake/pkg/observability"
	"github.com/alpha-nc/intake/pkg/ports"
	"github.com/alpha-nc/intake/pkg/schema"
	"github.com/alpha-nc/intake/pkg/session"
	"github.com/alpha-nc/intake/pkg/validation"
)

// DefaultSubmitTimeout is the hard deadline on the submission call.
const DefaultSubmitTimeout = 15 * time.Second

// ErrUnknownField is returned when an edit targets a field the schema does
// not declare.
var ErrUnknownField = errors.New("unknown field")

// Clock supplies the current time; injectable for TTL and rate-limit tests.
type Clock func() time.Time

// Controller owns the session: step position, answers, persistence and the
// submission state machine. All mutation happens under one mutex in
// response to discrete events, so persistence always reflects the most
// recent completed mutation.
type Controller struct {
	schema    *schema.Schema
	store     ports.SnapshotStore
	submitter ports.Submitter
	tag       string

	mu             sync.Mutex
	stepIndex      int
	answers        *answers.Store
	tracking       *session.Tracking
	submitting     bool
	terminal       bool
	banner         string
	submissionID   string
	analysis       string
	lastResult     *session.Result
	rateLimitUntil time.Time
	drivers        map[string]bool

	saver     *Saver
	countdown *Countdown
	clock     Clock
	ttl       time.Duration
	timeout   time.Duration
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
	hooks     observability.LifecycleHooks
	onChange  func()
	onSaved   func()
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks observability.LifecycleHooks) Option {
	return func(c *Controller) { c.hooks = hooks }
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithTTL overrides the snapshot retention window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Controller) { c.ttl = ttl }
}

// WithSubmitTimeout overrides the submission deadline.
func WithSubmitTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithSaveDebounce overrides the debounce delay for snapshot flushes.
func WithSaveDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.saver = NewSaver(d, c.flushSnapshot)
	}
}

// WithOnChange registers a callback fired whenever navigation state changes
// outside a direct call (countdown ticks, expiry). Presenters use it to
// re-render.
func WithOnChange(fn func()) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithOnSaved registers a callback fired after each snapshot flush, for
// transient save indicators.
func WithOnSaved(fn func()) Option {
	return func(c *Controller) { c.onSaved = fn }
}

// NewController wires a controller for the given schema, store and
// submitter. Call Start before anything else.
func NewController(sch *schema.Schema, tag string, store ports.SnapshotStore, submitter ports.Submitter, opts ...Option) *Controller {
	c := &Controller{
		schema:    sch,
		store:     store,
		submitter: submitter,
		tag:       tag,
		answers:   answers.New(),
		drivers:   sch.ConditionDrivers(),
		countdown: NewCountdown(),
		clock:     time.Now,
		ttl:       session.DefaultTTL,
		timeout:   DefaultSubmitTimeout,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.saver == nil {
		c.saver = NewSaver(DefaultSaveDebounce, c.flushSnapshot)
	}
	return c
}

// Start loads any persisted snapshot, applies TTL and schema-version
// invalidation, restores answers, step index and rate-limit deadline,
// relocates past-invalid resumes, and persists the reconciled state.
func (c *Controller) Start(ctx context.Context, query url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	snap, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, session.ErrSnapshotNotFound):
		snap = nil
	case err != nil:
		// Storage trouble is treated as absence, never as a fatal error.
		c.logger.Warn("failed to load snapshot, starting fresh", "err", err)
		snap = nil
	}

	if snap != nil && snap.Stale(now, c.ttl, c.schema.Version) {
		c.logger.Info("discarding stale snapshot",
			"schema_version", snap.SchemaVersion,
			"updated_at", snap.UpdatedAt,
		)
		if err := c.store.Clear(ctx); err != nil {
			c.logger.Warn("failed to clear stale snapshot", "err", err)
		}
		snap = nil
	}

	c.tracking = session.NewTracking(c.tag, query)
	if snap != nil {
		// Restore only the fields we understand: answers, position and the
		// rate-limit deadline. The session ID survives a resume.
		c.answers = answers.FromMap(snap.Answers)
		c.stepIndex = snap.StepIndex
		c.rateLimitUntil = snap.RateLimitUntil
		if snap.Tracking != nil && snap.Tracking.SessionID != "" {
			c.tracking.SessionID = snap.Tracking.SessionID
		}
	}

	if c.stepIndex < 0 || c.stepIndex >= len(c.schema.Steps) {
		c.stepIndex = 0
	}
	// Never land on the confirmation step: it only renders after a
	// successful submission.
	if c.schema.Steps[c.stepIndex].Type == schema.StepConfirm {
		c.stepIndex = 0
	}
	// A resumed session must not skip past a step that no longer validates.
	if firstBad, found := validation.FindFirstInvalidStep(c.schema, c.answers); found && c.stepIndex > firstBad {
		c.logger.Info("relocating resume to first invalid step",
			"restored_index", c.stepIndex,
			"first_invalid", firstBad,
		)
		c.stepIndex = firstBad
	}

	if c.rateLimitUntil.After(now) {
		c.startCountdownLocked()
	}

	c.saveLocked(ctx)
	c.stepEnterLocked(ctx, c.stepIndex, c.stepIndex)
	return nil
}

// Edit records a field edit. Driver edits trigger the hidden-field cleanup
// pass immediately, before any validation or persistence can observe the
// stale answers. Every edit schedules a debounced save.
func (c *Controller) Edit(ctx context.Context, fieldID string, raw any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.terminal {
		return nil
	}
	f, ok := c.schema.FieldByID(fieldID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}

	c.answers.Set(f, raw)
	c.afterEditLocked(ctx, f)
	return nil
}

// ToggleOption flips one option of a checkbox-group field.
func (c *Controller) ToggleOption(ctx context.Context, fieldID, option string, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.terminal {
		return nil
	}
	f, ok := c.schema.FieldByID(fieldID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}

	c.answers.Toggle(fieldID, option, checked)
	c.afterEditLocked(ctx, f)
	return nil
}

func (c *Controller) afterEditLocked(ctx context.Context, f *schema.Field) {
	driver := c.drivers[f.ID]
	if driver {
		if removed := c.answers.CleanupHidden(c.schema); len(removed) > 0 {
			c.logger.Debug("pruned hidden conditional answers", "fields", removed)
		}
	}
	if c.hooks.OnFieldEdit != nil {
		c.hooks.OnFieldEdit(ctx, &observability.FieldEvent{
			Timestamp: c.clock(),
			FieldID:   f.ID,
			Driver:    driver,
		})
	}
	c.saver.Schedule()
}

// Restart wipes everything: persisted snapshot, answers, position,
// rate-limit, tracking identity. Always available, including from the
// terminal success state.
func (c *Controller) Restart(ctx context.Context, query url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.saver.Stop()
	c.countdown.Stop()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("failed to clear snapshot on restart", "err", err)
	}

	c.stepIndex = 0
	c.answers = answers.New()
	c.tracking = session.NewTracking(c.tag, query)
	c.submitting = false
	c.terminal = false
	c.banner = ""
	c.submissionID = ""
	c.analysis = ""
	c.lastResult = nil
	c.rateLimitUntil = time.Time{}

	c.logger.Info("session restarted", "session_id", c.tracking.SessionID)
	return nil
}

// Close flushes any pending save and stops background timers.
func (c *Controller) Close() {
	c.mu.Lock()
	terminal := c.terminal
	c.mu.Unlock()

	if terminal {
		c.saver.Stop()
	} else {
		c.saver.Flush()
	}
	c.countdown.Stop()
}

// snapshotLocked builds the persisted form of the current state.
func (c *Controller) snapshotLocked() *session.Snapshot {
	return &session.Snapshot{
		SchemaVersion:  c.schema.Version,
		StepIndex:      c.stepIndex,
		Answers:        c.answers.Map(),
		Tracking:       c.tracking.Clone(),
		RateLimitUntil: c.rateLimitUntil,
		UpdatedAt:      c.clock(),
	}
}

// saveLocked writes the snapshot synchronously. Failures are logged, never
// surfaced: persistence must not interrupt the session.
func (c *Controller) saveLocked(ctx context.Context) {
	if err := c.store.Save(ctx, c.snapshotLocked()); err != nil {
		c.logger.Warn("failed to save snapshot", "err", err)
		return
	}
	if c.hooks.OnSnapshotSave != nil {
		c.hooks.OnSnapshotSave(ctx)
	}
	if c.onSaved != nil {
		c.onSaved()
	}
}

// flushSnapshot is the Saver's flush target; it runs on the timer
// goroutine and takes the controller lock like any other event.
func (c *Controller) flushSnapshot() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal {
		return
	}
	c.saveLocked(context.Background())
}

func (c *Controller) stepEnterLocked(ctx context.Context, from, to int) {
	if c.hooks.OnStepEnter != nil {
		c.hooks.OnStepEnter(ctx, &observability.StepEvent{
			Timestamp: c.clock(),
			FromIndex: from,
			ToIndex:   to,
			StepType:  string(c.schema.Steps[to].Type),
		})
	}
}

func (c *Controller) notifyChange() {
	if c.onChange != nil {
		c.onChange()
	}
}

func (c *Controller) startCountdownLocked() {
	deadline := c.rateLimitUntil
	c.countdown.Start(
		func() time.Time { return c.clock() },
		deadline,
		func(time.Duration) { c.notifyChange() },
		func() {
			c.mu.Lock()
			if c.rateLimitUntil.Equal(deadline) {
				c.rateLimitUntil = time.Time{}
			}
			c.mu.Unlock()
			c.notifyChange()
		},
	)
}
