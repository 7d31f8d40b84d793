package intake

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alpha-nc/intake/internal/adapters/file"
	"github.com/alpha-nc/intake/internal/logging"
	"github.com/alpha-nc/intake/internal/runtime"
	"github.com/alpha-nc/intake/pkg/adapters/webhook"
	"github.com/alpha-nc/intake/pkg/observability"
	"github.com/alpha-nc/intake/pkg/ports"
	"github.com/alpha-nc/intake/pkg/schema"
	"github.com/alpha-nc/intake/pkg/session"
	"github.com/alpha-nc/intake/pkg/validation"
)

// DefaultTag is the form tag used when none is configured. It namespaces
// the storage key and travels with every submission.
const DefaultTag = "intake"

// NavState re-exports the controller's navigation view for presenters.
type NavState = runtime.NavState

// Engine is the high-level entry point for the intake library. It wraps
// the internal session controller and provides a simplified API for
// consumers: load a schema, resume or start a session, feed it edits and
// navigation, and let it drive the single submission.
type Engine struct {
	schema     *schema.Schema
	controller *runtime.Controller

	tag       string
	store     ports.SnapshotStore
	submitter ports.Submitter
	endpoint  string
	origin    string
	logger    *slog.Logger
	ctrlOpts  []runtime.Option
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTag sets the form tag (storage namespace and submission header).
func WithTag(tag string) Option {
	return func(e *Engine) { e.tag = tag }
}

// WithStore injects a custom snapshot store, bypassing the default
// file-backed one.
func WithStore(store ports.SnapshotStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithSubmitter injects a custom submission transport.
func WithSubmitter(s ports.Submitter) Option {
	return func(e *Engine) { e.submitter = s }
}

// WithEndpoint configures the default webhook submitter's target URL.
// Ignored when WithSubmitter is used.
func WithEndpoint(endpoint string) Option {
	return func(e *Engine) { e.endpoint = endpoint }
}

// WithOrigin sets the client origin reported to the collector.
func WithOrigin(origin string) Option {
	return func(e *Engine) { e.origin = origin }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks observability.LifecycleHooks) Option {
	return func(e *Engine) {
		e.ctrlOpts = append(e.ctrlOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithClock overrides the engine's time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.ctrlOpts = append(e.ctrlOpts, runtime.WithClock(now))
	}
}

// WithTTL overrides the snapshot retention window (default 30 days).
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.ctrlOpts = append(e.ctrlOpts, runtime.WithTTL(ttl))
	}
}

// WithSubmitTimeout overrides the submission deadline (default 15s).
func WithSubmitTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.ctrlOpts = append(e.ctrlOpts, runtime.WithSubmitTimeout(d))
	}
}

// WithOnChange registers a re-render callback for countdown ticks.
func WithOnChange(fn func()) Option {
	return func(e *Engine) {
		e.ctrlOpts = append(e.ctrlOpts, runtime.WithOnChange(fn))
	}
}

// WithOnSaved registers a save-indicator callback.
func WithOnSaved(fn func()) Option {
	return func(e *Engine) {
		e.ctrlOpts = append(e.ctrlOpts, runtime.WithOnSaved(fn))
	}
}

// New initializes an Engine around an already-loaded schema.
// By default it persists to a file store under ".intake" and submits via
// the webhook client, which requires WithEndpoint.
func New(sch *schema.Schema, opts ...Option) (*Engine, error) {
	if sch == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if err := sch.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{schema: sch, tag: DefaultTag}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.logger = e.logger.With("form", e.tag)

	if e.store == nil {
		e.store = file.New("", e.tag)
	}
	if e.submitter == nil {
		if e.endpoint == "" {
			return nil, fmt.Errorf("an endpoint is required when no custom submitter is provided")
		}
		var whOpts []webhook.Option
		if e.origin != "" {
			whOpts = append(whOpts, webhook.WithOrigin(e.origin))
		}
		e.submitter = webhook.New(e.endpoint, e.tag, whOpts...)
	}

	ctrlOpts := append([]runtime.Option{runtime.WithLogger(e.logger)}, e.ctrlOpts...)
	e.controller = runtime.NewController(e.schema, e.tag, e.store, e.submitter, ctrlOpts...)
	return e, nil
}

// Load reads, validates and wraps a schema document from a file.
func Load(path string, opts ...Option) (*Engine, error) {
	sch, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	return New(sch, opts...)
}

// Start resumes a persisted session or begins a fresh one. The query
// values supply campaign attribution parameters.
func (e *Engine) Start(ctx context.Context, query url.Values) error {
	return e.controller.Start(ctx, query)
}

// Edit records a field edit.
func (e *Engine) Edit(ctx context.Context, fieldID string, raw any) error {
	return e.controller.Edit(ctx, fieldID, raw)
}

// ToggleOption flips one option of a checkbox-group field.
func (e *Engine) ToggleOption(ctx context.Context, fieldID, option string, checked bool) error {
	return e.controller.ToggleOption(ctx, fieldID, option, checked)
}

// Next advances the session, validating and, on the last form page,
// submitting.
func (e *Engine) Next(ctx context.Context) (validation.Result, error) {
	return e.controller.Next(ctx)
}

// Prev steps back.
func (e *Engine) Prev(ctx context.Context) {
	e.controller.Prev(ctx)
}

// Restart wipes the session and starts over with a fresh identity.
func (e *Engine) Restart(ctx context.Context, query url.Values) error {
	return e.controller.Restart(ctx, query)
}

// Close flushes pending persistence and stops background timers.
func (e *Engine) Close() {
	e.controller.Close()
}

// Schema returns the immutable schema the engine runs on.
func (e *Engine) Schema() *schema.Schema { return e.schema }

// CurrentStep returns the step the session is on.
func (e *Engine) CurrentStep() *schema.Step { return e.controller.CurrentStep() }

// StepIndex returns the current step position.
func (e *Engine) StepIndex() int { return e.controller.StepIndex() }

// VisibleFields lists the current step's renderable fields.
func (e *Engine) VisibleFields() []*schema.Field { return e.controller.VisibleFields() }

// Answer returns the stored value for a field.
func (e *Engine) Answer(fieldID string) (any, bool) { return e.controller.Answer(fieldID) }

// FieldRequired reports whether a field is required given the current answers.
func (e *Engine) FieldRequired(f *schema.Field) bool { return e.controller.FieldRequired(f) }

// NavState computes the navigation controls for the current state.
func (e *Engine) NavState() runtime.NavState { return e.controller.NavState() }

// Progress returns the page-based completion percentage.
func (e *Engine) Progress() int { return e.controller.Progress() }

// Banner returns the active user-facing failure message, if any.
func (e *Engine) Banner() string { return e.controller.Banner() }

// Terminal reports whether the session is in the post-submission state.
func (e *Engine) Terminal() bool { return e.controller.Terminal() }

// SubmissionID returns the collector-issued identifier after success.
func (e *Engine) SubmissionID() string { return e.controller.SubmissionID() }

// Analysis returns the sanitized analysis payload after success.
func (e *Engine) Analysis() string { return e.controller.Analysis() }

// Tracking returns a copy of the session's tracking context.
func (e *Engine) Tracking() *session.Tracking { return e.controller.Tracking() }

// PayloadPreview returns the would-be submission payload (debug mode).
func (e *Engine) PayloadPreview() *session.Payload { return e.controller.PayloadPreview() }
