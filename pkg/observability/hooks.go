package observability

import (
	"context"
	"time"
)

// StepEvent records a navigation transition.
type StepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	FromIndex int       `json:"from_index"`
	ToIndex   int       `json:"to_index"`
	StepType  string    `json:"step_type"`
}

// FieldEvent records a field edit.
type FieldEvent struct {
	Timestamp time.Time `json:"timestamp"`
	FieldID   string    `json:"field_id"`
	Driver    bool      `json:"driver,omitempty"`
}

// SubmitEvent records a submission attempt and its outcome.
type SubmitEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Outcome   string        `json:"outcome,omitempty"` // success, or an error code
	Duration  time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. All fields are
// optional; nil hooks are skipped.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnFieldEdit    func(context.Context, *FieldEvent)
	OnSnapshotSave func(context.Context)
	OnSubmit       func(context.Context, *SubmitEvent)
	OnSubmitResult func(context.Context, *SubmitEvent)
}
