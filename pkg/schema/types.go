package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StepType discriminates the three kinds of steps in a questionnaire.
type StepType string

const (
	StepIntro   StepType = "intro"
	StepForm    StepType = "form"
	StepConfirm StepType = "confirm"
)

// FieldType discriminates the supported input widgets.
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldEmail        FieldType = "email"
	FieldTel          FieldType = "tel"
	FieldNumber       FieldType = "number"
	FieldSelect       FieldType = "select"
	FieldRadio        FieldType = "radio"
	FieldCheckbox     FieldType = "checkbox"
	FieldCheckboxLink FieldType = "checkbox_link"
	FieldCheckboxes   FieldType = "checkboxes"
	FieldRange        FieldType = "range"
	FieldHidden       FieldType = "hidden"
)

// Schema is the declarative definition of a multi-step questionnaire.
// It is loaded once per session and never mutated afterwards.
type Schema struct {
	Version string `json:"version" yaml:"version"`
	Steps   []Step `json:"steps" yaml:"steps"`
}

// Step is a single screen of the questionnaire. Form steps carry a page
// number (1..TotalPages) and an ordered field list; intro and confirm do not.
type Step struct {
	Type     StepType `json:"type" yaml:"type"`
	Page     int      `json:"page,omitempty" yaml:"page,omitempty"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	CTA      string   `json:"cta,omitempty" yaml:"cta,omitempty"`
	Bullets  []string `json:"bullets,omitempty" yaml:"bullets,omitempty"`
	Fields   []Field  `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field is an individual input inside a form step. ID is the join key into
// the answer store and must be unique across the whole schema.
type Field struct {
	ID          string      `json:"id" yaml:"id"`
	Type        FieldType   `json:"type" yaml:"type"`
	Label       string      `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    Requirement `json:"required,omitempty" yaml:"required,omitempty"`
	ShowWhen    *Condition  `json:"showWhen,omitempty" yaml:"showWhen,omitempty"`
	Options     []string    `json:"options,omitempty" yaml:"options,omitempty"`
	Min         *float64    `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64    `json:"max,omitempty" yaml:"max,omitempty"`
	Default     *float64    `json:"default,omitempty" yaml:"default,omitempty"`
	Unit        string      `json:"unit,omitempty" yaml:"unit,omitempty"`
	MinItems    int         `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	LinkURL     string      `json:"linkUrl,omitempty" yaml:"linkUrl,omitempty"`
	LinkText    string      `json:"linkText,omitempty" yaml:"linkText,omitempty"`
	Hidden      bool        `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Requirement models the "required" attribute, which is either a plain
// boolean or a conditional form {"when": <condition>}.
type Requirement struct {
	Always bool       `json:"-" yaml:"-"`
	When   *Condition `json:"-" yaml:"-"`
}

// UnmarshalJSON accepts true, false, or {"when": {...}}.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		r.Always = b
		r.When = nil
		return nil
	}
	var obj struct {
		When *Condition `json:"when"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("required must be a bool or {when: condition}: %w", err)
	}
	r.Always = false
	r.When = obj.When
	return nil
}

// MarshalJSON writes the compact form back out.
func (r Requirement) MarshalJSON() ([]byte, error) {
	if r.When != nil {
		return json.Marshal(struct {
			When *Condition `json:"when"`
		}{When: r.When})
	}
	return json.Marshal(r.Always)
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON for YAML documents.
func (r *Requirement) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		r.Always = b
		r.When = nil
		return nil
	}
	var obj struct {
		When *Condition `yaml:"when"`
	}
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("required must be a bool or {when: condition}: %w", err)
	}
	r.Always = false
	r.When = obj.When
	return nil
}

// Conditional reports whether requiredness depends on another answer.
func (r Requirement) Conditional() bool { return r.When != nil }

// TotalPages returns the highest page number declared on a form step.
func (s *Schema) TotalPages() int {
	max := 0
	for _, st := range s.Steps {
		if st.Type == StepForm && st.Page > max {
			max = st.Page
		}
	}
	return max
}

// LastFormPage is the page that triggers submission instead of advancing.
// It is identified by page number, not by position in the step sequence.
func (s *Schema) LastFormPage() int {
	return s.TotalPages()
}

// IsLastFormStep reports whether the step at index i is the submit trigger.
func (s *Schema) IsLastFormStep(i int) bool {
	if i < 0 || i >= len(s.Steps) {
		return false
	}
	st := s.Steps[i]
	return st.Type == StepForm && st.Page == s.LastFormPage()
}

// FieldByID looks a field up across all steps.
func (s *Schema) FieldByID(id string) (*Field, bool) {
	for i := range s.Steps {
		for j := range s.Steps[i].Fields {
			if s.Steps[i].Fields[j].ID == id {
				return &s.Steps[i].Fields[j], true
			}
		}
	}
	return nil, false
}

// ConditionDrivers returns the set of field IDs referenced by any visibility
// or requiredness condition. Editing one of these fields must trigger a
// whole-schema visibility recomputation.
func (s *Schema) ConditionDrivers() map[string]bool {
	drivers := make(map[string]bool)
	for _, st := range s.Steps {
		for _, f := range st.Fields {
			if f.ShowWhen != nil {
				drivers[f.ShowWhen.Field] = true
			}
			if f.Required.When != nil {
				drivers[f.Required.When.Field] = true
			}
		}
	}
	return drivers
}
