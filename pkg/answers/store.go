package answers

import (
	"strconv"
	"strings"

	"github.com/alpha-nc/intake/pkg/schema"
)

// Store maps field IDs to typed answer values. Value types follow the field
// kind: string for text-like inputs, float64 for number/range, bool for
// checkboxes, []string for checkbox groups. All mutation happens through
// Set/Toggle/Delete so normalization stays in one place.
type Store struct {
	values map[string]any
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// FromMap builds a store from raw values, normalizing loosely typed input
// (JSON []any lists, whole-number floats) into the store's canonical types.
// Used when restoring a persisted snapshot.
func FromMap(raw map[string]any) *Store {
	s := New()
	for k, v := range raw {
		s.values[k] = canonicalize(v)
	}
	return s
}

func canonicalize(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case int:
		return float64(t)
	default:
		return v
	}
}

// Set stores a raw edit for the given field, applying per-type
// normalization: strings are trimmed, number and range inputs are parsed to
// float64 (an unparsable value is kept verbatim so validation can report
// it), everything else is stored as-is.
func (s *Store) Set(f *schema.Field, raw any) {
	s.values[f.ID] = Normalize(f, raw)
}

// SetValue stores an already-typed value without field-aware normalization.
func (s *Store) SetValue(fieldID string, v any) {
	s.values[fieldID] = v
}

// Toggle adds or removes an option from a checkbox-group answer,
// deduplicating and preserving first-seen order.
func (s *Store) Toggle(fieldID, option string, checked bool) {
	current, _ := s.values[fieldID].([]string)
	next := make([]string, 0, len(current)+1)
	present := false
	for _, item := range current {
		if item == option {
			present = true
			if !checked {
				continue
			}
		}
		next = append(next, item)
	}
	if checked && !present {
		next = append(next, option)
	}
	s.values[fieldID] = next
}

// Normalize converts a raw edit into the canonical value for a field type.
func Normalize(f *schema.Field, raw any) any {
	if raw == nil {
		return nil
	}
	switch f.Type {
	case schema.FieldCheckboxes:
		// JSON-decoded edits arrive as []any; store the canonical []string
		// so the typed getters and validation see the selection.
		if _, isAny := raw.([]any); isAny {
			return canonicalize(raw)
		}
	case schema.FieldNumber, schema.FieldRange:
		switch v := raw.(type) {
		case string:
			trimmed := strings.TrimSpace(v)
			if trimmed == "" {
				return ""
			}
			if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return n
			}
			return trimmed
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	if str, ok := raw.(string); ok {
		return strings.TrimSpace(str)
	}
	return raw
}

// Get returns the stored value for a field, if any.
func (s *Store) Get(fieldID string) (any, bool) {
	v, ok := s.values[fieldID]
	return v, ok
}

// String returns the answer as a string, or "" when absent or not a string.
func (s *Store) String(fieldID string) string {
	v, _ := s.values[fieldID].(string)
	return v
}

// Bool returns the answer as a bool, or false when absent or not a bool.
func (s *Store) Bool(fieldID string) bool {
	v, _ := s.values[fieldID].(bool)
	return v
}

// Strings returns the answer as a string list, or nil.
func (s *Store) Strings(fieldID string) []string {
	v, _ := s.values[fieldID].([]string)
	return v
}

// Delete removes an answer.
func (s *Store) Delete(fieldID string) {
	delete(s.values, fieldID)
}

// Len returns the number of stored answers.
func (s *Store) Len() int { return len(s.values) }

// Map returns a deep copy of the underlying values, safe to hand to
// persistence or submission payloads.
func (s *Store) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		switch slice := v.(type) {
		case []string:
			cp := make([]string, len(slice))
			copy(cp, slice)
			out[k] = cp
		case []any:
			cp := make([]any, len(slice))
			copy(cp, slice)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	return &Store{values: s.Map()}
}

// Empty reports whether a value counts as "no answer" for requiredness:
// nil or the empty string.
func Empty(v any) bool {
	if v == nil {
		return true
	}
	str, ok := v.(string)
	return ok && str == ""
}

// CleanupHidden deletes every stored answer whose field carries a showWhen
// that currently evaluates false. It must run after any edit to a condition
// driver and before the next validation or persistence pass, so stale
// hidden answers never reach a snapshot or a submission payload.
// Returns the IDs that were removed.
func (s *Store) CleanupHidden(sch *schema.Schema) []string {
	var removed []string
	for _, st := range sch.Steps {
		for i := range st.Fields {
			f := &st.Fields[i]
			if f.ShowWhen == nil {
				continue
			}
			v, ok := s.values[f.ID]
			if !ok || Empty(v) {
				continue
			}
			if !f.Visible(s.values) {
				delete(s.values, f.ID)
				removed = append(removed, f.ID)
			}
		}
	}
	return removed
}

// Visible resolves a field's visibility against this store.
func (s *Store) Visible(f *schema.Field) bool {
	return f.Visible(s.values)
}

// Required resolves a field's requiredness against this store.
func (s *Store) Required(f *schema.Field) bool {
	return f.RequiredNow(s.values)
}

// Evaluate runs a raw condition against this store.
func (s *Store) Evaluate(cond *schema.Condition) bool {
	return schema.Evaluate(s.values, cond)
}
