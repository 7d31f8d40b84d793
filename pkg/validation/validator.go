package validation

import (
	"fmt"
	"math"
	"regexp"

	"github.com/alpha-nc/intake/pkg/answers"
	"github.com/alpha-nc/intake/pkg/schema"
)

// HoneypotFieldID is the anti-bot trap field. It is rendered invisibly and
// validated server-side only, so the client validator always skips it.
const HoneypotFieldID = "hp_field"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Result is the outcome of validating one step. FieldErrors carries every
// message keyed by field ID; FirstInvalid is the first offending field in
// declaration order, so presenters know where to scroll.
type Result struct {
	OK           bool
	FirstInvalid string
	FieldErrors  map[string]string
}

func (r *Result) addError(fieldID, msg string) {
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]string)
	}
	if _, dup := r.FieldErrors[fieldID]; dup {
		return
	}
	r.FieldErrors[fieldID] = msg
	if r.FirstInvalid == "" {
		r.FirstInvalid = fieldID
	}
	r.OK = false
}

// Validate checks one step against the current answers. Non-form steps are
// trivially valid. Only visible fields are checked, in declaration order;
// required rules depend on the field kind, format rules run whenever a
// value is present regardless of requiredness. The function is pure: two
// calls on identical state yield identical results and no side effects,
// which is what allows whole-schema scans at load time.
func Validate(step *schema.Step, store *answers.Store) Result {
	result := Result{OK: true}
	if step == nil || step.Type != schema.StepForm {
		return result
	}

	for i := range step.Fields {
		f := &step.Fields[i]
		if !store.Visible(f) {
			continue
		}
		if f.ID == HoneypotFieldID {
			continue
		}

		v, _ := store.Get(f.ID)

		if store.Required(f) {
			switch f.Type {
			case schema.FieldCheckbox, schema.FieldCheckboxLink:
				if v != true {
					result.addError(f.ID, "This field is required.")
				}
			case schema.FieldCheckboxes:
				minItems := f.MinItems
				if minItems == 0 {
					minItems = 1
				}
				if len(store.Strings(f.ID)) < minItems {
					result.addError(f.ID, fmt.Sprintf("Select at least %d option(s).", minItems))
				}
			default:
				if answers.Empty(v) {
					result.addError(f.ID, "This field is required.")
				}
			}
		}

		if answers.Empty(v) {
			continue
		}

		switch f.Type {
		case schema.FieldEmail:
			if s, ok := v.(string); !ok || !emailPattern.MatchString(s) {
				result.addError(f.ID, "Invalid email address.")
			}
		case schema.FieldNumber:
			n, ok := asFinite(v)
			if !ok {
				result.addError(f.ID, "Invalid number.")
			} else if f.Min != nil && n < *f.Min {
				result.addError(f.ID, fmt.Sprintf("Minimum: %v.", *f.Min))
			}
		case schema.FieldRange:
			if _, ok := asFinite(v); !ok {
				result.addError(f.ID, "Invalid value.")
			}
		}
	}

	return result
}

func asFinite(v any) (float64, bool) {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// FindFirstInvalidStep scans every form step in order and returns the index
// of the earliest one that does not validate against the current answers.
// Used once at load time so a resumed session is never dropped onto a step
// whose prerequisites were never satisfied.
func FindFirstInvalidStep(sch *schema.Schema, store *answers.Store) (int, bool) {
	for i := range sch.Steps {
		st := &sch.Steps[i]
		if st.Type != schema.StepForm {
			continue
		}
		if r := Validate(st, store); !r.OK {
			return i, true
		}
	}
	return 0, false
}
