package schema

import "fmt"

var fieldTypes = map[FieldType]bool{
	FieldText:         true,
	FieldEmail:        true,
	FieldTel:          true,
	FieldNumber:       true,
	FieldSelect:       true,
	FieldRadio:        true,
	FieldCheckbox:     true,
	FieldCheckboxLink: true,
	FieldCheckboxes:   true,
	FieldRange:        true,
	FieldHidden:       true,
}

// Validate checks the structural invariants of a schema document:
// versioned, intro first, confirm last, contiguous form pages starting at 1,
// unique field IDs, known field types, and conditions that reference
// declared fields. A schema that passes here is safe for the runtime to
// navigate without further shape checks.
func (s *Schema) Validate() error {
	if s.Version == "" {
		return invalid("version", "must not be empty")
	}
	if len(s.Steps) < 3 {
		return invalid("steps", "need at least intro, one form page and confirm, got %d steps", len(s.Steps))
	}

	introCount, confirmCount := 0, 0
	seenPages := make(map[int]string)
	ids := make(map[string]string)

	for i, st := range s.Steps {
		path := fmt.Sprintf("steps[%d]", i)
		switch st.Type {
		case StepIntro:
			introCount++
			if i != 0 {
				return invalid(path, "intro must be the first step")
			}
		case StepConfirm:
			confirmCount++
			if i != len(s.Steps)-1 {
				return invalid(path, "confirm must be the last step")
			}
		case StepForm:
			if st.Page < 1 {
				return invalid(path, "form step needs a page number >= 1, got %d", st.Page)
			}
			if prev, dup := seenPages[st.Page]; dup {
				return invalid(path, "page %d already used by %s", st.Page, prev)
			}
			seenPages[st.Page] = path
		default:
			return invalid(path, "unknown step type %q", st.Type)
		}

		for j, f := range st.Fields {
			fpath := fmt.Sprintf("%s.fields[%d]", path, j)
			if f.ID == "" {
				return invalid(fpath, "field id must not be empty")
			}
			if prev, dup := ids[f.ID]; dup {
				return invalid(fpath, "field id %q already declared at %s", f.ID, prev)
			}
			ids[f.ID] = fpath
			if !fieldTypes[f.Type] {
				return invalid(fpath, "unknown field type %q", f.Type)
			}
			if (f.Type == FieldSelect || f.Type == FieldRadio || f.Type == FieldCheckboxes) && len(f.Options) == 0 {
				return invalid(fpath, "%s field needs options", f.Type)
			}
			if f.Type == FieldRange && (f.Min == nil || f.Max == nil) {
				return invalid(fpath, "range field needs min and max")
			}
		}
	}

	if introCount != 1 {
		return invalid("steps", "exactly one intro step required, got %d", introCount)
	}
	if confirmCount != 1 {
		return invalid("steps", "exactly one confirm step required, got %d", confirmCount)
	}
	for p := 1; p <= len(seenPages); p++ {
		if _, ok := seenPages[p]; !ok {
			return invalid("steps", "form pages must be contiguous from 1, missing page %d", p)
		}
	}

	// Conditions must point at declared fields, otherwise they would pin the
	// gated field to a constant visibility.
	for i, st := range s.Steps {
		for j, f := range st.Fields {
			fpath := fmt.Sprintf("steps[%d].fields[%d]", i, j)
			if f.ShowWhen != nil {
				if _, ok := ids[f.ShowWhen.Field]; !ok {
					return invalid(fpath, "showWhen references unknown field %q", f.ShowWhen.Field)
				}
			}
			if f.Required.When != nil {
				if _, ok := ids[f.Required.When.Field]; !ok {
					return invalid(fpath, "required.when references unknown field %q", f.Required.When.Field)
				}
			}
		}
	}

	return nil
}
