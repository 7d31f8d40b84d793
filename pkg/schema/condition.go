package schema

// Condition gates field visibility or requiredness on another answer.
// Exactly one of Equals, NotEquals or Includes should be set; Includes only
// matches when the referenced answer is a list of strings.
type Condition struct {
	Field     string `json:"field" yaml:"field"`
	Equals    any    `json:"equals,omitempty" yaml:"equals,omitempty"`
	NotEquals any    `json:"not_equals,omitempty" yaml:"not_equals,omitempty"`
	Includes  any    `json:"includes,omitempty" yaml:"includes,omitempty"`
}

// Evaluate resolves a condition against the current answers. A nil condition
// is true. A missing answer compares as the zero value of the comparand's
// type, so the function is total: it never errors and never panics.
// Includes on anything that is not a string list is false.
func Evaluate(answers map[string]any, cond *Condition) bool {
	if cond == nil {
		return true
	}
	v := answers[cond.Field]

	switch {
	case cond.Equals != nil:
		return equal(v, cond.Equals)
	case cond.NotEquals != nil:
		return !equal(v, cond.NotEquals)
	case cond.Includes != nil:
		want, ok := cond.Includes.(string)
		if !ok {
			return false
		}
		for _, item := range asStringSlice(v) {
			if item == want {
				return true
			}
		}
		return false
	}
	return true
}

// equal compares an answer with a comparand, coercing a missing answer to
// the comparand type's zero value.
func equal(v, want any) bool {
	switch w := want.(type) {
	case string:
		s, _ := v.(string)
		return s == w
	case bool:
		b, _ := v.(bool)
		return b == w
	case float64:
		return asNumber(v) == w
	case int:
		return asNumber(v) == float64(w)
	default:
		return false
	}
}

func asNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asStringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}
