package schema

// Visible reports whether the field should currently be shown.
func (f *Field) Visible(answers map[string]any) bool {
	return f.ShowWhen == nil || Evaluate(answers, f.ShowWhen)
}

// RequiredNow resolves the field's requiredness against the current
// answers: plain booleans are taken as-is, conditional requirements are
// evaluated like visibility conditions.
func (f *Field) RequiredNow(answers map[string]any) bool {
	if f.Required.When != nil {
		return Evaluate(answers, f.Required.When)
	}
	return f.Required.Always
}
