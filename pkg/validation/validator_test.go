package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpha-nc/intake/pkg/answers"
	"github.com/alpha-nc/intake/pkg/schema"
	"github.com/alpha-nc/intake/pkg/validation"
)

func fptr(v float64) *float64 { return &v }

func contactStep() *schema.Step {
	return &schema.Step{
		Type: schema.StepForm,
		Page: 1,
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldText, Required: schema.Requirement{Always: true}},
			{ID: "email", Type: schema.FieldEmail, Required: schema.Requirement{Always: true}},
			{ID: "team_size", Type: schema.FieldNumber, Min: fptr(1)},
			{ID: "budget", Type: schema.FieldRange, Min: fptr(0), Max: fptr(100)},
			{ID: "gdpr_consent", Type: schema.FieldCheckboxLink, Required: schema.Requirement{Always: true}},
			{ID: "channels", Type: schema.FieldCheckboxes, Options: []string{"seo", "ads", "social"},
				MinItems: 2, Required: schema.Requirement{Always: true}},
			{ID: validation.HoneypotFieldID, Type: schema.FieldText, Hidden: true,
				Required: schema.Requirement{Always: true}},
		},
	}
}

func TestValidate_NonFormStepsAreValid(t *testing.T) {
	store := answers.New()
	assert.True(t, validation.Validate(&schema.Step{Type: schema.StepIntro}, store).OK)
	assert.True(t, validation.Validate(&schema.Step{Type: schema.StepConfirm}, store).OK)
	assert.True(t, validation.Validate(nil, store).OK)
}

func TestValidate_RequiredRules(t *testing.T) {
	step := contactStep()
	store := answers.New()

	r := validation.Validate(step, store)
	require.False(t, r.OK)
	// First offending field in declaration order, recorded once.
	assert.Equal(t, "name", r.FirstInvalid)
	assert.Contains(t, r.FieldErrors, "name")
	assert.Contains(t, r.FieldErrors, "email")
	assert.Contains(t, r.FieldErrors, "gdpr_consent")
	assert.Contains(t, r.FieldErrors, "channels")
	// Honeypot is never validated client-side.
	assert.NotContains(t, r.FieldErrors, validation.HoneypotFieldID)
	// Optional empty fields pass.
	assert.NotContains(t, r.FieldErrors, "team_size")
}

func TestValidate_CheckboxSemantics(t *testing.T) {
	step := contactStep()
	store := answers.New()
	store.SetValue("name", "Acme")
	store.SetValue("email", "team@acme.fr")

	// A checkbox answer that is present but false is still missing.
	store.SetValue("gdpr_consent", false)
	r := validation.Validate(step, store)
	assert.Contains(t, r.FieldErrors, "gdpr_consent")

	store.SetValue("gdpr_consent", true)

	// Checkbox group below minItems.
	store.SetValue("channels", []string{"seo"})
	r = validation.Validate(step, store)
	assert.Contains(t, r.FieldErrors, "channels")
	assert.Equal(t, "Select at least 2 option(s).", r.FieldErrors["channels"])

	store.SetValue("channels", []string{"seo", "ads"})
	r = validation.Validate(step, store)
	assert.True(t, r.OK)
}

func TestValidate_FormatRules(t *testing.T) {
	step := contactStep()
	store := answers.New()
	store.SetValue("name", "Acme")
	store.SetValue("gdpr_consent", true)
	store.SetValue("channels", []string{"seo", "ads"})

	store.SetValue("email", "not-an-email")
	r := validation.Validate(step, store)
	assert.Equal(t, "email", r.FirstInvalid)
	assert.Equal(t, "Invalid email address.", r.FieldErrors["email"])

	store.SetValue("email", "team@acme.fr")

	// Unparsable number survives normalization as a string and fails here.
	store.SetValue("team_size", "a dozen")
	r = validation.Validate(step, store)
	assert.Equal(t, "Invalid number.", r.FieldErrors["team_size"])

	// Parsed but below min.
	store.SetValue("team_size", float64(0))
	r = validation.Validate(step, store)
	assert.Equal(t, "Minimum: 1.", r.FieldErrors["team_size"])

	store.SetValue("team_size", float64(4))
	store.SetValue("budget", "high")
	r = validation.Validate(step, store)
	assert.Equal(t, "Invalid value.", r.FieldErrors["budget"])

	store.SetValue("budget", float64(50))
	assert.True(t, validation.Validate(step, store).OK)
}

func TestValidate_FormatIndependentOfRequiredness(t *testing.T) {
	// team_size is optional but a present malformed value still fails.
	step := contactStep()
	store := answers.New()
	store.SetValue("team_size", "zero")

	r := validation.Validate(step, store)
	assert.Contains(t, r.FieldErrors, "team_size")
}

func TestValidate_SkipsHiddenConditionalFields(t *testing.T) {
	step := &schema.Step{
		Type: schema.StepForm,
		Page: 1,
		Fields: []schema.Field{
			{ID: "agency_type", Type: schema.FieldRadio, Options: []string{"studio", "other"},
				Required: schema.Requirement{Always: true}},
			{ID: "agency_other", Type: schema.FieldText,
				ShowWhen: &schema.Condition{Field: "agency_type", Equals: "other"},
				Required: schema.Requirement{Always: true}},
		},
	}

	store := answers.New()
	store.SetValue("agency_type", "studio")

	// agency_other is invisible, so its required flag is moot.
	assert.True(t, validation.Validate(step, store).OK)

	store.SetValue("agency_type", "other")
	r := validation.Validate(step, store)
	assert.Equal(t, "agency_other", r.FirstInvalid)
}

func TestValidate_Idempotent(t *testing.T) {
	step := contactStep()
	store := answers.New()
	store.SetValue("email", "bad")

	first := validation.Validate(step, store)
	second := validation.Validate(step, store)
	assert.Equal(t, first, second)
	// No mutation of the store either.
	v, _ := store.Get("email")
	assert.Equal(t, "bad", v)
}

func TestFindFirstInvalidStep(t *testing.T) {
	sch := &schema.Schema{
		Version: "v1",
		Steps: []schema.Step{
			{Type: schema.StepIntro},
			{Type: schema.StepForm, Page: 1, Fields: []schema.Field{
				{ID: "a", Type: schema.FieldText, Required: schema.Requirement{Always: true}},
			}},
			{Type: schema.StepForm, Page: 2, Fields: []schema.Field{
				{ID: "b", Type: schema.FieldText, Required: schema.Requirement{Always: true}},
			}},
			{Type: schema.StepConfirm},
		},
	}

	store := answers.New()
	idx, found := validation.FindFirstInvalidStep(sch, store)
	require.True(t, found)
	assert.Equal(t, 1, idx)

	store.SetValue("a", "filled")
	idx, found = validation.FindFirstInvalidStep(sch, store)
	require.True(t, found)
	assert.Equal(t, 2, idx)

	store.SetValue("b", "filled")
	_, found = validation.FindFirstInvalidStep(sch, store)
	assert.False(t, found)
}
