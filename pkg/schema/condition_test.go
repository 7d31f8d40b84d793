package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alpha-nc/intake/pkg/schema"
)

func TestEvaluate_NilCondition(t *testing.T) {
	assert.True(t, schema.Evaluate(map[string]any{}, nil))
}

func TestEvaluate_Equals(t *testing.T) {
	answers := map[string]any{"agency_type": "studio"}

	cond := &schema.Condition{Field: "agency_type", Equals: "studio"}
	assert.True(t, schema.Evaluate(answers, cond))

	cond = &schema.Condition{Field: "agency_type", Equals: "freelance"}
	assert.False(t, schema.Evaluate(answers, cond))
}

func TestEvaluate_NotEquals(t *testing.T) {
	answers := map[string]any{"goal_type": "growth"}

	cond := &schema.Condition{Field: "goal_type", NotEquals: "retention"}
	assert.True(t, schema.Evaluate(answers, cond))

	cond = &schema.Condition{Field: "goal_type", NotEquals: "growth"}
	assert.False(t, schema.Evaluate(answers, cond))
}

func TestEvaluate_MissingAnswerUsesZeroValue(t *testing.T) {
	empty := map[string]any{}

	// Unset string compares as "".
	assert.True(t, schema.Evaluate(empty, &schema.Condition{Field: "x", Equals: ""}))
	assert.False(t, schema.Evaluate(empty, &schema.Condition{Field: "x", Equals: "set"}))
	assert.True(t, schema.Evaluate(empty, &schema.Condition{Field: "x", NotEquals: "set"}))

	// Unset bool compares as false.
	assert.True(t, schema.Evaluate(empty, &schema.Condition{Field: "x", Equals: false}))
	assert.False(t, schema.Evaluate(empty, &schema.Condition{Field: "x", Equals: true}))

	// Unset number compares as 0.
	assert.True(t, schema.Evaluate(empty, &schema.Condition{Field: "x", Equals: float64(0)}))
	assert.False(t, schema.Evaluate(empty, &schema.Condition{Field: "x", Equals: float64(3)}))
}

func TestEvaluate_Includes(t *testing.T) {
	answers := map[string]any{
		"current_tools": []string{"Notion", "Autre outil"},
	}

	cond := &schema.Condition{Field: "current_tools", Includes: "Autre outil"}
	assert.True(t, schema.Evaluate(answers, cond))

	cond = &schema.Condition{Field: "current_tools", Includes: "Figma"}
	assert.False(t, schema.Evaluate(answers, cond))
}

func TestEvaluate_IncludesOnNonSequence(t *testing.T) {
	cond := &schema.Condition{Field: "x", Includes: "a"}

	// Wrong-typed or missing answers are false, never an error.
	assert.False(t, schema.Evaluate(map[string]any{"x": "a"}, cond))
	assert.False(t, schema.Evaluate(map[string]any{"x": 42}, cond))
	assert.False(t, schema.Evaluate(map[string]any{}, cond))
}

func TestEvaluate_IncludesOnDecodedJSONList(t *testing.T) {
	// Restored snapshots carry []any after JSON decoding.
	answers := map[string]any{"current_tools": []any{"Notion", "Slack"}}
	cond := &schema.Condition{Field: "current_tools", Includes: "Slack"}
	assert.True(t, schema.Evaluate(answers, cond))
}

func TestEvaluate_IsPure(t *testing.T) {
	answers := map[string]any{"a": "1"}
	cond := &schema.Condition{Field: "a", Equals: "1"}

	first := schema.Evaluate(answers, cond)
	second := schema.Evaluate(answers, cond)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]any{"a": "1"}, answers)
}

func TestVisibility_And_Requiredness(t *testing.T) {
	field := schema.Field{
		ID:       "agency_other",
		Type:     schema.FieldText,
		ShowWhen: &schema.Condition{Field: "agency_type", Equals: "other"},
		Required: schema.Requirement{When: &schema.Condition{Field: "agency_type", Equals: "other"}},
	}

	hidden := map[string]any{"agency_type": "studio"}
	assert.False(t, field.Visible(hidden))
	assert.False(t, field.RequiredNow(hidden))

	shown := map[string]any{"agency_type": "other"}
	assert.True(t, field.Visible(shown))
	assert.True(t, field.RequiredNow(shown))
}
