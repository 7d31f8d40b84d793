package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpha-nc/intake"
	"github.com/alpha-nc/intake/pkg/adapters/httpapi"
	"github.com/alpha-nc/intake/pkg/adapters/memory"
	"github.com/alpha-nc/intake/pkg/ports"
	"github.com/alpha-nc/intake/pkg/schema"
	"github.com/alpha-nc/intake/pkg/session"
)

func testEngine(t *testing.T) *intake.Engine {
	t.Helper()
	sch := &schema.Schema{
		Version: "v1",
		Steps: []schema.Step{
			{Type: schema.StepIntro, Title: "Welcome", CTA: "Start"},
			{Type: schema.StepForm, Page: 1, Fields: []schema.Field{
				{ID: "company_name", Type: schema.FieldText, Label: "Company",
					Required: schema.Requirement{Always: true}},
				{ID: "channels", Type: schema.FieldCheckboxes, Label: "Channels",
					Options: []string{"seo", "ads"}},
			}},
			{Type: schema.StepConfirm, Title: "Thanks"},
		},
	}
	return engineFrom(t, sch)
}

func engineFrom(t *testing.T, sch *schema.Schema) *intake.Engine {
	t.Helper()
	sub := ports.SubmitterFunc(func(ctx context.Context, p *session.Payload) (*session.Result, error) {
		return &session.Result{OK: true, SubmissionID: "sub-9", Analysis: "<p>done</p>"}, nil
	})
	engine, err := intake.New(sch, intake.WithStore(memory.NewStore()), intake.WithSubmitter(sub))
	require.NoError(t, err)
	require.NoError(t, engine.Start(context.Background(), nil))
	t.Cleanup(engine.Close)
	return engine
}

type viewResponse struct {
	StepIndex int `json:"stepIndex"`
	Step      struct {
		Type string `json:"type"`
	} `json:"step"`
	Fields []struct {
		ID       string `json:"id"`
		Required bool   `json:"required"`
		Value    any    `json:"value"`
	} `json:"fields"`
	Nav struct {
		NextLabel string `json:"nextLabel"`
		Terminal  bool   `json:"terminal"`
	} `json:"nav"`
	Errors       map[string]string `json:"errors"`
	FirstInvalid string            `json:"firstInvalid"`
	SubmissionID string            `json:"submissionId"`
	Analysis     string            `json:"analysis"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, viewResponse) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var view viewResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	}
	return rec, view
}

func TestHandler_SessionFlow(t *testing.T) {
	h := httpapi.NewHandler(testEngine(t))

	rec, view := do(t, h, http.MethodGet, "/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "intro", view.Step.Type)
	assert.Equal(t, "Start", view.Nav.NextLabel)

	// Advance off the intro.
	_, view = do(t, h, http.MethodPost, "/next", "")
	assert.Equal(t, 1, view.StepIndex)
	require.Len(t, view.Fields, 2)

	// Validation errors surface on the view.
	_, view = do(t, h, http.MethodPost, "/next", "")
	assert.Equal(t, 1, view.StepIndex)
	assert.Equal(t, "company_name", view.FirstInvalid)
	assert.Contains(t, view.Errors, "company_name")

	// Edit, toggle an option, then submit.
	rec, view = do(t, h, http.MethodPost, "/fields/company_name", `{"value":"Acme"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", view.Fields[0].Value)

	_, view = do(t, h, http.MethodPost, "/fields/channels", `{"option":"seo","checked":true}`)
	assert.Equal(t, []any{"seo"}, view.Fields[1].Value)

	_, view = do(t, h, http.MethodPost, "/next", "")
	assert.True(t, view.Nav.Terminal)
	assert.Equal(t, "sub-9", view.SubmissionID)
	assert.Equal(t, "<p>done</p>", view.Analysis)

	// Restart brings the session back to the intro.
	_, view = do(t, h, http.MethodPost, "/restart", "")
	assert.Equal(t, 0, view.StepIndex)
	assert.False(t, view.Nav.Terminal)
}

func TestHandler_CheckboxGroupValueEdit(t *testing.T) {
	// A whole-value edit carries the selection as a JSON array; it must
	// land as a canonical selection that satisfies the min-items rule.
	sch := &schema.Schema{
		Version: "v1",
		Steps: []schema.Step{
			{Type: schema.StepIntro},
			{Type: schema.StepForm, Page: 1, Fields: []schema.Field{
				{ID: "channels", Type: schema.FieldCheckboxes, Label: "Channels",
					Options:  []string{"seo", "ads", "email"},
					Required: schema.Requirement{Always: true},
					MinItems: 2},
			}},
			{Type: schema.StepConfirm},
		},
	}
	h := httpapi.NewHandler(engineFrom(t, sch))

	do(t, h, http.MethodPost, "/next", "")
	rec, view := do(t, h, http.MethodPost, "/fields/channels", `{"value":["seo","ads"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, view.Fields, 1)
	assert.Equal(t, []any{"seo", "ads"}, view.Fields[0].Value)

	_, view = do(t, h, http.MethodPost, "/next", "")
	assert.Empty(t, view.Errors)
	assert.True(t, view.Nav.Terminal)
}

func TestHandler_ConditionalRequiredTracksDriver(t *testing.T) {
	sch := &schema.Schema{
		Version: "v1",
		Steps: []schema.Step{
			{Type: schema.StepIntro},
			{Type: schema.StepForm, Page: 1, Fields: []schema.Field{
				{ID: "wants_report", Type: schema.FieldCheckbox, Label: "Email me the report"},
				{ID: "email", Type: schema.FieldEmail, Label: "Email",
					Required: schema.Requirement{When: &schema.Condition{Field: "wants_report", Equals: true}}},
			}},
			{Type: schema.StepConfirm},
		},
	}
	h := httpapi.NewHandler(engineFrom(t, sch))

	// Until the driver is checked the dependent field renders as optional.
	_, view := do(t, h, http.MethodPost, "/next", "")
	require.Len(t, view.Fields, 2)
	assert.False(t, view.Fields[1].Required)

	_, view = do(t, h, http.MethodPost, "/fields/wants_report", `{"value":true}`)
	assert.True(t, view.Fields[1].Required)

	_, view = do(t, h, http.MethodPost, "/fields/wants_report", `{"value":false}`)
	assert.False(t, view.Fields[1].Required)
}

func TestHandler_UnknownFieldIsBadRequest(t *testing.T) {
	h := httpapi.NewHandler(testEngine(t))

	rec, _ := do(t, h, http.MethodPost, "/fields/nope", `{"value":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_PrevStepsBack(t *testing.T) {
	h := httpapi.NewHandler(testEngine(t))

	do(t, h, http.MethodPost, "/next", "")
	_, view := do(t, h, http.MethodPost, "/prev", "")
	assert.Equal(t, 0, view.StepIndex)
}

func TestHandler_PayloadBehindDebugFlag(t *testing.T) {
	engine := testEngine(t)

	rec, _ := do(t, httpapi.NewHandler(engine), http.MethodGet, "/payload", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, httpapi.NewHandler(engine, httpapi.WithDebug(true)), http.MethodGet, "/payload", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CORS(t *testing.T) {
	h := httpapi.NewHandler(testEngine(t))

	req := httptest.NewRequest(http.MethodOptions, "/session", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
