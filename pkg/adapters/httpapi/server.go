// Package httpapi exposes a session engine over HTTP as a small JSON API,
// for embedding the questionnaire behind a web front end.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alpha-nc/intake"
)

// Server wires an intake engine into HTTP handlers.
type Server struct {
	engine *intake.Engine
	debug  bool
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithDebug exposes the read-only payload preview endpoint.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine *intake.Engine, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/session", s.getSession)
	r.Post("/fields/{fieldID}", s.postField)
	r.Post("/next", s.postNext)
	r.Post("/prev", s.postPrev)
	r.Post("/restart", s.postRestart)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.debug {
		r.Get("/payload", s.getPayload)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionView is the render payload for the current step.
type sessionView struct {
	StepIndex    int               `json:"stepIndex"`
	Step         stepView          `json:"step"`
	Fields       []fieldView       `json:"fields,omitempty"`
	Nav          intake.NavState   `json:"nav"`
	Errors       map[string]string `json:"errors,omitempty"`
	FirstInvalid string            `json:"firstInvalid,omitempty"`
	SubmissionID string            `json:"submissionId,omitempty"`
	Analysis     string            `json:"analysis,omitempty"`
}

type stepView struct {
	Type     string   `json:"type"`
	Page     int      `json:"page,omitempty"`
	Title    string   `json:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

type fieldView struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Label    string   `json:"label,omitempty"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required"`
	Unit     string   `json:"unit,omitempty"`
	Value    any      `json:"value,omitempty"`
}

func (s *Server) view(errors map[string]string, firstInvalid string) sessionView {
	step := s.engine.CurrentStep()
	view := sessionView{
		StepIndex: s.engine.StepIndex(),
		Step: stepView{
			Type:     string(step.Type),
			Page:     step.Page,
			Title:    step.Title,
			Subtitle: step.Subtitle,
			Bullets:  step.Bullets,
		},
		Nav:          s.engine.NavState(),
		Errors:       errors,
		FirstInvalid: firstInvalid,
	}
	for _, f := range s.engine.VisibleFields() {
		fv := fieldView{
			ID:      f.ID,
			Type:    string(f.Type),
			Label:   f.Label,
			Options: f.Options,
			Unit:    f.Unit,
		}
		fv.Value, _ = s.engine.Answer(f.ID)
		// Requiredness resolved against live answers so the asterisk tracks
		// conditional requirements.
		fv.Required = s.engine.FieldRequired(f)
		view.Fields = append(view.Fields, fv)
	}
	if s.engine.Terminal() {
		view.SubmissionID = s.engine.SubmissionID()
		view.Analysis = s.engine.Analysis()
	}
	return view
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.view(nil, ""))
}

type fieldEdit struct {
	Value   any     `json:"value,omitempty"`
	Option  *string `json:"option,omitempty"`
	Checked bool    `json:"checked,omitempty"`
}

func (s *Server) postField(w http.ResponseWriter, r *http.Request) {
	fieldID := chi.URLParam(r, "fieldID")

	var body fieldEdit
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("field edit: invalid body", "err", err)
		return
	}

	var err error
	if body.Option != nil {
		err = s.engine.ToggleOption(r.Context(), fieldID, *body.Option, body.Checked)
	} else {
		err = s.engine.Edit(r.Context(), fieldID, body.Value)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, s.view(nil, ""))
}

func (s *Server) postNext(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Next(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.logger.Error("next failed", "err", err)
		return
	}
	s.writeJSON(w, s.view(result.FieldErrors, result.FirstInvalid))
}

func (s *Server) postPrev(w http.ResponseWriter, r *http.Request) {
	s.engine.Prev(r.Context())
	s.writeJSON(w, s.view(nil, ""))
}

func (s *Server) postRestart(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Restart(r.Context(), r.URL.Query()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, s.view(nil, ""))
}

func (s *Server) getPayload(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.PayloadPreview())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}
