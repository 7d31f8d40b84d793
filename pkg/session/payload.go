package session

import "time"

// Payload is the single network submission sent at the end of the
// questionnaire.
type Payload struct {
	Meta    Meta           `json:"meta"`
	Answers map[string]any `json:"answers"`
}

// Meta carries the submission timestamp and the tracking context.
type Meta struct {
	SubmittedAt time.Time `json:"submittedAt"`
	Tracking    *Tracking `json:"tracking"`
}
