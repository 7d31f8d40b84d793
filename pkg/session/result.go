package session

// Well-known error codes for submission failures. TIMEOUT, NETWORK and
// BAD_RESPONSE are synthesized client-side; everything else comes from the
// server's structured ok:false response.
const (
	CodeTimeout         = "TIMEOUT"
	CodeNetwork         = "NETWORK"
	CodeBadResponse     = "BAD_RESPONSE"
	CodeRateLimit       = "RATE_LIMIT"
	CodeMissingAnalysis = "MISSING_ANALYSIS"
)

// Result is the structured outcome of a submission attempt. OK=true carries
// the submission ID and the analysis payload for the confirmation view;
// OK=false carries a machine-readable code and a user-facing message.
type Result struct {
	OK           bool           `json:"ok"`
	SubmissionID string         `json:"submissionId,omitempty"`
	Analysis     string         `json:"analysis_html,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	UserMessage  string         `json:"message_user,omitempty"`
	Details      *ResultDetails `json:"details,omitempty"`
}

// ResultDetails carries machine-readable extras for specific error codes.
type ResultDetails struct {
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

// Failure builds a client-side failure result.
func Failure(code, userMessage string) *Result {
	return &Result{OK: false, ErrorCode: code, UserMessage: userMessage}
}

// RetryAfter returns the rate-limit delay in seconds, or 0 when absent.
func (r *Result) RetryAfter() int {
	if r == nil || r.Details == nil {
		return 0
	}
	return r.Details.RetryAfterSeconds
}
