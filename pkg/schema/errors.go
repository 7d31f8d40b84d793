package schema

import "fmt"

// ValidationError describes a structural problem in a schema document.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Path, e.Reason)
}

func invalid(path, format string, args ...any) error {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
