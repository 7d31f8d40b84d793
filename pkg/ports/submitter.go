package ports

import (
	"context"

	"github.com/alpha-nc/intake/pkg/session"
)

// Submitter performs the single network submission. Implementations must
// honor the context deadline; the controller treats an exceeded deadline as
// a distinct timeout failure. A non-nil Result with OK=false is a
// structured server failure, a transport error is returned as err.
type Submitter interface {
	Submit(ctx context.Context, payload *session.Payload) (*session.Result, error)
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, payload *session.Payload) (*session.Result, error)

// Submit delegates to the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, payload *session.Payload) (*session.Result, error) {
	return fn(ctx, payload)
}
