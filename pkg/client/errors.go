package client

import (
	"context"
	"fmt"

	"github.com/nikogura/plclient/pkg/lifter"
	"github.com/pkg/errors"
)

var (
	// ErrTransport covers connection errors and non-success HTTP statuses. It is never retried here.
	ErrTransport = errors.New("transport failure")
	// ErrCancelled is returned when the caller's context ends before the call completes.
	ErrCancelled = errors.New("cancelled")
	// ErrNotFound is returned when a lifter export holds no data rows.
	ErrNotFound = errors.New("not found")
	// ErrDecode is returned when a row or response does not match the expected schema.
	ErrDecode = lifter.ErrDecode
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("client is closed")
)

// StatusError records a non-success HTTP response. It matches ErrTransport.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() (msg string) {
	msg = fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
	return msg
}

// Unwrap lets errors.Is match ErrTransport.
func (e *StatusError) Unwrap() (err error) {
	err = ErrTransport
	return err
}

// classify maps a failure observed while ctx was live into the public taxonomy.
// A done context wins over whatever error the transport surfaced.
func classify(ctx context.Context, err error, msg string) (out error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		out = errors.Wrapf(ErrCancelled, "%s: %v", msg, ctxErr)
		return out
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		out = errors.Wrapf(ErrCancelled, "%s: %v", msg, err)
		return out
	}
	out = errors.Wrapf(ErrTransport, "%s: %v", msg, err)
	return out
}
