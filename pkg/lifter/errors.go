package lifter

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDecode marks any row or response that does not match the expected schema.
	ErrDecode = errors.New("decode failure")
	// ErrNoRows is returned when an athlete is assembled from zero rows.
	ErrNoRows = errors.New("no data rows")
)

// FieldError reports a single field that could not be decoded.
type FieldError struct {
	Column int
	Value  string
	Err    error
}

func (e *FieldError) Error() (msg string) {
	name := "?"
	if e.Column >= 0 && e.Column < ColumnCount {
		name = Columns[e.Column]
	}
	msg = fmt.Sprintf("column %d (%s) value %q: %v", e.Column, name, e.Value, e.Err)
	return msg
}

// Unwrap exposes both ErrDecode and the underlying cause to errors.Is / errors.As.
func (e *FieldError) Unwrap() (errs []error) {
	errs = []error{ErrDecode, e.Err}
	return errs
}
