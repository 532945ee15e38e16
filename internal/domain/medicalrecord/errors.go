package medicalrecord

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record id resolves to nothing the caller
// could ever see. Handlers map it to 404 and no outcome event is audited.
var ErrNotFound = errors.New("medical record not found")

// ValidationError reports a rejected input. Handlers map it to 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// RepositoryError wraps a storage failure. Handlers map it to 500; the
// wrapped error stays out of the response body.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
