package resolver

import (
	"errors"
	"fmt"
)

// ErrExecution is matched by every ExecutionError.
var ErrExecution = errors.New("query execution failed")

// ExecutionError reports a query that could not be run. Resolution stops at
// the first one; it is never treated as an empty result.
type ExecutionError struct {
	TableID string
	Index   int
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: table %s query %d: %v", ErrExecution, e.TableID, e.Index, e.Err)
}

func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecution, e.Err}
}

// UnknownTableError is returned when a restricted lookup names a table the
// catalog does not declare.
type UnknownTableError struct {
	TableID string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q", e.TableID)
}
