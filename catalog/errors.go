package catalog

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every FormatError.
var ErrFormat = errors.New("catalog format error")

// FormatError reports a catalog document that does not have the expected shape.
type FormatError struct {
	Key  string // top-level document key, empty when the document itself is wrong
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	switch {
	case e.Key == "":
		return fmt.Sprintf("catalog: line %d: %s", e.Line, e.Msg)
	default:
		return fmt.Sprintf("catalog: %s (line %d): %s", e.Key, e.Line, e.Msg)
	}
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// TemplateError wraps a template that could not be compiled.
type TemplateError struct {
	TableID string
	Index   int
	Err     error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("catalog: table %s, query %d: %v", e.TableID, e.Index, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
