package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRow      = errors.New("malformed row")
	ErrAllRowsMalformed  = errors.New("every row in the batch is malformed")
	ErrEmptyGraph        = errors.New("graph has no nodes")
	ErrLayoutUnavailable = errors.New("layout engine unavailable")
	ErrQueryFailed       = errors.New("query service failed")
)

// MalformedRowError describes one rejected input row.
type MalformedRowError struct {
	Row    int
	Field  string
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Reason)
}

func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}

// LayoutUnavailableError is returned when the layout engine could not
// produce positions for a graph.
type LayoutUnavailableError struct {
	Err error
}

func (e *LayoutUnavailableError) Error() string {
	if e.Err == nil {
		return ErrLayoutUnavailable.Error()
	}
	return fmt.Sprintf("%s: %v", ErrLayoutUnavailable.Error(), e.Err)
}

func (e *LayoutUnavailableError) Unwrap() error {
	return e.Err
}

func (e *LayoutUnavailableError) Is(target error) bool {
	return target == ErrLayoutUnavailable
}
