package report

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a required report element that is missing. It is fatal.
	ErrNotFound = errors.New("report: element not found")
	// ErrConsistency marks grade data that contradicts itself. It is fatal.
	ErrConsistency = errors.New("report: inconsistent grade data")
)

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// ParseError is a recoverable failure to read a single cell. Callers log it
// and drop the cell.
type ParseError struct {
	What string
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("report: cannot parse %s from %q: %v", e.What, e.Text, e.Err)
	}
	return fmt.Sprintf("report: cannot parse %s from %q", e.What, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConsistencyError names the participants involved in a fatal mismatch.
type ConsistencyError struct {
	Reason string
	A, B   string
}

func (e *ConsistencyError) Error() string {
	if e.B == "" {
		return fmt.Sprintf("report: %s: %s", e.Reason, e.A)
	}
	return fmt.Sprintf("report: %s: %s / %s", e.Reason, e.A, e.B)
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }
