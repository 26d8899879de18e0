package summary

import (
	"errors"
	"fmt"
)

var (
	ErrSummaryNotFound     = errors.New("monthly summary not found")
	ErrIdentityNotResolved = errors.New("employee identity could not be resolved")
	ErrApprovedLocked      = errors.New("monthly summary is approved and cannot be regenerated")
	ErrSequenceConflict    = errors.New("invoice number already issued")
	ErrAmbiguousEmployee   = errors.New("employee reference matches more than one employee")
	ErrInvalidPeriod       = errors.New("invalid summary period")
	ErrNoInvoice           = errors.New("monthly summary has no invoice number")
)

// ResolutionError means the employee could not be mapped to an attendance identity.
type ResolutionError struct {
	EmployeeRef string
	Reason      string
	Err         error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve employee %q: %s", e.EmployeeRef, e.Reason)
}

func (e *ResolutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrIdentityNotResolved}
	}
	return []error{ErrIdentityNotResolved, e.Err}
}

// AggregationError wraps a failed query or computation step. The surrounding
// transaction is rolled back.
type AggregationError struct {
	Step string
	Err  error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate %s: %v", e.Step, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// SequenceConflictError is returned once invoice number retries are exhausted.
type SequenceConflictError struct {
	Month    int
	Year     int
	Attempts int
	Err      error
}

func (e *SequenceConflictError) Error() string {
	return fmt.Sprintf("invoice sequence for %04d-%02d still conflicting after %d attempts: %v", e.Year, e.Month, e.Attempts, e.Err)
}

func (e *SequenceConflictError) Unwrap() error {
	return e.Err
}
