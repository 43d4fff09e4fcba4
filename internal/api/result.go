package api

import "fmt"

// Status says where a Result's value came from.
type Status int

const (
	// StatusOK means the backend answered and the value is real data.
	StatusOK Status = iota
	// StatusDegraded means the backend could not be used and the value is
	// fallback demo data. Err carries the reason.
	StatusDegraded
	// StatusFailed means there is no usable value. Err carries the reason.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of one API operation.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK wraps a value received from the backend.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

// Degraded wraps fallback data together with the failure that caused it.
func Degraded[T any](v T, reason error) Result[T] {
	return Result[T]{Value: v, Status: StatusDegraded, Err: reason}
}

// Failed reports an operation that produced nothing usable.
func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

// Usable reports whether Value may be shown, real or demo.
func (r Result[T]) Usable() bool { return r.Status != StatusFailed }

// IsDegraded reports whether Value is fallback data.
func (r Result[T]) IsDegraded() bool { return r.Status == StatusDegraded }

// Reason returns the error text, or "" for OK results.
func (r Result[T]) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
