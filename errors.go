package scoped

import (
	"errors"
	"fmt"
)

// ErrNoSharedScope is returned when a shared dependency is acquired while
// no shared scope is open. The engine never improvises a scope.
var ErrNoSharedScope = errors.New("no open shared scope")

// AcquireError reports a producer failure during acquisition.
type AcquireError struct {
	Producer *Producer
	Input    string // set when one of the producer's inputs failed
	Cause    error
}

func (e *AcquireError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("acquiring input %q of producer %s: %v", e.Input, e.Producer.Name(), e.Cause)
	}
	return fmt.Sprintf("acquiring producer %s: %v", e.Producer.Name(), e.Cause)
}

func (e *AcquireError) Unwrap() error {
	return e.Cause
}

// ReleaseError reports a cleanup failure during scope unwind.
type ReleaseError struct {
	Owner string
	Err   error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("releasing %s: %v", e.Owner, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// ScopeStateError reports use of a shared scope outside its open state.
type ScopeStateError struct {
	State SharedState
	Op    string
}

func (e *ScopeStateError) Error() string {
	return fmt.Sprintf("shared scope is %s: cannot %s", e.State, e.Op)
}
