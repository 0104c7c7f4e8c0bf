package domain

import (
	"errors"
	"fmt"
)

// ScopeErrorKind classifies scope resolution failures
type ScopeErrorKind string

const (
	ScopeMissingSubject    ScopeErrorKind = "missing_subject"
	ScopeMissingDepartment ScopeErrorKind = "missing_department"
	ScopeForbidden         ScopeErrorKind = "forbidden"
)

// ScopeError is a terminal, per-request resolution failure. The message is
// never sent and no session mutation occurs.
type ScopeError struct {
	Kind   ScopeErrorKind
	Reason string
}

func (e *ScopeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("scope error (%s): %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("scope error (%s)", e.Kind)
}

// AsScopeError unwraps err into a *ScopeError if it is one
func AsScopeError(err error) (*ScopeError, bool) {
	var se *ScopeError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	// ErrUpstreamUnavailable means a backing service is unreachable and no
	// cached copy could stand in.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidName rejects subject creation with an empty trimmed name
	ErrInvalidName = errors.New("invalid name")

	// ErrSessionBusy rejects a send while a prior send on the same session
	// is still pending.
	ErrSessionBusy = errors.New("session busy")

	// ErrScopeChanged means the session's scope changed while a retrieval
	// call was in flight and the late response was discarded.
	ErrScopeChanged = errors.New("scope changed while request in flight")
)
