package domain

import "fmt"

// Error types for consistent error handling across the service.
// The handler layer maps each to an HTTP status; the core never panics
// on well-formed input.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a malformed or missing request field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidTerms indicates numeric loan terms the amortization engine
// cannot accept (zero term, negative principal or rate, over ceiling).
type ErrInvalidTerms struct {
	Field   string
	Message string
}

func (e *ErrInvalidTerms) Error() string {
	return fmt.Sprintf("invalid loan terms [%s]: %s", e.Field, e.Message)
}

// ErrInvalidStatus indicates an unknown target status or a transition the
// application state machine does not permit.
type ErrInvalidStatus struct {
	Status string
	Reason string
}

func (e *ErrInvalidStatus) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid status %q: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("invalid status %q", e.Status)
}

// ErrTerminalState indicates a transition attempted out of approved or
// rejected, which are terminal.
type ErrTerminalState struct {
	From string
	To   string
}

func (e *ErrTerminalState) Error() string {
	return fmt.Sprintf("application is %s; no further transitions allowed (requested %s)", e.From, e.To)
}

// ErrNotMutable indicates a borrower edit on an application that has
// already left pending.
type ErrNotMutable struct {
	Status string
}

func (e *ErrNotMutable) Error() string {
	if e.Status == "" {
		return "application has left pending and can no longer be modified by its borrower"
	}
	return fmt.Sprintf("application is %s and can no longer be modified by its borrower", e.Status)
}

// ErrForbidden indicates the policy denied the action. Reason carries the
// machine-readable deny reason from the decision table.
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("forbidden: %s", e.Reason)
	}
	return "forbidden"
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict indicates a resource already exists (duplicate username or
// email on registration).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrExternalService indicates a failure in an external collaborator call
// (webhook notifier).
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}
