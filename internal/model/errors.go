package model

import "errors"

// Engine error kinds. Callers branch with errors.Is; services wrap these with
// fmt.Errorf("%w: ...") to attach detail.
var (
	// ErrRequestNotFound — no request exists for the given id.
	ErrRequestNotFound = errors.New("request not found")

	// ErrUnauthorized — the acting role does not match the request's current
	// assignee, or the request is already in a terminal status.
	ErrUnauthorized = errors.New("unauthorized action")

	// ErrInvalidDefinition — a workflow replacement was malformed or would
	// strand in-flight requests.
	ErrInvalidDefinition = errors.New("invalid workflow definition")

	// ErrValidation — required creation fields are missing.
	ErrValidation = errors.New("validation failed")
)
