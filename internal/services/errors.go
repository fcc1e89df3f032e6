package services

import (
	"errors"
)

// Sentinel errors form the service-level error taxonomy. Handlers translate
// them to HTTP statuses in one place; service methods wrap them with context
// via fmt.Errorf("%w: ...").
var (
	// ErrNotFound: a referenced entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument: malformed or constraint-violating input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState: the operation is not permitted in the entity's
	// current state (illegal status transition, wrong owner, unavailable
	// doctor).
	ErrInvalidState = errors.New("invalid state")
	// ErrUnauthorized: bad credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrExternalService: the payment gateway call failed or reported a
	// non-success outcome.
	ErrExternalService = errors.New("external service error")
)
