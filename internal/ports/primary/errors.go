// Package primary defines the primary ports (driving interfaces) for the
// application: service interfaces and the request/response types exchanged
// at the boundary.
package primary

import "errors"

// Failure taxonomy surfaced to callers. Services wrap these sentinels so
// adapters can branch with errors.Is.
var (
	// ErrRoutingFailure signals that no jurisdiction matches a grievance's
	// category and geography; the grievance is not created.
	ErrRoutingFailure = errors.New("no matching jurisdiction")

	// ErrEscalationFailure signals that no higher jurisdiction level
	// exists or no jurisdiction there matches; the grievance is unchanged.
	ErrEscalationFailure = errors.New("escalation not possible")

	// ErrValidation signals a rejected request (duplicate confirmation,
	// non-follower vote, illegal status transition); no mutation happened.
	ErrValidation = errors.New("validation failed")

	// ErrStorageConflict signals a concurrent-update conflict; the caller
	// retries the whole operation.
	ErrStorageConflict = errors.New("storage conflict")

	// ErrNotFound signals a missing entity.
	ErrNotFound = errors.New("not found")
)
