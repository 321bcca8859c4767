// Package closure contains the pure business logic for the quorum-based
// closure confirmation workflow. This is part of the Functional Core -
// no I/O, only pure functions.
package closure

import (
	"fmt"
	"time"
)

const (
	// ConfirmationThreshold is the fraction of followers whose
	// confirmation approves a closure.
	ConfirmationThreshold = 0.60
	// ConfirmationTimeout is how long a closure window stays open.
	ConfirmationTimeout = 7 * 24 * time.Hour
	// MinFollowersForQuorum is the follower count below which closure
	// resolves immediately without a confirmation window.
	MinFollowersForQuorum = 3
)

// ConfirmationType is a follower's response to a closure request.
type ConfirmationType string

const (
	Confirmed ConfirmationType = "confirmed"
	Disputed  ConfirmationType = "disputed"
)

// ParseConfirmationType validates a raw confirmation type.
func ParseConfirmationType(s string) (ConfirmationType, error) {
	switch ConfirmationType(s) {
	case Confirmed, Disputed:
		return ConfirmationType(s), nil
	}
	return "", fmt.Errorf("unknown confirmation type %q (valid: confirmed, disputed)", s)
}

// RequiredConfirmations computes the quorum for a follower count:
// max(1, floor(followers * 0.60)).
func RequiredConfirmations(followers int) int {
	required := int(float64(followers) * ConfirmationThreshold)
	if required < 1 {
		required = 1
	}
	return required
}

// NeedsQuorum reports whether a closure request must go through the
// confirmation window, or may resolve immediately.
func NeedsQuorum(followers int) bool {
	return followers >= MinFollowersForQuorum
}

// QuorumReached reports whether enough confirmations arrived.
func QuorumReached(confirmed, required int) bool {
	return confirmed >= required
}

// WindowDeadline computes the confirmation deadline for a window opened
// at the given moment.
func WindowDeadline(requestedAt time.Time) time.Time {
	return requestedAt.Add(ConfirmationTimeout)
}

// SubmitContext provides context for confirmation submission guards.
type SubmitContext struct {
	GrievanceID      string
	PendingClosure   bool
	IsFollower       bool
	AlreadyResponded bool
	UserID           string
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanSubmitConfirmation evaluates whether a follower's response can be
// accepted. Rules:
// - The grievance must have an open closure window
// - The user must be a follower of the grievance
// - The user must not have responded already
func CanSubmitConfirmation(ctx SubmitContext) GuardResult {
	if !ctx.PendingClosure {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("grievance %s has no pending closure request", ctx.GrievanceID),
		}
	}
	if !ctx.IsFollower {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("user %s does not follow grievance %s", ctx.UserID, ctx.GrievanceID),
		}
	}
	if ctx.AlreadyResponded {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("user %s already responded to the closure of grievance %s", ctx.UserID, ctx.GrievanceID),
		}
	}
	return GuardResult{Allowed: true}
}
