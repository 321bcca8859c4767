package primary

import "context"

// ClosureService defines the primary port for the quorum-based closure
// confirmation workflow.
type ClosureService interface {
	// RequestClosure opens a confirmation window for a grievance, or
	// resolves it immediately when it has too few followers for a quorum.
	RequestClosure(ctx context.Context, grievanceID string) (*ClosureState, error)

	// SubmitConfirmation records a follower's response and evaluates the
	// quorum. Fails with ErrValidation for non-followers, duplicate
	// responses, or grievances without a pending closure.
	SubmitConfirmation(ctx context.Context, req SubmitConfirmationRequest) (*QuorumResult, error)

	// EvaluateQuorum re-checks the quorum for a pending closure and
	// resolves the grievance when it is met.
	EvaluateQuorum(ctx context.Context, grievanceID string) (*QuorumResult, error)

	// CheckTimeouts scans pending closure windows whose deadline passed
	// without quorum, clears them, and returns how many were reopened.
	CheckTimeouts(ctx context.Context) (int, error)
}

// SubmitConfirmationRequest carries a follower's closure response.
type SubmitConfirmationRequest struct {
	GrievanceID string
	UserID      string
	// Type is "confirmed" or "disputed".
	Type   string
	Reason string
}

// ClosureState reports the outcome of a closure request.
type ClosureState struct {
	GrievanceID           string
	ResolvedImmediately   bool
	PendingClosure        bool
	Followers             int
	RequiredConfirmations int
	Deadline              string
}

// QuorumResult reports the current standing of a closure window.
type QuorumResult struct {
	GrievanceID           string
	Confirmed             int
	Disputed              int
	RequiredConfirmations int
	QuorumReached         bool
	Resolved              bool
}
