package primary

import "context"

// GrievanceService defines the primary port for the grievance lifecycle:
// intake, status changes, followers, audit trail and reporting.
type GrievanceService interface {
	// CreateGrievance routes a new grievance to a jurisdiction, assigns an
	// authority and SLA deadline, and persists it with status open.
	// Fails with ErrRoutingFailure when no jurisdiction matches.
	CreateGrievance(ctx context.Context, req CreateGrievanceRequest) (*CreateGrievanceResponse, error)

	// GetGrievance retrieves a grievance by ID.
	GetGrievance(ctx context.Context, grievanceID string) (*Grievance, error)

	// ListGrievances lists grievances with optional filters.
	ListGrievances(ctx context.Context, filters GrievanceFilters) ([]*Grievance, error)

	// UpdateStatus applies a status change checked against the
	// allowed-transitions table; illegal transitions fail with
	// ErrValidation and no mutation.
	UpdateStatus(ctx context.Context, grievanceID, status string) (*Grievance, error)

	// Follow registers a user as a follower of a grievance.
	Follow(ctx context.Context, grievanceID, userID string) error

	// ListFollowers lists the followers of a grievance.
	ListFollowers(ctx context.Context, grievanceID string) ([]*Follower, error)

	// GetAuditTrail returns escalation audit entries ordered by timestamp
	// ascending.
	GetAuditTrail(ctx context.Context, grievanceID string) ([]*AuditEntry, error)

	// Stats aggregates grievance counts and the escalation rate.
	Stats(ctx context.Context) (*EscalationStats, error)
}

// CreateGrievanceRequest carries intake data for a new grievance.
type CreateGrievanceRequest struct {
	Category    string
	Severity    string
	Description string
	Pincode     string
	City        string
	District    string
	State       string
	Latitude    *float64
	Longitude   *float64
	// SourceIssueID optionally links the originating report.
	SourceIssueID string
}

// CreateGrievanceResponse returns the new grievance and its ID.
type CreateGrievanceResponse struct {
	GrievanceID string
	Grievance   *Grievance
}

// Grievance represents a grievance entity at the port boundary.
// Timestamps are RFC3339 strings; empty when unset.
type Grievance struct {
	ID                string
	Category          string
	Severity          string
	Description       string
	Pincode           string
	City              string
	District          string
	State             string
	JurisdictionID    string
	JurisdictionLevel string
	AssignedAuthority string
	Status            string
	SLADeadline       string
	SourceIssueID     string

	PendingClosure        bool
	ClosureRequestedAt    string
	ClosureDeadline       string
	ClosureApproved       bool
	RequiredConfirmations int

	CreatedAt  string
	UpdatedAt  string
	ResolvedAt string
}

// GrievanceFilters contains filter options for listing grievances.
type GrievanceFilters struct {
	Status         string
	Severity       string
	Category       string
	JurisdictionID string
	Limit          int
}

// Follower represents a follower entity at the port boundary.
type Follower struct {
	GrievanceID string
	UserID      string
	FollowedAt  string
}

// AuditEntry represents an escalation audit entry at the port boundary.
type AuditEntry struct {
	ID                string
	GrievanceID       string
	PreviousAuthority string
	NewAuthority      string
	Reason            string
	Notes             string
	CreatedAt         string
}

// EscalationStats summarizes the grievance population.
type EscalationStats struct {
	Total          int
	Open           int
	InProgress     int
	Escalated      int
	Resolved       int
	Active         int
	EscalationRate float64
}
