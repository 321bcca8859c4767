// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application
// drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// Storage-level sentinels. Adapters wrap these so services can map them
// onto the caller-facing failure taxonomy with errors.Is.
var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict signals a concurrent-update conflict; the caller should
	// retry the whole operation.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrDuplicate signals a uniqueness violation.
	ErrDuplicate = errors.New("duplicate record")
)

// JurisdictionRecord represents a jurisdiction as stored in persistence.
// Jurisdictions are seeded administratively and immutable at runtime.
type JurisdictionRecord struct {
	ID              string
	Name            string
	Level           string
	Authority       string
	States          []string
	Districts       []string
	Cities          []string
	DefaultSLAHours int
	CreatedAt       time.Time
}

// JurisdictionRepository defines the secondary port for the jurisdiction
// directory.
type JurisdictionRepository interface {
	// Create persists a new jurisdiction (seed / administrative path).
	Create(ctx context.Context, j *JurisdictionRecord) error

	// GetByID retrieves a jurisdiction by its ID.
	GetByID(ctx context.Context, id string) (*JurisdictionRecord, error)

	// ListByLevel retrieves all jurisdictions at a hierarchy level.
	ListByLevel(ctx context.Context, level string) ([]*JurisdictionRecord, error)

	// List retrieves every jurisdiction, ordered by ID.
	List(ctx context.Context) ([]*JurisdictionRecord, error)
}

// SLAPolicyRecord represents one row of the SLA policy table. Level and
// Department may be empty, acting as wildcards.
type SLAPolicyRecord struct {
	ID         string
	Severity   string
	Level      string
	Department string
	Hours      int
}

// SLAPolicyRepository defines the secondary port for SLA policies.
type SLAPolicyRepository interface {
	// Create persists a new policy (seed / administrative path).
	Create(ctx context.Context, p *SLAPolicyRecord) error

	// List retrieves all policies.
	List(ctx context.Context) ([]*SLAPolicyRecord, error)
}

// GrievanceRecord represents a grievance as stored in persistence.
type GrievanceRecord struct {
	ID                string
	Category          string
	Severity          string
	Description       string
	Pincode           string
	City              string
	District          string
	State             string
	Latitude          *float64
	Longitude         *float64
	JurisdictionID    string
	AssignedAuthority string
	SLADeadline       time.Time
	Status            string
	SourceIssueID     string

	PendingClosure        bool
	ClosureRequestedAt    *time.Time
	ClosureDeadline       *time.Time
	ClosureApproved       bool
	RequiredConfirmations int

	// Version backs optimistic concurrency: updates carry the version they
	// read and fail with ErrConflict when it moved underneath them.
	Version int

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// GrievanceFilters contains filter options for querying grievances.
type GrievanceFilters struct {
	Status         string
	Severity       string
	Category       string
	JurisdictionID string
	Limit          int
}

// StatusCounts aggregates grievances per status.
type StatusCounts struct {
	Total      int
	Open       int
	InProgress int
	Escalated  int
	Resolved   int
}

// GrievanceRepository defines the secondary port for grievance persistence.
type GrievanceRepository interface {
	// Create persists a new grievance.
	Create(ctx context.Context, g *GrievanceRecord) error

	// GetByID retrieves a grievance by its ID.
	GetByID(ctx context.Context, id string) (*GrievanceRecord, error)

	// List retrieves grievances matching the given filters.
	List(ctx context.Context, filters GrievanceFilters) ([]*GrievanceRecord, error)

	// Update writes all mutable grievance fields guarded by the record's
	// version; returns ErrConflict if the stored version moved.
	Update(ctx context.Context, g *GrievanceRecord) error

	// ListOverdue retrieves the IDs of active grievances whose SLA
	// deadline lies before the given moment.
	ListOverdue(ctx context.Context, now time.Time) ([]string, error)

	// ListClosureExpired retrieves the IDs of grievances whose closure
	// window is still pending but whose deadline lies before now.
	ListClosureExpired(ctx context.Context, now time.Time) ([]string, error)

	// GetNextID returns the next available grievance ID.
	GetNextID(ctx context.Context) (string, error)

	// CountByStatus aggregates grievance counts per status.
	CountByStatus(ctx context.Context) (StatusCounts, error)
}

// AuditRecord represents an escalation audit entry. Append-only.
type AuditRecord struct {
	ID                string
	GrievanceID       string
	PreviousAuthority string
	NewAuthority      string
	Reason            string
	Notes             string
	CreatedAt         time.Time
}

// EscalationAuditRepository defines the secondary port for the append-only
// escalation audit trail.
type EscalationAuditRepository interface {
	// Append persists a new audit entry. Entries are never updated.
	Append(ctx context.Context, entry *AuditRecord) error

	// ListByGrievance retrieves a grievance's audit entries ordered by
	// timestamp ascending.
	ListByGrievance(ctx context.Context, grievanceID string) ([]*AuditRecord, error)
}

// FollowerRecord represents a (grievance, user) follow opt-in.
type FollowerRecord struct {
	GrievanceID string
	UserID      string
	CreatedAt   time.Time
}

// FollowerRepository defines the secondary port for grievance followers.
type FollowerRepository interface {
	// Add registers a follower; returns ErrDuplicate when already following.
	Add(ctx context.Context, grievanceID, userID string) error

	// Exists reports whether the user follows the grievance.
	Exists(ctx context.Context, grievanceID, userID string) (bool, error)

	// Count returns the number of followers of a grievance.
	Count(ctx context.Context, grievanceID string) (int, error)

	// List retrieves the followers of a grievance ordered by opt-in time.
	List(ctx context.Context, grievanceID string) ([]*FollowerRecord, error)
}

// ConfirmationRecord represents a follower's closure response.
type ConfirmationRecord struct {
	ID          string
	GrievanceID string
	UserID      string
	Type        string
	Reason      string
	CreatedAt   time.Time
}

// ConfirmationCounts aggregates responses for one closure window.
type ConfirmationCounts struct {
	Confirmed int
	Disputed  int
}

// ClosureConfirmationRepository defines the secondary port for closure
// confirmations. At most one record exists per (grievance, user).
type ClosureConfirmationRepository interface {
	// Create persists a confirmation; returns ErrDuplicate when the user
	// already responded for this grievance.
	Create(ctx context.Context, c *ConfirmationRecord) error

	// Exists reports whether the user already responded.
	Exists(ctx context.Context, grievanceID, userID string) (bool, error)

	// Counts aggregates confirmed and disputed responses for a grievance.
	Counts(ctx context.Context, grievanceID string) (ConfirmationCounts, error)
}
