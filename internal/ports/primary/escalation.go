package primary

import "context"

// Escalation reason constants, persisted on audit entries.
const (
	ReasonSLABreach       = "sla_breach"
	ReasonSeverityUpgrade = "severity_upgrade"
	ReasonManual          = "manual"
)

// EscalationService defines the primary port for escalation operations.
type EscalationService interface {
	// EvaluateBatch scans active grievances with a breached SLA deadline
	// and escalates each one that still has jurisdiction headroom.
	// Per-grievance failures are logged and skipped; the batch continues.
	EvaluateBatch(ctx context.Context) (BatchResult, error)

	// EscalateSeverity updates a grievance's severity and recomputes its
	// SLA deadline. A severity jump of two or more steps additionally
	// triggers an escalation with reason severity_upgrade.
	EscalateSeverity(ctx context.Context, req EscalateSeverityRequest) (*Grievance, error)

	// ManualEscalate unconditionally escalates a grievance. Fails with
	// ErrEscalationFailure, without mutation, when no higher jurisdiction
	// matches.
	ManualEscalate(ctx context.Context, grievanceID, reason string) (*Grievance, error)
}

// EscalateSeverityRequest carries a severity change.
type EscalateSeverityRequest struct {
	GrievanceID string
	NewSeverity string
	Reason      string
}

// BatchResult reports one escalation sweep.
type BatchResult struct {
	Evaluated int
	Escalated int
}
