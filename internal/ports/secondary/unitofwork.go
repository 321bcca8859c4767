package secondary

import "context"

// Store bundles the transaction-scoped repositories. Every mutating
// operation on a grievance runs against one Store instance so that status,
// jurisdiction, authority, SLA deadline and the audit entry commit together
// or not at all.
type Store interface {
	Grievances() GrievanceRepository
	Audit() EscalationAuditRepository
	Followers() FollowerRepository
	Confirmations() ClosureConfirmationRepository
}

// UnitOfWork runs a function inside a single storage transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(s Store) error) error
}
