package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/nivaran/internal/ports/secondary"
)

// AuditRepository implements secondary.EscalationAuditRepository with SQLite.
// The escalation_audit table is append-only.
type AuditRepository struct {
	db DBTX
}

// NewAuditRepository creates a new SQLite audit repository.
func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append persists a new audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry *secondary.AuditRecord) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO escalation_audit (id, grievance_id, previous_authority, new_authority, reason, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.GrievanceID, entry.PreviousAuthority, entry.NewAuthority,
		entry.Reason, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListByGrievance retrieves audit entries ordered by timestamp ascending.
func (r *AuditRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]*secondary.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, grievance_id, previous_authority, new_authority, reason, notes, created_at
		 FROM escalation_audit WHERE grievance_id = ? ORDER BY created_at ASC, id ASC`,
		grievanceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditRecord
	for rows.Next() {
		entry := &secondary.AuditRecord{}
		var createdAt time.Time
		if err := rows.Scan(&entry.ID, &entry.GrievanceID, &entry.PreviousAuthority,
			&entry.NewAuthority, &entry.Reason, &entry.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.CreatedAt = createdAt
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
