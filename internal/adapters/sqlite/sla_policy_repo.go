package sqlite

import (
	"context"
	"fmt"

	"github.com/example/nivaran/internal/ports/secondary"
)

// SLAPolicyRepository implements secondary.SLAPolicyRepository with SQLite.
type SLAPolicyRepository struct {
	db DBTX
}

// NewSLAPolicyRepository creates a new SQLite SLA policy repository.
func NewSLAPolicyRepository(db DBTX) *SLAPolicyRepository {
	return &SLAPolicyRepository{db: db}
}

// Create persists a new policy.
func (r *SLAPolicyRepository) Create(ctx context.Context, p *secondary.SLAPolicyRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sla_policies (id, severity, level, department, hours) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Severity, p.Level, p.Department, p.Hours,
	)
	if err != nil {
		return fmt.Errorf("failed to create sla policy: %w", err)
	}
	return nil
}

// List retrieves all policies ordered by ID.
func (r *SLAPolicyRepository) List(ctx context.Context) ([]*secondary.SLAPolicyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, severity, level, department, hours FROM sla_policies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sla policies: %w", err)
	}
	defer rows.Close()

	var records []*secondary.SLAPolicyRecord
	for rows.Next() {
		record := &secondary.SLAPolicyRecord{}
		if err := rows.Scan(&record.ID, &record.Severity, &record.Level, &record.Department, &record.Hours); err != nil {
			return nil, fmt.Errorf("failed to scan sla policy: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
