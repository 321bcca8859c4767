package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/nivaran/internal/ports/secondary"
)

// GrievanceRepository implements secondary.GrievanceRepository with SQLite.
type GrievanceRepository struct {
	db DBTX
}

// NewGrievanceRepository creates a new SQLite grievance repository.
func NewGrievanceRepository(db DBTX) *GrievanceRepository {
	return &GrievanceRepository{db: db}
}

const grievanceSelectCols = `id, category, severity, description, pincode, city, district, state,
	latitude, longitude, jurisdiction_id, assigned_authority, sla_deadline, status, source_issue_id,
	pending_closure, closure_requested_at, closure_confirmation_deadline, closure_approved,
	required_confirmations, version, created_at, updated_at, resolved_at`

// Create persists a new grievance.
func (r *GrievanceRepository) Create(ctx context.Context, g *secondary.GrievanceRecord) error {
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = g.CreatedAt
	if g.Version == 0 {
		g.Version = 1
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO grievances (id, category, severity, description, pincode, city, district, state,
			latitude, longitude, jurisdiction_id, assigned_authority, sla_deadline, status, source_issue_id,
			pending_closure, closure_requested_at, closure_confirmation_deadline, closure_approved,
			required_confirmations, version, created_at, updated_at, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Category, g.Severity, g.Description, g.Pincode, g.City, g.District, g.State,
		nullFloat(g.Latitude), nullFloat(g.Longitude), g.JurisdictionID, g.AssignedAuthority,
		g.SLADeadline.UTC(), g.Status, g.SourceIssueID,
		g.PendingClosure, nullTime(g.ClosureRequestedAt), nullTime(g.ClosureDeadline), g.ClosureApproved,
		g.RequiredConfirmations, g.Version, g.CreatedAt, g.UpdatedAt, nullTime(g.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create grievance: %w", err)
	}
	return nil
}

// GetByID retrieves a grievance by its ID.
func (r *GrievanceRepository) GetByID(ctx context.Context, id string) (*secondary.GrievanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+grievanceSelectCols+" FROM grievances WHERE id = ?", id)
	record, err := scanGrievance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("grievance %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grievance: %w", err)
	}
	return record, nil
}

// List retrieves grievances matching the given filters, newest first.
func (r *GrievanceRepository) List(ctx context.Context, filters secondary.GrievanceFilters) ([]*secondary.GrievanceRecord, error) {
	query := "SELECT " + grievanceSelectCols + " FROM grievances WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.Severity != "" {
		query += " AND severity = ?"
		args = append(args, filters.Severity)
	}
	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}
	if filters.JurisdictionID != "" {
		query += " AND jurisdiction_id = ?"
		args = append(args, filters.JurisdictionID)
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances: %w", err)
	}
	defer rows.Close()

	var records []*secondary.GrievanceRecord
	for rows.Next() {
		record, err := scanGrievance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grievance: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Update writes all mutable fields guarded by the record's version.
// The stored version is bumped; a zero-row update on an existing grievance
// means someone else got there first and maps to ErrConflict.
func (r *GrievanceRepository) Update(ctx context.Context, g *secondary.GrievanceRecord) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE grievances SET
			severity = ?, description = ?, jurisdiction_id = ?, assigned_authority = ?,
			sla_deadline = ?, status = ?, pending_closure = ?, closure_requested_at = ?,
			closure_confirmation_deadline = ?, closure_approved = ?, required_confirmations = ?,
			version = version + 1, updated_at = ?, resolved_at = ?
		 WHERE id = ? AND version = ?`,
		g.Severity, g.Description, g.JurisdictionID, g.AssignedAuthority,
		g.SLADeadline.UTC(), g.Status, g.PendingClosure, nullTime(g.ClosureRequestedAt),
		nullTime(g.ClosureDeadline), g.ClosureApproved, g.RequiredConfirmations,
		now, nullTime(g.ResolvedAt),
		g.ID, g.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update grievance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM grievances WHERE id = ?", g.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check grievance existence: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("grievance %s: %w", g.ID, secondary.ErrNotFound)
		}
		return fmt.Errorf("grievance %s: %w", g.ID, secondary.ErrConflict)
	}

	g.Version++
	g.UpdatedAt = now
	return nil
}

// ListOverdue retrieves IDs of active grievances with a breached SLA deadline.
func (r *GrievanceRepository) ListOverdue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM grievances
		 WHERE status IN ('open', 'in_progress', 'escalated') AND sla_deadline < ?
		 ORDER BY sla_deadline`,
		now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue grievances: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ListClosureExpired retrieves IDs of grievances with a lapsed closure window.
func (r *GrievanceRepository) ListClosureExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM grievances
		 WHERE pending_closure = 1 AND closure_confirmation_deadline < ?
		 ORDER BY closure_confirmation_deadline`,
		now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired closure windows: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// GetNextID returns the next available grievance ID.
func (r *GrievanceRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM grievances",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next grievance ID: %w", err)
	}
	return fmt.Sprintf("GRV-%03d", maxID+1), nil
}

// CountByStatus aggregates grievance counts per status.
func (r *GrievanceRepository) CountByStatus(ctx context.Context) (secondary.StatusCounts, error) {
	var counts secondary.StatusCounts
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM grievances GROUP BY status")
	if err != nil {
		return counts, fmt.Errorf("failed to count grievances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("failed to scan grievance counts: %w", err)
		}
		counts.Total += n
		switch status {
		case "open":
			counts.Open = n
		case "in_progress":
			counts.InProgress = n
		case "escalated":
			counts.Escalated = n
		case "resolved":
			counts.Resolved = n
		}
	}
	return counts, rows.Err()
}

func scanGrievance(row rowScanner) (*secondary.GrievanceRecord, error) {
	var (
		record               secondary.GrievanceRecord
		latitude, longitude  sql.NullFloat64
		closureRequestedAt   sql.NullTime
		closureDeadline      sql.NullTime
		resolvedAt           sql.NullTime
		slaDeadline          time.Time
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&record.ID, &record.Category, &record.Severity, &record.Description,
		&record.Pincode, &record.City, &record.District, &record.State,
		&latitude, &longitude, &record.JurisdictionID, &record.AssignedAuthority,
		&slaDeadline, &record.Status, &record.SourceIssueID,
		&record.PendingClosure, &closureRequestedAt, &closureDeadline, &record.ClosureApproved,
		&record.RequiredConfirmations, &record.Version, &createdAt, &updatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if latitude.Valid {
		record.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		record.Longitude = &longitude.Float64
	}
	record.SLADeadline = slaDeadline
	record.CreatedAt = createdAt
	record.UpdatedAt = updatedAt
	if closureRequestedAt.Valid {
		record.ClosureRequestedAt = &closureRequestedAt.Time
	}
	if closureDeadline.Valid {
		record.ClosureDeadline = &closureDeadline.Time
	}
	if resolvedAt.Valid {
		record.ResolvedAt = &resolvedAt.Time
	}
	return &record, nil
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
