package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/nivaran/internal/ports/secondary"
)

// JurisdictionRepository implements secondary.JurisdictionRepository with SQLite.
// Geographic coverage lists are stored as comma-joined lowercase strings.
type JurisdictionRepository struct {
	db DBTX
}

// NewJurisdictionRepository creates a new SQLite jurisdiction repository.
func NewJurisdictionRepository(db DBTX) *JurisdictionRepository {
	return &JurisdictionRepository{db: db}
}

const jurisdictionSelectCols = "id, name, level, authority, states, districts, cities, default_sla_hours, created_at"

// Create persists a new jurisdiction.
func (r *JurisdictionRepository) Create(ctx context.Context, j *secondary.JurisdictionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jurisdictions (id, name, level, authority, states, districts, cities, default_sla_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID,
		j.Name,
		j.Level,
		j.Authority,
		joinList(j.States),
		joinList(j.Districts),
		joinList(j.Cities),
		j.DefaultSLAHours,
	)
	if err != nil {
		return fmt.Errorf("failed to create jurisdiction: %w", err)
	}
	return nil
}

// GetByID retrieves a jurisdiction by its ID.
func (r *JurisdictionRepository) GetByID(ctx context.Context, id string) (*secondary.JurisdictionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+jurisdictionSelectCols+" FROM jurisdictions WHERE id = ?", id)
	record, err := scanJurisdiction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("jurisdiction %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get jurisdiction: %w", err)
	}
	return record, nil
}

// ListByLevel retrieves all jurisdictions at a hierarchy level, ordered by ID.
func (r *JurisdictionRepository) ListByLevel(ctx context.Context, level string) ([]*secondary.JurisdictionRecord, error) {
	return r.list(ctx, "SELECT "+jurisdictionSelectCols+" FROM jurisdictions WHERE level = ? ORDER BY id", level)
}

// List retrieves every jurisdiction, ordered by ID.
func (r *JurisdictionRepository) List(ctx context.Context) ([]*secondary.JurisdictionRecord, error) {
	return r.list(ctx, "SELECT "+jurisdictionSelectCols+" FROM jurisdictions ORDER BY id")
}

func (r *JurisdictionRepository) list(ctx context.Context, query string, args ...any) ([]*secondary.JurisdictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jurisdictions: %w", err)
	}
	defer rows.Close()

	var records []*secondary.JurisdictionRecord
	for rows.Next() {
		record, err := scanJurisdiction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan jurisdiction: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJurisdiction(row rowScanner) (*secondary.JurisdictionRecord, error) {
	var (
		record            secondary.JurisdictionRecord
		states, districts string
		cities            string
		createdAt         time.Time
	)
	err := row.Scan(&record.ID, &record.Name, &record.Level, &record.Authority,
		&states, &districts, &cities, &record.DefaultSLAHours, &createdAt)
	if err != nil {
		return nil, err
	}
	record.States = splitList(states)
	record.Districts = splitList(districts)
	record.Cities = splitList(cities)
	record.CreatedAt = createdAt
	return &record, nil
}

func joinList(items []string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return strings.Join(cleaned, ",")
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
