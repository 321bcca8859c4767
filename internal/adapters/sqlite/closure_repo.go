package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/nivaran/internal/ports/secondary"
)

// ConfirmationRepository implements secondary.ClosureConfirmationRepository
// with SQLite.
type ConfirmationRepository struct {
	db DBTX
}

// NewConfirmationRepository creates a new SQLite confirmation repository.
func NewConfirmationRepository(db DBTX) *ConfirmationRepository {
	return &ConfirmationRepository{db: db}
}

// Create persists a confirmation. The UNIQUE(grievance_id, user_id)
// constraint turns a second response into ErrDuplicate.
func (r *ConfirmationRepository) Create(ctx context.Context, c *secondary.ConfirmationRecord) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO closure_confirmations (id, grievance_id, user_id, type, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.GrievanceID, c.UserID, c.Type, c.Reason, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s already responded for grievance %s: %w", c.UserID, c.GrievanceID, secondary.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create confirmation: %w", err)
	}
	return nil
}

// Exists reports whether the user already responded.
func (r *ConfirmationRepository) Exists(ctx context.Context, grievanceID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM closure_confirmations WHERE grievance_id = ? AND user_id = ?",
		grievanceID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check confirmation: %w", err)
	}
	return count > 0, nil
}

// Counts aggregates confirmed and disputed responses for a grievance.
func (r *ConfirmationRepository) Counts(ctx context.Context, grievanceID string) (secondary.ConfirmationCounts, error) {
	var counts secondary.ConfirmationCounts
	rows, err := r.db.QueryContext(ctx,
		"SELECT type, COUNT(*) FROM closure_confirmations WHERE grievance_id = ? GROUP BY type",
		grievanceID,
	)
	if err != nil {
		return counts, fmt.Errorf("failed to count confirmations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return counts, fmt.Errorf("failed to scan confirmation counts: %w", err)
		}
		switch kind {
		case "confirmed":
			counts.Confirmed = n
		case "disputed":
			counts.Disputed = n
		}
	}
	return counts, rows.Err()
}
