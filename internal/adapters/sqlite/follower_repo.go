package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/example/nivaran/internal/ports/secondary"
)

// FollowerRepository implements secondary.FollowerRepository with SQLite.
type FollowerRepository struct {
	db DBTX
}

// NewFollowerRepository creates a new SQLite follower repository.
func NewFollowerRepository(db DBTX) *FollowerRepository {
	return &FollowerRepository{db: db}
}

// Add registers a follower. The (grievance, user) primary key turns a
// repeat follow into ErrDuplicate.
func (r *FollowerRepository) Add(ctx context.Context, grievanceID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO followers (grievance_id, user_id) VALUES (?, ?)",
		grievanceID, userID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s already follows grievance %s: %w", userID, grievanceID, secondary.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to add follower: %w", err)
	}
	return nil
}

// Exists reports whether the user follows the grievance.
func (r *FollowerRepository) Exists(ctx context.Context, grievanceID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM followers WHERE grievance_id = ? AND user_id = ?",
		grievanceID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check follower: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of followers of a grievance.
func (r *FollowerRepository) Count(ctx context.Context, grievanceID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM followers WHERE grievance_id = ?", grievanceID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}
	return count, nil
}

// List retrieves the followers of a grievance ordered by opt-in time.
func (r *FollowerRepository) List(ctx context.Context, grievanceID string) ([]*secondary.FollowerRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT grievance_id, user_id, created_at FROM followers WHERE grievance_id = ? ORDER BY created_at ASC, user_id ASC",
		grievanceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	defer rows.Close()

	var records []*secondary.FollowerRecord
	for rows.Next() {
		record := &secondary.FollowerRecord{}
		var createdAt time.Time
		if err := rows.Scan(&record.GrievanceID, &record.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan follower: %w", err)
		}
		record.CreatedAt = createdAt
		records = append(records, record)
	}
	return records, rows.Err()
}

// isUniqueViolation reports whether err is a sqlite constraint violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
