// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/nivaran/internal/ports/secondary"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repository
// code serves pooled reads and transaction-scoped writes.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store bundles the repositories over a single DBTX.
type Store struct {
	grievances    *GrievanceRepository
	audit         *AuditRepository
	followers     *FollowerRepository
	confirmations *ConfirmationRepository
}

// NewStore creates a store over a database handle or transaction.
func NewStore(dbtx DBTX) *Store {
	return &Store{
		grievances:    NewGrievanceRepository(dbtx),
		audit:         NewAuditRepository(dbtx),
		followers:     NewFollowerRepository(dbtx),
		confirmations: NewConfirmationRepository(dbtx),
	}
}

func (s *Store) Grievances() secondary.GrievanceRepository { return s.grievances }
func (s *Store) Audit() secondary.EscalationAuditRepository { return s.audit }
func (s *Store) Followers() secondary.FollowerRepository { return s.followers }
func (s *Store) Confirmations() secondary.ClosureConfirmationRepository { return s.confirmations }

// UnitOfWork implements secondary.UnitOfWork with database transactions.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a unit of work over a database handle.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do runs fn inside one transaction: commit on nil, rollback otherwise.
func (u *UnitOfWork) Do(ctx context.Context, fn func(s secondary.Store) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(NewStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ensure interface compliance
var (
	_ secondary.Store      = (*Store)(nil)
	_ secondary.UnitOfWork = (*UnitOfWork)(nil)
)
