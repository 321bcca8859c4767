package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/nivaran/internal/core/closure"
	"github.com/example/nivaran/internal/core/grievance"
	"github.com/example/nivaran/internal/ports/primary"
	"github.com/example/nivaran/internal/ports/secondary"
)

// ClosureServiceImpl implements the ClosureService interface.
type ClosureServiceImpl struct {
	uow    secondary.UnitOfWork
	reader secondary.Store

	now func() time.Time
}

// NewClosureService creates a new ClosureService with injected dependencies.
func NewClosureService(uow secondary.UnitOfWork, reader secondary.Store) *ClosureServiceImpl {
	return &ClosureServiceImpl{
		uow:    uow,
		reader: reader,
		now:    time.Now,
	}
}

// RequestClosure opens a confirmation window for a grievance. Grievances
// with fewer than three followers resolve immediately.
func (s *ClosureServiceImpl) RequestClosure(ctx context.Context, grievanceID string) (*primary.ClosureState, error) {
	var state primary.ClosureState
	err := s.uow.Do(ctx, func(store secondary.Store) error {
		record, err := store.Grievances().GetByID(ctx, grievanceID)
		if err != nil {
			return fmt.Errorf("grievance not found: %w", err)
		}
		status := grievance.Status(record.Status)
		if !status.Active() {
			return validationErr("grievance %s is already resolved", record.ID)
		}
		if record.PendingClosure {
			return validationErr("grievance %s already has a pending closure request", record.ID)
		}

		followers, err := store.Followers().Count(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("failed to count followers: %w", err)
		}

		now := s.now().UTC()
		state = primary.ClosureState{
			GrievanceID: record.ID,
			Followers:   followers,
		}

		if !closure.NeedsQuorum(followers) {
			if !grievance.CanTransition(status, grievance.StatusResolved) {
				return validationErr("grievance %s cannot move from %s to resolved", record.ID, status)
			}
			record.Status = string(grievance.StatusResolved)
			record.ClosureApproved = true
			record.ResolvedAt = &now
			record.UpdatedAt = now
			if err := store.Grievances().Update(ctx, record); err != nil {
				return fmt.Errorf("failed to resolve grievance: %w", err)
			}
			state.ResolvedImmediately = true
			return nil
		}

		required := closure.RequiredConfirmations(followers)
		deadline := closure.WindowDeadline(now)

		record.PendingClosure = true
		record.ClosureRequestedAt = &now
		record.ClosureDeadline = &deadline
		record.ClosureApproved = false
		record.RequiredConfirmations = required
		record.UpdatedAt = now
		if err := store.Grievances().Update(ctx, record); err != nil {
			return fmt.Errorf("failed to open closure window: %w", err)
		}

		state.PendingClosure = true
		state.RequiredConfirmations = required
		state.Deadline = formatTime(deadline)
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return &state, nil
}

// SubmitConfirmation records a follower's response and evaluates the
// quorum in the same transaction, so a response that completes the quorum
// also resolves the grievance atomically.
func (s *ClosureServiceImpl) SubmitConfirmation(ctx context.Context, req primary.SubmitConfirmationRequest) (*primary.QuorumResult, error) {
	confirmationType, err := closure.ParseConfirmationType(req.Type)
	if err != nil {
		return nil, validationErr("%v", err)
	}

	var result primary.QuorumResult
	err = s.uow.Do(ctx, func(store secondary.Store) error {
		record, err := store.Grievances().GetByID(ctx, req.GrievanceID)
		if err != nil {
			return fmt.Errorf("grievance not found: %w", err)
		}

		isFollower, err := store.Followers().Exists(ctx, record.ID, req.UserID)
		if err != nil {
			return fmt.Errorf("failed to check follower: %w", err)
		}
		responded, err := store.Confirmations().Exists(ctx, record.ID, req.UserID)
		if err != nil {
			return fmt.Errorf("failed to check prior response: %w", err)
		}

		guard := closure.CanSubmitConfirmation(closure.SubmitContext{
			GrievanceID:      record.ID,
			PendingClosure:   record.PendingClosure,
			IsFollower:       isFollower,
			AlreadyResponded: responded,
			UserID:           req.UserID,
		})
		if !guard.Allowed {
			return validationErr("%s", guard.Reason)
		}

		now := s.now().UTC()
		confirmation := &secondary.ConfirmationRecord{
			GrievanceID: record.ID,
			UserID:      req.UserID,
			Type:        string(confirmationType),
			Reason:      req.Reason,
			CreatedAt:   now,
		}
		if err := store.Confirmations().Create(ctx, confirmation); err != nil {
			return fmt.Errorf("failed to record confirmation: %w", err)
		}

		result, err = s.evaluateTx(ctx, store, record)
		return err
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return &result, nil
}

// EvaluateQuorum re-checks the quorum for a pending closure and resolves
// the grievance when it is met.
func (s *ClosureServiceImpl) EvaluateQuorum(ctx context.Context, grievanceID string) (*primary.QuorumResult, error) {
	var result primary.QuorumResult
	err := s.uow.Do(ctx, func(store secondary.Store) error {
		record, err := store.Grievances().GetByID(ctx, grievanceID)
		if err != nil {
			return fmt.Errorf("grievance not found: %w", err)
		}
		if !record.PendingClosure {
			return validationErr("grievance %s has no pending closure request", record.ID)
		}
		result, err = s.evaluateTx(ctx, store, record)
		return err
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return &result, nil
}

// CheckTimeouts clears closure windows whose deadline passed without
// quorum. The grievance keeps its lifecycle status; only the closure
// bookkeeping resets, so a fresh request can be made later.
func (s *ClosureServiceImpl) CheckTimeouts(ctx context.Context) (int, error) {
	ids, err := s.reader.Grievances().ListClosureExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired closure windows: %w", err)
	}

	reopened := 0
	for _, id := range ids {
		if err := s.uow.Do(ctx, func(store secondary.Store) error {
			record, err := store.Grievances().GetByID(ctx, id)
			if err != nil {
				return fmt.Errorf("grievance not found: %w", err)
			}
			if !record.PendingClosure {
				// Another writer already settled this window.
				return nil
			}

			now := s.now().UTC()
			record.PendingClosure = false
			record.ClosureRequestedAt = nil
			record.ClosureDeadline = nil
			record.ClosureApproved = false
			record.RequiredConfirmations = 0
			record.UpdatedAt = now
			if err := store.Grievances().Update(ctx, record); err != nil {
				return fmt.Errorf("failed to clear closure window: %w", err)
			}
			return nil
		}); err != nil {
			log.Printf("closure sweep: skipping %s: %v", id, err)
			continue
		}
		reopened++
	}
	return reopened, nil
}

// evaluateTx tallies the responses for a grievance's open closure window
// and resolves the grievance when the quorum is met. Must run inside a
// transaction that has already loaded the record.
func (s *ClosureServiceImpl) evaluateTx(ctx context.Context, store secondary.Store, record *secondary.GrievanceRecord) (primary.QuorumResult, error) {
	counts, err := store.Confirmations().Counts(ctx, record.ID)
	if err != nil {
		return primary.QuorumResult{}, fmt.Errorf("failed to count confirmations: %w", err)
	}

	result := primary.QuorumResult{
		GrievanceID:           record.ID,
		Confirmed:             counts.Confirmed,
		Disputed:              counts.Disputed,
		RequiredConfirmations: record.RequiredConfirmations,
		QuorumReached:         closure.QuorumReached(counts.Confirmed, record.RequiredConfirmations),
	}
	if !result.QuorumReached {
		return result, nil
	}

	status := grievance.Status(record.Status)
	if status != grievance.StatusResolved && !grievance.CanTransition(status, grievance.StatusResolved) {
		return primary.QuorumResult{}, validationErr("grievance %s cannot move from %s to resolved", record.ID, status)
	}

	now := s.now().UTC()
	record.Status = string(grievance.StatusResolved)
	record.PendingClosure = false
	record.ClosureApproved = true
	record.ResolvedAt = &now
	record.UpdatedAt = now
	if err := store.Grievances().Update(ctx, record); err != nil {
		return primary.QuorumResult{}, fmt.Errorf("failed to resolve grievance: %w", err)
	}
	result.Resolved = true
	return result, nil
}

var _ primary.ClosureService = (*ClosureServiceImpl)(nil)
