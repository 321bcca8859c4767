package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/nivaran/internal/core/grievance"
	"github.com/example/nivaran/internal/core/routing"
	"github.com/example/nivaran/internal/ports/primary"
	"github.com/example/nivaran/internal/ports/secondary"
)

// EscalationServiceImpl implements the EscalationService interface.
type EscalationServiceImpl struct {
	uow       secondary.UnitOfWork
	reader    secondary.Store
	directory *Directory
	router    *Router
	sla       *SLACalculator

	// now is swappable for tests.
	now func() time.Time
}

// NewEscalationService creates a new EscalationService with injected dependencies.
func NewEscalationService(uow secondary.UnitOfWork, reader secondary.Store, directory *Directory, router *Router, sla *SLACalculator) *EscalationServiceImpl {
	return &EscalationServiceImpl{
		uow:       uow,
		reader:    reader,
		directory: directory,
		router:    router,
		sla:       sla,
		now:       time.Now,
	}
}

// EvaluateBatch scans active grievances whose SLA deadline has passed and
// escalates each one that still has headroom in the hierarchy. Each
// grievance is handled in its own transaction so one failure cannot hold
// back the rest of the sweep.
func (s *EscalationServiceImpl) EvaluateBatch(ctx context.Context) (primary.BatchResult, error) {
	ids, err := s.reader.Grievances().ListOverdue(ctx, s.now().UTC())
	if err != nil {
		return primary.BatchResult{}, fmt.Errorf("failed to list overdue grievances: %w", err)
	}

	result := primary.BatchResult{Evaluated: len(ids)}
	for _, id := range ids {
		if err := s.uow.Do(ctx, func(store secondary.Store) error {
			return s.escalateTx(ctx, store, id, primary.ReasonSLABreach, "sla deadline breached")
		}); err != nil {
			// Grievances at the top of the hierarchy stay overdue; that is
			// expected, not a sweep failure.
			log.Printf("escalation sweep: skipping %s: %v", id, err)
			continue
		}
		result.Escalated++
	}
	return result, nil
}

// EscalateSeverity updates a grievance's severity and recomputes its SLA
// deadline from the current moment. An upgrade of two or more steps
// additionally triggers an escalation with reason severity_upgrade.
func (s *EscalationServiceImpl) EscalateSeverity(ctx context.Context, req primary.EscalateSeverityRequest) (*primary.Grievance, error) {
	newSeverity, err := grievance.ParseSeverity(req.NewSeverity)
	if err != nil {
		return nil, validationErr("%v", err)
	}

	var jump int
	err = s.uow.Do(ctx, func(store secondary.Store) error {
		record, err := store.Grievances().GetByID(ctx, req.GrievanceID)
		if err != nil {
			return fmt.Errorf("grievance not found: %w", err)
		}
		if !grievance.Status(record.Status).Active() {
			return validationErr("grievance %s is %s and cannot change severity", record.ID, record.Status)
		}

		level, err := s.levelOf(ctx, record.JurisdictionID)
		if err != nil {
			return err
		}

		jump = grievance.SeverityJump(grievance.Severity(record.Severity), newSeverity)

		now := s.now().UTC()
		deadline, err := s.sla.Deadline(ctx, now, string(newSeverity), string(level), record.Category)
		if err != nil {
			return err
		}

		record.Severity = string(newSeverity)
		record.SLADeadline = deadline
		record.UpdatedAt = now
		if err := store.Grievances().Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update grievance severity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}

	// A severity jump of 2 or more escalates in a follow-up transaction.
	// The severity change above stands even when the grievance turns out
	// to be at the top of the hierarchy.
	if jump >= 2 {
		notes := fmt.Sprintf("severity raised to %s", newSeverity)
		if strings.TrimSpace(req.Reason) != "" {
			notes = fmt.Sprintf("%s: %s", notes, req.Reason)
		}
		if err := s.uow.Do(ctx, func(store secondary.Store) error {
			return s.escalateTx(ctx, store, req.GrievanceID, primary.ReasonSeverityUpgrade, notes)
		}); err != nil {
			log.Printf("severity upgrade for %s did not escalate: %v", req.GrievanceID, err)
		}
	}

	return s.fetch(ctx, req.GrievanceID)
}

// ManualEscalate unconditionally escalates a grievance one level up.
func (s *EscalationServiceImpl) ManualEscalate(ctx context.Context, grievanceID, notes string) (*primary.Grievance, error) {
	err := s.uow.Do(ctx, func(store secondary.Store) error {
		return s.escalateTx(ctx, store, grievanceID, primary.ReasonManual, notes)
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return s.fetch(ctx, grievanceID)
}

// escalateTx moves a grievance to the next jurisdiction level inside an
// open transaction: new jurisdiction and authority, status escalated, a
// fresh SLA deadline, and one audit entry. Any failure rolls the whole
// escalation back.
func (s *EscalationServiceImpl) escalateTx(ctx context.Context, store secondary.Store, grievanceID, reason, notes string) error {
	record, err := store.Grievances().GetByID(ctx, grievanceID)
	if err != nil {
		return fmt.Errorf("grievance not found: %w", err)
	}

	level, err := s.levelOf(ctx, record.JurisdictionID)
	if err != nil {
		return err
	}
	next, hasNext := routing.NextLevel(level)

	guard := grievance.CanEscalateGrievance(grievance.EscalateContext{
		GrievanceID: record.ID,
		Status:      grievance.Status(record.Status),
		HasNext:     hasNext,
	})
	if !guard.Allowed {
		return fmt.Errorf("%s: %w", guard.Reason, primary.ErrEscalationFailure)
	}

	target, err := s.router.ResolveAtLevel(ctx, next, routing.Geography{
		Pincode:  record.Pincode,
		City:     record.City,
		District: record.District,
		State:    record.State,
	})
	if err != nil {
		return fmt.Errorf("no %s jurisdiction for grievance %s: %w", next, record.ID, primary.ErrEscalationFailure)
	}

	previousAuthority := record.AssignedAuthority
	newAuthority := s.router.Authority(target, record.Category)

	now := s.now().UTC()
	deadline, err := s.sla.Deadline(ctx, now, record.Severity, string(next), record.Category)
	if err != nil {
		return err
	}

	record.JurisdictionID = target.ID
	record.AssignedAuthority = newAuthority
	record.Status = string(grievance.StatusEscalated)
	record.SLADeadline = deadline
	record.UpdatedAt = now
	if err := store.Grievances().Update(ctx, record); err != nil {
		return fmt.Errorf("failed to update grievance: %w", err)
	}

	entry := &secondary.AuditRecord{
		GrievanceID:       record.ID,
		PreviousAuthority: previousAuthority,
		NewAuthority:      newAuthority,
		Reason:            reason,
		Notes:             notes,
		CreatedAt:         now,
	}
	if err := store.Audit().Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// levelOf resolves the hierarchy level of a grievance's jurisdiction.
func (s *EscalationServiceImpl) levelOf(ctx context.Context, jurisdictionID string) (routing.Level, error) {
	j, err := s.directory.Get(ctx, jurisdictionID)
	if err != nil {
		return "", fmt.Errorf("failed to load jurisdiction %s: %w", jurisdictionID, err)
	}
	return routing.Level(j.Level), nil
}

// fetch reloads a grievance after a mutation and maps it to the port shape.
func (s *EscalationServiceImpl) fetch(ctx context.Context, grievanceID string) (*primary.Grievance, error) {
	record, err := s.reader.Grievances().GetByID(ctx, grievanceID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("failed to fetch grievance: %w", err))
	}
	level := ""
	if j, err := s.directory.Get(ctx, record.JurisdictionID); err == nil {
		level = j.Level
	}
	return toGrievance(record, level), nil
}

var _ primary.EscalationService = (*EscalationServiceImpl)(nil)
