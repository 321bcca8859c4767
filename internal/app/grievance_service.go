package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/nivaran/internal/core/grievance"
	"github.com/example/nivaran/internal/core/routing"
	"github.com/example/nivaran/internal/ports/primary"
	"github.com/example/nivaran/internal/ports/secondary"
)

// GrievanceServiceImpl implements the GrievanceService interface.
type GrievanceServiceImpl struct {
	uow       secondary.UnitOfWork
	reader    secondary.Store
	directory *Directory
	router    *Router
	sla       *SLACalculator

	now func() time.Time
}

// NewGrievanceService creates a new GrievanceService with injected dependencies.
func NewGrievanceService(uow secondary.UnitOfWork, reader secondary.Store, directory *Directory, router *Router, sla *SLACalculator) *GrievanceServiceImpl {
	return &GrievanceServiceImpl{
		uow:       uow,
		reader:    reader,
		directory: directory,
		router:    router,
		sla:       sla,
		now:       time.Now,
	}
}

// CreateGrievance routes a new grievance, assigns an authority and SLA
// deadline, and persists it with status open.
func (s *GrievanceServiceImpl) CreateGrievance(ctx context.Context, req primary.CreateGrievanceRequest) (*primary.CreateGrievanceResponse, error) {
	if strings.TrimSpace(req.Category) == "" {
		return nil, validationErr("category is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, validationErr("description is required")
	}
	severity, err := grievance.ParseSeverity(req.Severity)
	if err != nil {
		return nil, validationErr("%v", err)
	}

	geo := routing.Geography{
		Pincode:  req.Pincode,
		City:     req.City,
		District: req.District,
		State:    req.State,
	}

	// Routing resolves against the cached directory before the write
	// transaction opens. A failure here leaves nothing behind.
	target, err := s.router.ResolveInitial(ctx, req.Category, geo)
	if err != nil {
		return nil, err
	}
	authority := s.router.Authority(target, req.Category)

	now := s.now().UTC()
	deadline, err := s.sla.Deadline(ctx, now, string(severity), target.Level, req.Category)
	if err != nil {
		return nil, err
	}

	var record *secondary.GrievanceRecord
	err = s.uow.Do(ctx, func(store secondary.Store) error {
		id, err := store.Grievances().GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate grievance ID: %w", err)
		}

		record = &secondary.GrievanceRecord{
			ID:                id,
			Category:          req.Category,
			Severity:          string(severity),
			Description:       req.Description,
			Pincode:           req.Pincode,
			City:              req.City,
			District:          req.District,
			State:             req.State,
			Latitude:          req.Latitude,
			Longitude:         req.Longitude,
			JurisdictionID:    target.ID,
			AssignedAuthority: authority,
			SLADeadline:       deadline,
			Status:            string(grievance.StatusOpen),
			SourceIssueID:     req.SourceIssueID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := store.Grievances().Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create grievance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}

	return &primary.CreateGrievanceResponse{
		GrievanceID: record.ID,
		Grievance:   toGrievance(record, target.Level),
	}, nil
}

// GetGrievance retrieves a grievance by ID.
func (s *GrievanceServiceImpl) GetGrievance(ctx context.Context, grievanceID string) (*primary.Grievance, error) {
	record, err := s.reader.Grievances().GetByID(ctx, grievanceID)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("grievance not found: %w", err))
	}
	return toGrievance(record, s.jurisdictionLevel(ctx, record.JurisdictionID)), nil
}

// ListGrievances lists grievances with optional filters.
func (s *GrievanceServiceImpl) ListGrievances(ctx context.Context, filters primary.GrievanceFilters) ([]*primary.Grievance, error) {
	records, err := s.reader.Grievances().List(ctx, secondary.GrievanceFilters{
		Status:         filters.Status,
		Severity:       filters.Severity,
		Category:       filters.Category,
		JurisdictionID: filters.JurisdictionID,
		Limit:          filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances: %w", err)
	}

	grievances := make([]*primary.Grievance, len(records))
	for i, r := range records {
		grievances[i] = toGrievance(r, s.jurisdictionLevel(ctx, r.JurisdictionID))
	}
	return grievances, nil
}

// UpdateStatus applies a status change checked against the lifecycle
// machine. Illegal transitions fail without mutation.
func (s *GrievanceServiceImpl) UpdateStatus(ctx context.Context, grievanceID, status string) (*primary.Grievance, error) {
	target, err := grievance.ParseStatus(status)
	if err != nil {
		return nil, validationErr("%v", err)
	}

	var record *secondary.GrievanceRecord
	err = s.uow.Do(ctx, func(store secondary.Store) error {
		record, err = store.Grievances().GetByID(ctx, grievanceID)
		if err != nil {
			return fmt.Errorf("grievance not found: %w", err)
		}

		guard := grievance.CanChangeStatus(grievance.StatusChangeContext{
			GrievanceID: record.ID,
			Current:     grievance.Status(record.Status),
			Target:      target,
		})
		if !guard.Allowed {
			return validationErr("%s", guard.Reason)
		}

		now := s.now().UTC()
		record.Status = string(target)
		record.UpdatedAt = now
		switch target {
		case grievance.StatusResolved:
			record.ResolvedAt = &now
			record.PendingClosure = false
		case grievance.StatusOpen:
			// Reopening clears the resolution timestamp.
			record.ResolvedAt = nil
			record.ClosureApproved = false
		}
		if err := store.Grievances().Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return toGrievance(record, s.jurisdictionLevel(ctx, record.JurisdictionID)), nil
}

// Follow registers a user as a follower of a grievance. Following is
// idempotent; a repeated follow is not an error.
func (s *GrievanceServiceImpl) Follow(ctx context.Context, grievanceID, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return validationErr("user ID is required")
	}

	err := s.uow.Do(ctx, func(store secondary.Store) error {
		if _, err := store.Grievances().GetByID(ctx, grievanceID); err != nil {
			return fmt.Errorf("grievance not found: %w", err)
		}
		if err := store.Followers().Add(ctx, grievanceID, userID); err != nil {
			if errors.Is(err, secondary.ErrDuplicate) {
				return nil
			}
			return fmt.Errorf("failed to add follower: %w", err)
		}
		return nil
	})
	return mapStorageErr(err)
}

// ListFollowers lists the followers of a grievance.
func (s *GrievanceServiceImpl) ListFollowers(ctx context.Context, grievanceID string) ([]*primary.Follower, error) {
	if _, err := s.reader.Grievances().GetByID(ctx, grievanceID); err != nil {
		return nil, mapStorageErr(fmt.Errorf("grievance not found: %w", err))
	}
	records, err := s.reader.Followers().List(ctx, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}

	followers := make([]*primary.Follower, len(records))
	for i, r := range records {
		followers[i] = toFollower(r)
	}
	return followers, nil
}

// GetAuditTrail returns a grievance's escalation audit entries ordered by
// timestamp ascending.
func (s *GrievanceServiceImpl) GetAuditTrail(ctx context.Context, grievanceID string) ([]*primary.AuditEntry, error) {
	if _, err := s.reader.Grievances().GetByID(ctx, grievanceID); err != nil {
		return nil, mapStorageErr(fmt.Errorf("grievance not found: %w", err))
	}
	records, err := s.reader.Audit().ListByGrievance(ctx, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	entries := make([]*primary.AuditEntry, len(records))
	for i, r := range records {
		entries[i] = toAuditEntry(r)
	}
	return entries, nil
}

// Stats aggregates grievance counts and the escalation rate.
func (s *GrievanceServiceImpl) Stats(ctx context.Context) (*primary.EscalationStats, error) {
	counts, err := s.reader.Grievances().CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count grievances: %w", err)
	}

	stats := &primary.EscalationStats{
		Total:      counts.Total,
		Open:       counts.Open,
		InProgress: counts.InProgress,
		Escalated:  counts.Escalated,
		Resolved:   counts.Resolved,
		Active:     counts.Open + counts.InProgress + counts.Escalated,
	}
	if counts.Total > 0 {
		stats.EscalationRate = float64(counts.Escalated) / float64(counts.Total)
	}
	return stats, nil
}

// jurisdictionLevel resolves the level of a jurisdiction for display.
// A lookup failure degrades to an empty level rather than failing the read.
func (s *GrievanceServiceImpl) jurisdictionLevel(ctx context.Context, jurisdictionID string) string {
	j, err := s.directory.Get(ctx, jurisdictionID)
	if err != nil {
		return ""
	}
	return j.Level
}

var _ primary.GrievanceService = (*GrievanceServiceImpl)(nil)
