package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/nivaran/internal/ports/primary"
	"github.com/example/nivaran/internal/ports/secondary"
)

// toGrievance converts a persistence record to the port-boundary shape.
// jurisdictionLevel may be empty when the directory lookup was skipped.
func toGrievance(r *secondary.GrievanceRecord, jurisdictionLevel string) *primary.Grievance {
	return &primary.Grievance{
		ID:                r.ID,
		Category:          r.Category,
		Severity:          r.Severity,
		Description:       r.Description,
		Pincode:           r.Pincode,
		City:              r.City,
		District:          r.District,
		State:             r.State,
		JurisdictionID:    r.JurisdictionID,
		JurisdictionLevel: jurisdictionLevel,
		AssignedAuthority: r.AssignedAuthority,
		Status:            r.Status,
		SLADeadline:       formatTime(r.SLADeadline),
		SourceIssueID:     r.SourceIssueID,

		PendingClosure:        r.PendingClosure,
		ClosureRequestedAt:    formatTimePtr(r.ClosureRequestedAt),
		ClosureDeadline:       formatTimePtr(r.ClosureDeadline),
		ClosureApproved:       r.ClosureApproved,
		RequiredConfirmations: r.RequiredConfirmations,

		CreatedAt:  formatTime(r.CreatedAt),
		UpdatedAt:  formatTime(r.UpdatedAt),
		ResolvedAt: formatTimePtr(r.ResolvedAt),
	}
}

func toAuditEntry(r *secondary.AuditRecord) *primary.AuditEntry {
	return &primary.AuditEntry{
		ID:                r.ID,
		GrievanceID:       r.GrievanceID,
		PreviousAuthority: r.PreviousAuthority,
		NewAuthority:      r.NewAuthority,
		Reason:            r.Reason,
		Notes:             r.Notes,
		CreatedAt:         formatTime(r.CreatedAt),
	}
}

func toFollower(r *secondary.FollowerRecord) *primary.Follower {
	return &primary.Follower{
		GrievanceID: r.GrievanceID,
		UserID:      r.UserID,
		FollowedAt:  formatTime(r.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// mapStorageErr lifts storage sentinels into the caller-facing taxonomy.
func mapStorageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, secondary.ErrNotFound):
		return fmt.Errorf("%v: %w", err, primary.ErrNotFound)
	case errors.Is(err, secondary.ErrConflict):
		return fmt.Errorf("%v: %w", err, primary.ErrStorageConflict)
	case errors.Is(err, secondary.ErrDuplicate):
		return fmt.Errorf("%v: %w", err, primary.ErrValidation)
	default:
		return err
	}
}

// validationErr builds an ErrValidation with a descriptive reason.
func validationErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), primary.ErrValidation)
}
