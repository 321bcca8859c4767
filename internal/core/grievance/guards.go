package grievance

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// StatusChangeContext provides context for status transition guards.
type StatusChangeContext struct {
	GrievanceID string
	Current     Status
	Target      Status
}

// CanChangeStatus evaluates whether a status change is allowed by the
// lifecycle machine.
func CanChangeStatus(ctx StatusChangeContext) GuardResult {
	if ctx.Current == ctx.Target {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("grievance %s is already %s", ctx.GrievanceID, ctx.Current),
		}
	}
	if !CanTransition(ctx.Current, ctx.Target) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot move grievance %s from %s to %s", ctx.GrievanceID, ctx.Current, ctx.Target),
		}
	}
	return GuardResult{Allowed: true}
}

// EscalateContext provides context for escalation guards.
type EscalateContext struct {
	GrievanceID string
	Status      Status
	HasNext     bool
}

// CanEscalateGrievance evaluates whether an escalation attempt may proceed.
// Rules:
// - Grievance must still be active
// - A higher jurisdiction level must exist
func CanEscalateGrievance(ctx EscalateContext) GuardResult {
	if !ctx.Status.Active() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("grievance %s is %s and cannot be escalated", ctx.GrievanceID, ctx.Status),
		}
	}
	if !ctx.HasNext {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("grievance %s is already at the top of the jurisdiction hierarchy", ctx.GrievanceID),
		}
	}
	return GuardResult{Allowed: true}
}
