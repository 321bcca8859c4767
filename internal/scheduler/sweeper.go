// Package scheduler runs the background sweeps: SLA breach escalations
// and closure window timeouts.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/example/nivaran/internal/ports/primary"
)

// Sweeper owns the cron entries for the periodic sweeps. Each sweep is
// guarded against overlapping runs; a tick that arrives while the
// previous run is still going is skipped.
type Sweeper struct {
	escalation primary.EscalationService
	closure    primary.ClosureService
	cron       *cron.Cron

	escalationMu sync.Mutex
	closureMu    sync.Mutex
}

// NewSweeper creates a sweeper over the escalation and closure services.
func NewSweeper(escalation primary.EscalationService, closure primary.ClosureService) *Sweeper {
	return &Sweeper{
		escalation: escalation,
		closure:    closure,
		cron:       cron.New(),
	}
}

// Start registers the sweeps with their cron specs and starts the
// scheduler. Specs accept the standard five-field syntax and the
// @every descriptors.
func (s *Sweeper) Start(ctx context.Context, escalationSpec, closureSpec string) error {
	if _, err := s.cron.AddFunc(escalationSpec, func() {
		s.RunEscalationCheck(ctx)
	}); err != nil {
		return fmt.Errorf("invalid escalation schedule %q: %w", escalationSpec, err)
	}
	if _, err := s.cron.AddFunc(closureSpec, func() {
		s.RunClosureTimeoutCheck(ctx)
	}); err != nil {
		return fmt.Errorf("invalid closure schedule %q: %w", closureSpec, err)
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for in-flight sweeps to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunEscalationCheck runs one SLA breach sweep. Returns the batch result
// and whether the sweep actually ran; it reports false when a previous
// sweep is still in flight.
func (s *Sweeper) RunEscalationCheck(ctx context.Context) (primary.BatchResult, bool) {
	if !s.escalationMu.TryLock() {
		log.Println("escalation sweep already running, skipping tick")
		return primary.BatchResult{}, false
	}
	defer s.escalationMu.Unlock()

	result, err := s.escalation.EvaluateBatch(ctx)
	if err != nil {
		log.Printf("escalation sweep failed: %v", err)
		return primary.BatchResult{}, true
	}
	if result.Evaluated > 0 {
		log.Printf("escalation sweep: %d overdue, %d escalated", result.Evaluated, result.Escalated)
	}
	return result, true
}

// RunClosureTimeoutCheck runs one closure timeout sweep.
func (s *Sweeper) RunClosureTimeoutCheck(ctx context.Context) (int, bool) {
	if !s.closureMu.TryLock() {
		log.Println("closure sweep already running, skipping tick")
		return 0, false
	}
	defer s.closureMu.Unlock()

	reopened, err := s.closure.CheckTimeouts(ctx)
	if err != nil {
		log.Printf("closure sweep failed: %v", err)
		return 0, true
	}
	if reopened > 0 {
		log.Printf("closure sweep: %d expired windows cleared", reopened)
	}
	return reopened, true
}
