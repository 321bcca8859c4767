package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/nivaran/internal/core/sla"
	"github.com/example/nivaran/internal/ports/secondary"
)

// SLACalculator resolves SLA hours through the ordered fallback policy
// lookup. The policy table is read-mostly and cached after first load.
type SLACalculator struct {
	repo         secondary.SLAPolicyRepository
	defaultHours int

	mu       sync.RWMutex
	policies []sla.Policy
	loaded   bool
}

// NewSLACalculator creates a calculator over the policy repository.
// defaultHours is the hard fallback when no policy matches.
func NewSLACalculator(repo secondary.SLAPolicyRepository, defaultHours int) *SLACalculator {
	return &SLACalculator{repo: repo, defaultHours: defaultHours}
}

// Hours resolves the SLA hours for a (severity, level, department) triple.
func (c *SLACalculator) Hours(ctx context.Context, severity, level, department string) (int, error) {
	policies, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	return sla.Resolve(policies, severity, level, department, c.defaultHours), nil
}

// Deadline computes a fresh SLA deadline from the given moment.
func (c *SLACalculator) Deadline(ctx context.Context, from time.Time, severity, level, department string) (time.Time, error) {
	hours, err := c.Hours(ctx, severity, level, department)
	if err != nil {
		return time.Time{}, err
	}
	return sla.Deadline(from, hours), nil
}

// Invalidate drops the cached policy table. Call after administrative
// writes to sla_policies.
func (c *SLACalculator) Invalidate() {
	c.mu.Lock()
	c.policies = nil
	c.loaded = false
	c.mu.Unlock()
}

func (c *SLACalculator) load(ctx context.Context) ([]sla.Policy, error) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.policies, nil
	}
	c.mu.RUnlock()

	records, err := c.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sla policies: %w", err)
	}

	policies := make([]sla.Policy, len(records))
	for i, r := range records {
		policies[i] = sla.Policy{
			Severity:   r.Severity,
			Level:      r.Level,
			Department: r.Department,
			Hours:      r.Hours,
		}
	}

	c.mu.Lock()
	c.policies = policies
	c.loaded = true
	c.mu.Unlock()
	return policies, nil
}
