package app

import (
	"context"
	"fmt"

	"github.com/example/nivaran/internal/core/routing"
	"github.com/example/nivaran/internal/ports/primary"
	"github.com/example/nivaran/internal/ports/secondary"
)

// Router resolves grievances to jurisdictions. It combines the pure
// routing logic with the jurisdiction directory and the rules document.
type Router struct {
	directory *Directory
	rules     routing.Rules
}

// NewRouter creates a router over the directory and rules.
func NewRouter(directory *Directory, rules routing.Rules) *Router {
	return &Router{directory: directory, rules: rules}
}

// ResolveInitial determines the target level for a new grievance and picks
// the best-matching jurisdiction there. Fails with ErrRoutingFailure when
// no candidate covers the geography.
func (r *Router) ResolveInitial(ctx context.Context, category string, geo routing.Geography) (*secondary.JurisdictionRecord, error) {
	level := routing.DetermineLevel(category, geo, r.rules)
	return r.ResolveAtLevel(ctx, level, geo)
}

// ResolveAtLevel picks the best-matching jurisdiction at a specific level.
func (r *Router) ResolveAtLevel(ctx context.Context, level routing.Level, geo routing.Geography) (*secondary.JurisdictionRecord, error) {
	records, err := r.directory.ByLevel(ctx, string(level))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s jurisdictions: %w", level, err)
	}

	candidates := make([]routing.Candidate, len(records))
	for i, rec := range records {
		candidates[i] = routing.Candidate{
			ID:        rec.ID,
			Level:     routing.Level(rec.Level),
			States:    rec.States,
			Districts: rec.Districts,
			Cities:    rec.Cities,
		}
	}

	best, ok := routing.SelectBest(candidates, geo)
	if !ok {
		return nil, fmt.Errorf("no %s jurisdiction covers the reported location: %w", level, primary.ErrRoutingFailure)
	}

	for _, rec := range records {
		if rec.ID == best.ID {
			return rec, nil
		}
	}
	// Unreachable: best came from records.
	return nil, fmt.Errorf("jurisdiction %s vanished during resolution: %w", best.ID, primary.ErrRoutingFailure)
}

// Authority resolves the responsible authority for a grievance at a
// jurisdiction, honoring category-specific overrides.
func (r *Router) Authority(j *secondary.JurisdictionRecord, category string) string {
	return routing.AssignAuthority(j.Authority, category, r.rules)
}
