// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"sync"

	"github.com/example/nivaran/internal/ports/secondary"
)

// Directory is a read-through cache over the jurisdiction repository.
// The directory is read-mostly; administrative writes must call Invalidate
// before routing decisions are considered valid again.
type Directory struct {
	repo secondary.JurisdictionRepository

	mu      sync.RWMutex
	byLevel map[string][]*secondary.JurisdictionRecord
	byID    map[string]*secondary.JurisdictionRecord
}

// NewDirectory creates a jurisdiction directory backed by the repository.
func NewDirectory(repo secondary.JurisdictionRepository) *Directory {
	return &Directory{
		repo:    repo,
		byLevel: make(map[string][]*secondary.JurisdictionRecord),
		byID:    make(map[string]*secondary.JurisdictionRecord),
	}
}

// ByLevel returns the jurisdictions at a hierarchy level, ordered by ID.
func (d *Directory) ByLevel(ctx context.Context, level string) ([]*secondary.JurisdictionRecord, error) {
	d.mu.RLock()
	cached, ok := d.byLevel[level]
	d.mu.RUnlock()
	if ok {
		return cached, nil
	}

	records, err := d.repo.ListByLevel(ctx, level)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.byLevel[level] = records
	for _, r := range records {
		d.byID[r.ID] = r
	}
	d.mu.Unlock()
	return records, nil
}

// Get returns a jurisdiction by ID.
func (d *Directory) Get(ctx context.Context, id string) (*secondary.JurisdictionRecord, error) {
	d.mu.RLock()
	cached, ok := d.byID[id]
	d.mu.RUnlock()
	if ok {
		return cached, nil
	}

	record, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.byID[id] = record
	d.mu.Unlock()
	return record, nil
}

// Invalidate drops all cached entries. Call after administrative writes
// to the jurisdiction directory.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	d.byLevel = make(map[string][]*secondary.JurisdictionRecord)
	d.byID = make(map[string]*secondary.JurisdictionRecord)
	d.mu.Unlock()
}
