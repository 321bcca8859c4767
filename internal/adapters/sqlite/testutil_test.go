// Package sqlite_test contains integration tests for the SQLite
// repositories.
//
// setupTestDB is the single point where the schema is loaded for tests,
// via db.GetSchemaSQL(). Test files never hardcode CREATE TABLE
// statements, so column drift between repositories and the schema fails
// immediately with "no such column".
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/nivaran/internal/db"
	"github.com/example/nivaran/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection gets its own :memory: database, so keep
	// the pool at a single connection.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedJurisdiction inserts a test jurisdiction and returns its ID.
func seedJurisdiction(t *testing.T, database *sql.DB, id, level string) string {
	t.Helper()
	if id == "" {
		id = "JUR-001"
	}
	if level == "" {
		level = "district"
	}
	_, err := database.Exec(
		`INSERT INTO jurisdictions (id, name, level, authority, states, districts, cities)
		 VALUES (?, ?, ?, ?, 'karnataka', 'bengaluru-urban', 'bengaluru')`,
		id, "Test Jurisdiction "+id, level, "Test Authority",
	)
	if err != nil {
		t.Fatalf("failed to seed jurisdiction: %v", err)
	}
	return id
}

// seedGrievance inserts a test grievance with the given overrides and
// returns its record. The referenced jurisdiction must already exist.
func seedGrievance(t *testing.T, database *sql.DB, g *secondary.GrievanceRecord) *secondary.GrievanceRecord {
	t.Helper()
	if g == nil {
		g = &secondary.GrievanceRecord{}
	}
	if g.ID == "" {
		g.ID = "GRV-001"
	}
	if g.Category == "" {
		g.Category = "sanitation"
	}
	if g.Severity == "" {
		g.Severity = "medium"
	}
	if g.Status == "" {
		g.Status = "open"
	}
	if g.JurisdictionID == "" {
		g.JurisdictionID = "JUR-001"
	}
	if g.AssignedAuthority == "" {
		g.AssignedAuthority = "Test Authority"
	}
	if g.SLADeadline.IsZero() {
		g.SLADeadline = time.Now().UTC().Add(72 * time.Hour)
	}
	if g.Version == 0 {
		g.Version = 1
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}

	_, err := database.Exec(
		`INSERT INTO grievances (
			id, category, severity, description, pincode, city, district, state,
			jurisdiction_id, assigned_authority, sla_deadline, status, source_issue_id,
			pending_closure, closure_requested_at, closure_confirmation_deadline,
			closure_approved, required_confirmations, version, created_at, updated_at, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Category, g.Severity, g.Description, g.Pincode, g.City, g.District, g.State,
		g.JurisdictionID, g.AssignedAuthority, g.SLADeadline, g.Status, g.SourceIssueID,
		g.PendingClosure, g.ClosureRequestedAt, g.ClosureDeadline,
		g.ClosureApproved, g.RequiredConfirmations, g.Version, g.CreatedAt, g.UpdatedAt, g.ResolvedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed grievance: %v", err)
	}
	return g
}

// seedFollower inserts a follower row.
func seedFollower(t *testing.T, database *sql.DB, grievanceID, userID string) {
	t.Helper()
	_, err := database.Exec(
		"INSERT INTO followers (grievance_id, user_id) VALUES (?, ?)",
		grievanceID, userID,
	)
	if err != nil {
		t.Fatalf("failed to seed follower: %v", err)
	}
}
