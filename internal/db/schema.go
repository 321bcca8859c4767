package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// it via GetSchemaSQL(); repository tests never hardcode CREATE TABLE
// statements, so any column drift between repositories and the schema fails
// immediately with "no such column".
const SchemaSQL = `
-- Jurisdictions (static directory, seeded administratively)
CREATE TABLE IF NOT EXISTS jurisdictions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	level TEXT NOT NULL CHECK(level IN ('local', 'district', 'state', 'national')),
	authority TEXT NOT NULL,
	states TEXT NOT NULL DEFAULT '',
	districts TEXT NOT NULL DEFAULT '',
	cities TEXT NOT NULL DEFAULT '',
	default_sla_hours INTEGER NOT NULL DEFAULT 72,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_jurisdictions_level ON jurisdictions(level);

-- SLA policies (wildcard level/department stored as empty string)
CREATE TABLE IF NOT EXISTS sla_policies (
	id TEXT PRIMARY KEY,
	severity TEXT NOT NULL CHECK(severity IN ('low', 'medium', 'high', 'critical')),
	level TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	hours INTEGER NOT NULL,
	UNIQUE(severity, level, department)
);

-- Grievances
CREATE TABLE IF NOT EXISTS grievances (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	severity TEXT NOT NULL CHECK(severity IN ('low', 'medium', 'high', 'critical')),
	description TEXT NOT NULL DEFAULT '',
	pincode TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	district TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	latitude REAL,
	longitude REAL,
	jurisdiction_id TEXT NOT NULL,
	assigned_authority TEXT NOT NULL,
	sla_deadline DATETIME NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('open', 'in_progress', 'escalated', 'resolved')) DEFAULT 'open',
	source_issue_id TEXT NOT NULL DEFAULT '',
	pending_closure INTEGER NOT NULL DEFAULT 0,
	closure_requested_at DATETIME,
	closure_confirmation_deadline DATETIME,
	closure_approved INTEGER NOT NULL DEFAULT 0,
	required_confirmations INTEGER NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	resolved_at DATETIME,
	FOREIGN KEY (jurisdiction_id) REFERENCES jurisdictions(id)
);

CREATE INDEX IF NOT EXISTS idx_grievances_status ON grievances(status);
CREATE INDEX IF NOT EXISTS idx_grievances_sla_deadline ON grievances(sla_deadline);
CREATE INDEX IF NOT EXISTS idx_grievances_pending_closure ON grievances(pending_closure);

-- Escalation audit (append-only)
CREATE TABLE IF NOT EXISTS escalation_audit (
	id TEXT PRIMARY KEY,
	grievance_id TEXT NOT NULL,
	previous_authority TEXT NOT NULL,
	new_authority TEXT NOT NULL,
	reason TEXT NOT NULL CHECK(reason IN ('sla_breach', 'severity_upgrade', 'manual')),
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (grievance_id) REFERENCES grievances(id)
);

CREATE INDEX IF NOT EXISTS idx_escalation_audit_grievance ON escalation_audit(grievance_id);

-- Followers (closure voting opt-in)
CREATE TABLE IF NOT EXISTS followers (
	grievance_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (grievance_id, user_id),
	FOREIGN KEY (grievance_id) REFERENCES grievances(id)
);

-- Closure confirmations (one response per follower per grievance)
CREATE TABLE IF NOT EXISTS closure_confirmations (
	id TEXT PRIMARY KEY,
	grievance_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('confirmed', 'disputed')),
	reason TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(grievance_id, user_id),
	FOREIGN KEY (grievance_id) REFERENCES grievances(id)
);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// schemaVersion is bumped whenever SchemaSQL changes shape.
const schemaVersion = 1

// GetSchemaSQL returns the authoritative schema for tests and tooling.
func GetSchemaSQL() string {
	return SchemaSQL
}

// InitSchema applies the schema to a database and stamps the version.
// Safe to call on every startup; all statements are idempotent.
func InitSchema(database *sql.DB) error {
	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	var current int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < schemaVersion {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to stamp schema version: %w", err)
		}
	}
	return nil
}
