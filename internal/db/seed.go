package db

import (
	"database/sql"
	"fmt"
)

// SeedDirectory populates the jurisdiction directory and SLA policy table
// with a development fixture set: a four-level hierarchy over two states
// plus severity-based SLA policies with department and level refinements.
func SeedDirectory(database *sql.DB) error {
	jurisdictions := []struct {
		id, name, level, authority string
		states, districts, cities  string
		slaHours                   int
	}{
		{"JUR-001", "Mysuru City Ward Office", "local", "Mysuru Municipal Corporation",
			"karnataka", "mysuru", "mysuru", 48},
		{"JUR-002", "Bengaluru City Ward Office", "local", "Bruhat Bengaluru Mahanagara Palike",
			"karnataka", "bengaluru urban", "bengaluru", 48},
		{"JUR-003", "Mysuru District Collectorate", "district", "Deputy Commissioner, Mysuru",
			"karnataka", "mysuru", "mysuru", 72},
		{"JUR-004", "Bengaluru Urban District Collectorate", "district", "Deputy Commissioner, Bengaluru Urban",
			"karnataka", "bengaluru urban", "bengaluru", 72},
		{"JUR-005", "Ernakulam District Collectorate", "district", "District Collector, Ernakulam",
			"kerala", "ernakulam", "kochi", 72},
		{"JUR-006", "Karnataka State Secretariat", "state", "Chief Secretary, Karnataka",
			"karnataka", "", "", 120},
		{"JUR-007", "Kerala State Secretariat", "state", "Chief Secretary, Kerala",
			"kerala", "", "", 120},
		{"JUR-008", "National Grievance Cell", "national", "Department of Administrative Reforms",
			"karnataka,kerala", "", "", 168},
	}
	for _, j := range jurisdictions {
		if _, err := database.Exec(
			`INSERT INTO jurisdictions (id, name, level, authority, states, districts, cities, default_sla_hours)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			j.id, j.name, j.level, j.authority, j.states, j.districts, j.cities, j.slaHours,
		); err != nil {
			return fmt.Errorf("seed jurisdictions: %w", err)
		}
	}

	policies := []struct {
		id, severity, level, department string
		hours                           int
	}{
		{"SLA-001", "critical", "", "", 24},
		{"SLA-002", "high", "", "", 48},
		{"SLA-003", "medium", "", "", 96},
		{"SLA-004", "low", "", "", 168},
		{"SLA-005", "critical", "", "health", 12},
		{"SLA-006", "critical", "local", "", 18},
		{"SLA-007", "high", "", "water", 36},
	}
	for _, p := range policies {
		if _, err := database.Exec(
			`INSERT INTO sla_policies (id, severity, level, department, hours) VALUES (?, ?, ?, ?, ?)`,
			p.id, p.severity, p.level, p.department, p.hours,
		); err != nil {
			return fmt.Errorf("seed sla policies: %w", err)
		}
	}

	return nil
}

// DirectorySeeded reports whether the jurisdiction directory has rows.
func DirectorySeeded(database *sql.DB) (bool, error) {
	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM jurisdictions").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count jurisdictions: %w", err)
	}
	return count > 0, nil
}
