// Package sla contains the pure business logic for service-level agreement
// resolution. This is part of the Functional Core - no I/O, only pure functions.
package sla

import (
	"strings"
	"time"
)

// Policy is one row of the SLA policy table. Level and Department may be
// empty, acting as wildcards during fallback resolution.
type Policy struct {
	Severity   string
	Level      string
	Department string
	Hours      int
}

// Resolve picks the SLA hours for a (severity, level, department) triple.
// Fallback keys are tried in strict priority order:
//
//  1. exact (severity, level, department)
//  2. (severity, department), any level
//  3. (severity, level), any department
//  4. (severity), any level, any department
//
// The first matching policy wins. When nothing matches, defaultHours applies.
// This order is load-bearing: it determines deterministic SLA assignment.
func Resolve(policies []Policy, severity, level, department string, defaultHours int) int {
	severity = norm(severity)
	level = norm(level)
	department = norm(department)

	type key struct{ level, department string }
	lookups := []key{
		{level: level, department: department},
		{level: "", department: department},
		{level: level, department: ""},
		{level: "", department: ""},
	}

	for _, k := range lookups {
		for _, p := range policies {
			if norm(p.Severity) != severity {
				continue
			}
			if norm(p.Level) == k.level && norm(p.Department) == k.department {
				return p.Hours
			}
		}
	}

	return defaultHours
}

// Deadline computes a fresh SLA deadline from the given moment.
func Deadline(from time.Time, hours int) time.Time {
	return from.Add(time.Duration(hours) * time.Hour)
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
