package grievance

import "fmt"

// Severity represents how serious a grievance is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseSeverity validates a raw severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q (valid: low, medium, high, critical)", s)
}

// Ordinal returns the severity's position on the ordinal scale
// low=1, medium=2, high=3, critical=4. Unknown severities return 0.
func (s Severity) Ordinal() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// SeverityJump measures the upward distance of a severity change.
// Downgrades report zero; an upgrade from low to high reports 2.
// A jump of 2 or more triggers an automatic escalation.
func SeverityJump(old, new Severity) int {
	jump := new.Ordinal() - old.Ordinal()
	if jump < 0 {
		return 0
	}
	return jump
}
