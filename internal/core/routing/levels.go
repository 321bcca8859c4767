// Package routing contains the pure business logic for jurisdiction routing.
// This is part of the Functional Core - no I/O, only pure functions.
package routing

// Level represents a jurisdiction level in the escalation hierarchy.
type Level string

const (
	LevelLocal    Level = "local"
	LevelDistrict Level = "district"
	LevelState    Level = "state"
	LevelNational Level = "national"
)

// Valid reports whether the level is one of the four known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelLocal, LevelDistrict, LevelState, LevelNational:
		return true
	}
	return false
}

// NextLevel returns the next level in the fixed escalation chain
// local -> district -> state -> national. The second return value is
// false when there is no higher level.
func NextLevel(l Level) (Level, bool) {
	switch l {
	case LevelLocal:
		return LevelDistrict, true
	case LevelDistrict:
		return LevelState, true
	case LevelState:
		return LevelNational, true
	default:
		return "", false
	}
}

// CanEscalate reports whether a grievance at the given level can be
// handed off to a higher jurisdiction.
func CanEscalate(l Level) bool {
	_, ok := NextLevel(l)
	return ok
}
