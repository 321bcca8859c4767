package routing

import "strings"

// Geography is the location facet of a grievance used for routing.
// All fields are optional; matching is case-insensitive.
type Geography struct {
	Pincode  string
	City     string
	District string
	State    string
}

// Candidate is a jurisdiction viewed through the routing lens: its id,
// level and the geographic coverage it serves.
type Candidate struct {
	ID        string
	Level     Level
	States    []string
	Districts []string
	Cities    []string
}

// StateRule configures routing for a single state: which categories route
// straight to state level and what level everything else defaults to.
type StateRule struct {
	Departments  []string
	DefaultLevel Level
}

// Rules is the routing section of the rules document.
type Rules struct {
	// CategoryLevels force a level for a category regardless of geography.
	CategoryLevels map[string]Level
	// States maps a lowercase state name to its routing rule.
	States map[string]StateRule
	// CategoryAuthorities override the jurisdiction's default authority.
	CategoryAuthorities map[string]string
}

// DetermineLevel decides the target jurisdiction level for a grievance.
// A category override wins outright. Otherwise state-specific rules apply:
// a category listed in the state's departments routes to state level, else
// the state's configured default. With no known state the grievance stays
// close to the ground: district if a district is known, local otherwise.
func DetermineLevel(category string, geo Geography, rules Rules) Level {
	category = strings.ToLower(strings.TrimSpace(category))

	if lvl, ok := rules.CategoryLevels[category]; ok && lvl.Valid() {
		return lvl
	}

	state := strings.ToLower(strings.TrimSpace(geo.State))
	if state != "" {
		if rule, ok := rules.States[state]; ok {
			for _, dept := range rule.Departments {
				if strings.EqualFold(dept, category) {
					return LevelState
				}
			}
			if rule.DefaultLevel.Valid() {
				return rule.DefaultLevel
			}
		}
	}

	if strings.TrimSpace(geo.District) != "" {
		return LevelDistrict
	}
	return LevelLocal
}

// Score rates how well a candidate jurisdiction covers a geography:
// +3 for a state match, +2 for a district match, +1 for a city match.
func Score(c Candidate, geo Geography) int {
	score := 0
	if containsFold(c.States, geo.State) {
		score += 3
	}
	if containsFold(c.Districts, geo.District) {
		score += 2
	}
	if containsFold(c.Cities, geo.City) {
		score += 1
	}
	return score
}

// SelectBest picks the highest-scoring candidate for the geography.
// Zero-score candidates never qualify. Equal top scores break toward the
// lexicographically smallest jurisdiction id so resolution stays
// deterministic regardless of input order.
func SelectBest(candidates []Candidate, geo Geography) (Candidate, bool) {
	var best Candidate
	bestScore := 0
	found := false

	for _, c := range candidates {
		s := Score(c, geo)
		if s == 0 {
			continue
		}
		if !found || s > bestScore || (s == bestScore && c.ID < best.ID) {
			best = c
			bestScore = s
			found = true
		}
	}

	return best, found
}

// AssignAuthority resolves the responsible authority for a grievance:
// a category-specific override takes precedence over the jurisdiction's
// default authority.
func AssignAuthority(defaultAuthority, category string, rules Rules) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if authority, ok := rules.CategoryAuthorities[category]; ok && authority != "" {
		return authority
	}
	return defaultAuthority
}

func containsFold(haystack []string, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	for _, h := range haystack {
		if strings.EqualFold(strings.TrimSpace(h), needle) {
			return true
		}
	}
	return false
}
