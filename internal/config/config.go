// Package config loads the nivaran configuration: storage location, SLA
// defaults, sweep schedules and the routing rules document.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/nivaran/internal/core/routing"
)

// StateRule configures routing for a single state.
type StateRule struct {
	// Departments lists categories that route straight to state level.
	Departments []string `yaml:"departments"`
	// DefaultLevel is where everything else in this state lands.
	DefaultLevel string `yaml:"default_level"`
}

// Config is the merged YAML + environment configuration.
type Config struct {
	DBPath          string `yaml:"db_path"`
	DefaultSLAHours int    `yaml:"default_sla_hours"`

	// Cron specs for the background sweeps.
	EscalationSchedule string `yaml:"escalation_schedule"`
	ClosureSchedule    string `yaml:"closure_schedule"`

	// Routing rules.
	CategoryLevels      map[string]string    `yaml:"category_levels"`
	CategoryAuthorities map[string]string    `yaml:"category_authorities"`
	States              map[string]StateRule `yaml:"states"`
}

// Defaults returns the built-in configuration used when no file exists.
func Defaults() Config {
	return Config{
		DefaultSLAHours:    72,
		EscalationSchedule: "@every 15m",
		ClosureSchedule:    "@every 1h",
	}
}

// Load reads the configuration file at path and applies environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if envPath := os.Getenv("NIVARAN_CONFIG"); envPath != "" {
		path = envPath
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// Env vars override YAML values
	envOverride(&cfg.DBPath, "NIVARAN_DB_PATH")
	envOverrideInt(&cfg.DefaultSLAHours, "NIVARAN_DEFAULT_SLA_HOURS")
	envOverride(&cfg.EscalationSchedule, "NIVARAN_ESCALATION_SCHEDULE")
	envOverride(&cfg.ClosureSchedule, "NIVARAN_CLOSURE_SCHEDULE")

	if cfg.DefaultSLAHours <= 0 {
		return Config{}, fmt.Errorf("default_sla_hours must be positive, got %d", cfg.DefaultSLAHours)
	}
	return cfg, nil
}

// RoutingRules converts the configured routing sections into the form the
// routing core consumes. Unknown levels are dropped rather than guessed.
// Keys are lowercased because the routing core looks rules up by lowercase
// category and state.
func (c Config) RoutingRules() routing.Rules {
	rules := routing.Rules{
		CategoryLevels:      make(map[string]routing.Level),
		CategoryAuthorities: make(map[string]string),
		States:              make(map[string]routing.StateRule),
	}
	for category, level := range c.CategoryLevels {
		if l := routing.Level(level); l.Valid() {
			rules.CategoryLevels[strings.ToLower(category)] = l
		}
	}
	for category, authority := range c.CategoryAuthorities {
		if authority != "" {
			rules.CategoryAuthorities[strings.ToLower(category)] = authority
		}
	}
	for state, rule := range c.States {
		rules.States[strings.ToLower(state)] = routing.StateRule{
			Departments:  rule.Departments,
			DefaultLevel: routing.Level(rule.DefaultLevel),
		}
	}
	return rules
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}
