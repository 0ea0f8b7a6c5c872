package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqliteurl/internal/store"
)

// Scenario is a sequence of SQL statements with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Driver pins the scenario to one driver. Empty runs on whichever
	// driver the caller selects.
	Driver string `yaml:"driver,omitempty" json:"driver,omitempty"`

	// Relations marks scenarios that need the table-valued relations. They
	// are skipped on a build without them.
	Relations bool `yaml:"relations,omitempty" json:"relations,omitempty"`

	// Setup statements run before the steps. Any failure aborts the run.
	Setup []string `yaml:"setup,omitempty" json:"setup,omitempty"`

	// Steps run in order; each may carry an expectation.
	Steps []Step `yaml:"steps" json:"steps"`

	// Assertions are evaluated after every step has run.
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// Step is one statement.
type Step struct {
	// Name is an optional label used in error messages.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// SQL is the statement text. Parameters are written as ?.
	SQL string `yaml:"sql" json:"sql"`

	// Args are bound to the statement parameters in order.
	Args []any `yaml:"args,omitempty" json:"args,omitempty"`

	// Expect is checked against the outcome. Nil means the statement
	// must merely succeed.
	Expect *Expect `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// label returns a human readable step reference.
func (s Step) label(index int) string {
	if s.Name != "" {
		return fmt.Sprintf("step %d (%s)", index, s.Name)
	}
	return fmt.Sprintf("step %d", index)
}

// Expect describes a step outcome. Error excludes Rows and Count.
type Expect struct {
	// Rows must match the result exactly, in order. Nil skips the check.
	Rows [][]any `yaml:"rows,omitempty" json:"rows,omitempty"`

	// Count is the expected number of rows.
	Count *int `yaml:"count,omitempty" json:"count,omitempty"`

	// Error is a substring the failure message must contain.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Assertion validates state after the steps have run.
type Assertion struct {
	// Type is final_state or same_rows.
	Type string `yaml:"type" json:"type"`

	// Table is the table to query (final_state).
	Table string `yaml:"table,omitempty" json:"table,omitempty"`

	// Where selects exactly one row (final_state).
	Where map[string]any `yaml:"where,omitempty" json:"where,omitempty"`

	// Expect holds expected column values, subset match (final_state).
	Expect map[string]any `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Steps lists step indices whose rows must be identical (same_rows).
	Steps []int `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
	AssertSameRows   = "same_rows"
)

// LoadScenario reads a scenario file. Files ending in .cue are compiled as
// CUE; anything else is parsed as YAML. Both forms are checked against the
// scenario schema, then against the rules in validateScenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sch, err := loadSchema()
	if err != nil {
		return nil, err
	}

	var scenario *Scenario
	if filepath.Ext(path) == ".cue" {
		scenario, err = sch.compile(data, path)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: %w", err)
		}
	} else {
		scenario, err = parseYAML(sch, data)
		if err != nil {
			return nil, err
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func parseYAML(sch *schema, data []byte) (*Scenario, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse YAML: empty document")
	}
	if err := sch.checkData(raw); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks the rules the schema cannot express, and covers
// scenarios built in Go that never went through the schema.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Driver != "" {
		if _, err := store.ParseDriver(s.Driver); err != nil {
			return err
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.SQL == "" {
			return fmt.Errorf("steps[%d]: sql is required", i)
		}
		if e := step.Expect; e != nil && e.Error != "" && (e.Rows != nil || e.Count != nil) {
			return fmt.Errorf("steps[%d].expect: error cannot be combined with rows or count", i)
		}
		if e := step.Expect; e != nil && e.Count != nil && *e.Count < 0 {
			return fmt.Errorf("steps[%d].expect: count must be non-negative", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], len(s.Steps)); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertSameRows:
		if len(a.Steps) < 2 {
			return fmt.Errorf("assertions[%d]: same_rows needs at least two steps", index)
		}
		for _, n := range a.Steps {
			if n < 0 || n >= steps {
				return fmt.Errorf("assertions[%d]: step %d out of range [0, %d)", index, n, steps)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
