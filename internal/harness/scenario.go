package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a dispatch ordering scenario.
// Scenarios build an event from declared phases, constraints, and
// listeners, fire it once, and assert on the resulting order.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden
	// file name for RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Event is the event name, used for reporting and journaling.
	Event string `yaml:"event"`

	// Phases optionally seeds the event with an ordered phase chain.
	// When empty the event starts with only the default phase.
	Phases []string `yaml:"phases,omitempty"`

	// Constraints are phase orderings applied after registration.
	Constraints []Constraint `yaml:"constraints,omitempty"`

	// Listeners are the labeled listeners to register, in order.
	Listeners []ListenerDecl `yaml:"listeners"`

	// Expect states the expected outcome.
	Expect ExpectClause `yaml:"expect"`

	// PermuteConstraints reruns the scenario under every insertion
	// order of the constraint set. All orders must produce identical
	// output. Factorial in the number of constraints, so intended for
	// scenarios with at most a handful of them.
	PermuteConstraints bool `yaml:"permute_constraints,omitempty"`
}

// Constraint orders one phase before another.
type Constraint struct {
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// ListenerDecl registers one labeled listener in a phase.
type ListenerDecl struct {
	Phase string `yaml:"phase"`
	Label string `yaml:"label"`
}

// ExpectClause specifies the expected outcome.
// At least one field must be set.
type ExpectClause struct {
	// Phases is the expected resolved phase order.
	Phases []string `yaml:"phases,omitempty"`

	// Firings is the expected sequence of listener labels.
	Firings []string `yaml:"firings,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "listener:" vs "listeners:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Event == "" {
		return fmt.Errorf("event is required")
	}

	if len(s.Listeners) == 0 {
		return fmt.Errorf("listeners list is required and must be non-empty")
	}

	for i, p := range s.Phases {
		if p == "" {
			return fmt.Errorf("phases[%d]: phase id must be non-empty", i)
		}
	}

	for i, c := range s.Constraints {
		if c.Before == "" || c.After == "" {
			return fmt.Errorf("constraints[%d]: before and after are required", i)
		}
	}

	for i, l := range s.Listeners {
		if l.Phase == "" {
			return fmt.Errorf("listeners[%d]: phase is required", i)
		}
		if l.Label == "" {
			return fmt.Errorf("listeners[%d]: label is required", i)
		}
	}

	if len(s.Expect.Phases) == 0 && len(s.Expect.Firings) == 0 {
		return fmt.Errorf("expect must specify phases or firings")
	}

	return nil
}
