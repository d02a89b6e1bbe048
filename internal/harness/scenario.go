package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted console session and what must hold after it.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is an optional CUE class registry. When empty the built-in
	// classes are used. Relative paths resolve against the scenario file.
	Schema string `yaml:"schema,omitempty"`

	// Setup lines run before the transcript starts; their output is dropped.
	Setup []string `yaml:"setup,omitempty"`

	// Lines are fed to the console one at a time.
	Lines []string `yaml:"lines"`

	// Assertions validate the transcript and the final table.
	// Supported types: output_equals, output_contains, count, attribute, absent
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates console output or the final object table.
type Assertion struct {
	// Type specifies the assertion type:
	// - "output_equals": step output equals text exactly (trailing newline ignored)
	// - "output_contains": step output contains text; step 0 means any step
	// - "count": class has exactly count instances
	// - "attribute": identity has attr set to value
	// - "absent": identity is not in the table
	Type string `yaml:"type"`

	// Step is the 1-based transcript index (used by output_equals, output_contains).
	Step int `yaml:"step,omitempty"`

	// Text is the expected output (used by output_equals, output_contains).
	Text string `yaml:"text,omitempty"`

	// Class is the class to count (used by count).
	Class string `yaml:"class,omitempty"`

	// Count is the expected number of instances (used by count).
	Count int `yaml:"count,omitempty"`

	// Identity names an instance as <Class>.<id> (used by attribute, absent).
	Identity string `yaml:"identity,omitempty"`

	// Attr and Value are the expected attribute (used by attribute).
	Attr  string `yaml:"attr,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputEquals   = "output_equals"
	AssertOutputContains = "output_contains"
	AssertCount          = "count"
	AssertAttribute      = "attribute"
	AssertAbsent         = "absent"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Lines) == 0 {
		return fmt.Errorf("lines list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", s.Schema)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Lines)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutputEquals:
		if a.Step < 1 || a.Step > steps {
			return fmt.Errorf("assertions[%d]: step must be between 1 and %d for output_equals", index, steps)
		}
	case AssertOutputContains:
		if a.Step < 0 || a.Step > steps {
			return fmt.Errorf("assertions[%d]: step must be between 0 and %d for output_contains", index, steps)
		}
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for output_contains", index)
		}
	case AssertCount:
		if a.Class == "" {
			return fmt.Errorf("assertions[%d]: class is required for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertAttribute:
		if a.Identity == "" || a.Attr == "" {
			return fmt.Errorf("assertions[%d]: identity and attr are required for attribute", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for attribute", index)
		}
	case AssertAbsent:
		if a.Identity == "" {
			return fmt.Errorf("assertions[%d]: identity is required for absent", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
