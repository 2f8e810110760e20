package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a sequence of operations by
// named actors with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against one fresh store.
	Steps []Step `yaml:"steps"`
}

// Step is one operation in a scenario.
//
// String values anywhere in ID, Args, and Fields may reference actor
// addresses with $actor placeholders ("$alice", "$bob/club-1"); the
// runner substitutes the real checksummed addresses. A map of the form
// {ref: Collection, id: X} becomes a record reference.
type Step struct {
	// Actor is the signing identity: alice, bob, or carol.
	Actor string `yaml:"actor"`

	// Op is create, call, delete, get, or query.
	Op string `yaml:"op"`

	// Collection names the target collection.
	Collection string `yaml:"collection"`

	// ID targets an existing record (call, delete, get).
	ID string `yaml:"id,omitempty"`

	// Function names the mutating function (call only).
	Function string `yaml:"function,omitempty"`

	// Args are positional arguments (create, call) or
	// [field, op, value] for query.
	Args []any `yaml:"args,omitempty"`

	// Expect is the expected outcome: ok (default), denied, validation,
	// conflict, or not-found.
	Expect string `yaml:"expect,omitempty"`

	// Fields is a subset match against the resulting record.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Count asserts the number of query results.
	Count *int `yaml:"count,omitempty"`
}

// LoadScenario reads one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return &s, nil
}

// LoadScenarios reads every *.yaml scenario under dir, sorted by path
// for deterministic test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var scenarios []*Scenario
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
