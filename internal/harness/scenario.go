package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/propgraph/internal/ir"
)

// Scenario defines a conformance scenario: a small graph and the queries
// to run against it. Every query runs through each evaluation path and
// all paths must agree with the expected result.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Nodes are written to the store before any query runs.
	Nodes []NodeFixture `yaml:"nodes"`

	// Edges are written after the nodes.
	Edges []EdgeFixture `yaml:"edges,omitempty"`

	// Queries run in order against the seeded graph.
	Queries []Query `yaml:"queries"`
}

// NodeFixture is a node to seed.
type NodeFixture struct {
	ID     string    `yaml:"id"`
	Labels []string  `yaml:"labels,omitempty"`
	Data   ir.Object `yaml:"data,omitempty"`
}

// EdgeFixture is an edge to seed.
type EdgeFixture struct {
	ID    string    `yaml:"id"`
	Label string    `yaml:"label"`
	From  string    `yaml:"from"`
	To    string    `yaml:"to"`
	Data  ir.Object `yaml:"data,omitempty"`
}

// Query is either a filter query (Filter set) or a path query (Path set).
type Query struct {
	// Name identifies the query in results and golden files.
	Name string `yaml:"name"`

	// Filter selects nodes.
	Filter ir.Object `yaml:"filter,omitempty"`

	// Path describes labeled paths.
	Path *PathFixture `yaml:"path,omitempty"`

	// Expect lists the expected node IDs in id order, or for a path
	// query the expected paths as node IDs joined by ">".
	Expect []string `yaml:"expect"`

	// Error, when set, is a substring every failing path must report.
	// A query with Error set expects no results.
	Error string `yaml:"error,omitempty"`
}

// PathFixture is a path pattern.
type PathFixture struct {
	Start    ir.Object  `yaml:"start,omitempty"`
	Steps    []StepSpec `yaml:"steps"`
	MaxPaths int        `yaml:"max_paths,omitempty"`
}

// StepSpec is one hop of a PathFixture.
type StepSpec struct {
	Label     string    `yaml:"label,omitempty"`
	Direction string    `yaml:"direction,omitempty"`
	Filter    ir.Object `yaml:"filter,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
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
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	nodes := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("nodes[%d]: id is required", i)
		}
		if nodes[n.ID] {
			return fmt.Errorf("nodes[%d]: duplicate id %q", i, n.ID)
		}
		nodes[n.ID] = true
	}

	for i, e := range s.Edges {
		if e.Label == "" {
			return fmt.Errorf("edges[%d]: label is required", i)
		}
		if !nodes[e.From] {
			return fmt.Errorf("edges[%d]: unknown from node %q", i, e.From)
		}
		if !nodes[e.To] {
			return fmt.Errorf("edges[%d]: unknown to node %q", i, e.To)
		}
	}

	names := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if names[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		names[q.Name] = true

		if q.Path != nil && q.Filter != nil {
			return fmt.Errorf("queries[%d]: filter and path are mutually exclusive", i)
		}
		if q.Path != nil {
			if len(q.Path.Steps) == 0 {
				return fmt.Errorf("queries[%d].path: steps list is required", i)
			}
			for j, step := range q.Path.Steps {
				if _, err := parseDirection(step.Direction); err != nil {
					return fmt.Errorf("queries[%d].path.steps[%d]: %w", i, j, err)
				}
			}
		}
		if q.Error != "" && len(q.Expect) > 0 {
			return fmt.Errorf("queries[%d]: error and expect are mutually exclusive", i)
		}
	}
	return nil
}
