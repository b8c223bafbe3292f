package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as text for golden comparison: one block per
// query giving the filter, its rendered expression and descriptor, and
// what each evaluation path selected.
func Snapshot(result *Result) []byte {
	var buf bytes.Buffer
	for i, qr := range result.Queries {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "# %s\n", qr.Name)
		if qr.Filter != "" {
			fmt.Fprintf(&buf, "filter: %s\n", qr.Filter)
		}
		if qr.Expression != "" {
			fmt.Fprintf(&buf, "expression: %s\n", qr.Expression)
		}
		if qr.Descriptor != "" {
			fmt.Fprintf(&buf, "descriptor: %s\n", qr.Descriptor)
		}
		for _, path := range pathOrder {
			out, ok := qr.Outcomes[path]
			if !ok {
				continue
			}
			switch {
			case out.Unsupported:
				fmt.Fprintf(&buf, "%s: unsupported\n", path)
			case out.Err != "":
				fmt.Fprintf(&buf, "%s: error: %s\n", path, out.Err)
			default:
				fmt.Fprintf(&buf, "%s: %s\n", path, formatIDs(out.IDs))
			}
		}
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the snapshot of an already computed result
// against testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
