package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, yaml string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)
	return scenario
}

func TestRun_Shire(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/shire.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Queries, len(scenario.Queries))
}

func TestRun_PathsAgree(t *testing.T) {
	scenario := mustParse(t, `
name: agree
nodes:
  - { id: a, data: { x: 3 } }
  - { id: b, data: { x: 9 } }
  - { id: c, data: { x: 12.5 } }
queries:
  - name: gt8
    filter: { x: { $gt: 8 } }
    expect: [b, c]
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	qr := result.Queries[0]
	assert.Equal(t, []string{"b", "c"}, qr.Outcomes[PathTranslated].IDs)
	assert.Equal(t, []string{"b", "c"}, qr.Outcomes[PathRendered].IDs)
	assert.Equal(t, []string{"b", "c"}, qr.Outcomes[PathMatched].IDs)
	assert.Equal(t, "(n.x > 8)", qr.Expression)
	assert.Equal(t, `{"where":{"data.x":{"$gt":8}}}`, qr.Descriptor)
}

func TestRun_ReportsMismatch(t *testing.T) {
	scenario := mustParse(t, `
name: mismatch
nodes:
  - { id: a, data: { x: 1 } }
queries:
  - name: wrong
    filter: { x: 1 }
    expect: [b]
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "wrong (translated)")
	assert.Contains(t, result.Errors[0], "Expected: b")
	assert.Contains(t, result.Errors[0], "Actual: a")
}

func TestRun_UnsupportedPathsSkipped(t *testing.T) {
	scenario := mustParse(t, `
name: skipped
nodes:
  - { id: a, labels: [A, B] }
  - { id: b, labels: [B] }
queries:
  - name: all_a
    filter: { labels: { $all: [A] } }
    expect: [a]
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	qr := result.Queries[0]
	assert.True(t, qr.Outcomes[PathTranslated].Unsupported)
	assert.True(t, qr.Outcomes[PathRendered].Unsupported)
	assert.Equal(t, []string{"a"}, qr.Outcomes[PathMatched].IDs)
}

func TestRun_ExpectedError(t *testing.T) {
	scenario := mustParse(t, `
name: errors
queries:
  - name: typo
    filter: { x: { $eqq: 1 } }
    error: unrecognized operator
  - name: not_an_error
    filter: { x: 1 }
    error: unrecognized operator
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	// typo passes; not_an_error fails on all three paths.
	require.Len(t, result.Errors, 3)
	for _, msg := range result.Errors {
		assert.Contains(t, msg, "not_an_error")
	}
}

func TestRun_PathQuery(t *testing.T) {
	scenario := mustParse(t, `
name: paths
nodes: [{ id: a }, { id: b }, { id: c }]
edges:
  - { label: L, from: a, to: b }
  - { label: L, from: b, to: c }
queries:
  - name: chain
    path:
      steps: [{ label: L }, { label: L }]
    expect: [a>b>c]
  - name: backwards
    path:
      start: { id: c }
      steps: [{ direction: in }]
    expect: [c>b]
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"a>b>c"}, result.Queries[0].Outcomes[PathWalked].IDs)
}

func TestRun_GeneratesEdgeIDs(t *testing.T) {
	scenario := mustParse(t, `
name: gen
nodes: [{ id: a }, { id: b }]
edges: [{ label: L, from: a, to: b }]
queries:
  - name: any
    path:
      steps: [{}]
    expect: [a>b]
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	scenario := mustParse(t, `
name: logged
nodes: [{ id: a }]
queries: [{ name: q, filter: {}, expect: [a] }]
`)

	_, err := Run(scenario, WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "scenario seeded")
}
