package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckQuery(t *testing.T) {
	testCases := []struct {
		name     string
		query    Query
		outcomes map[string]Outcome
		failures int
	}{
		{
			name:  "all agree",
			query: Query{Name: "q", Expect: []string{"a"}},
			outcomes: map[string]Outcome{
				PathTranslated: {IDs: []string{"a"}},
				PathRendered:   {IDs: []string{"a"}},
				PathMatched:    {IDs: []string{"a"}},
			},
		},
		{
			name:  "empty expectation",
			query: Query{Name: "q"},
			outcomes: map[string]Outcome{
				PathTranslated: {IDs: []string{}},
				PathMatched:    {},
			},
		},
		{
			name:  "one path disagrees",
			query: Query{Name: "q", Expect: []string{"a"}},
			outcomes: map[string]Outcome{
				PathTranslated: {IDs: []string{"a"}},
				PathRendered:   {IDs: []string{"a", "b"}},
				PathMatched:    {IDs: []string{"a"}},
			},
			failures: 1,
		},
		{
			name:  "order matters",
			query: Query{Name: "q", Expect: []string{"a", "b"}},
			outcomes: map[string]Outcome{
				PathMatched: {IDs: []string{"b", "a"}},
			},
			failures: 1,
		},
		{
			name:  "unexpected error",
			query: Query{Name: "q", Expect: []string{"a"}},
			outcomes: map[string]Outcome{
				PathMatched: {Err: "boom"},
			},
			failures: 1,
		},
		{
			name:  "nothing ran",
			query: Query{Name: "q"},
			outcomes: map[string]Outcome{
				PathTranslated: {Unsupported: true},
			},
			failures: 1,
		},
		{
			name:  "expected error",
			query: Query{Name: "q", Error: "boom"},
			outcomes: map[string]Outcome{
				PathTranslated: {Unsupported: true},
				PathMatched:    {Err: "kaboom"},
			},
		},
		{
			name:  "wrong error",
			query: Query{Name: "q", Error: "boom"},
			outcomes: map[string]Outcome{
				PathMatched: {Err: "fizzle"},
			},
			failures: 1,
		},
		{
			name:  "missing error",
			query: Query{Name: "q", Error: "boom"},
			outcomes: map[string]Outcome{
				PathMatched: {IDs: []string{"a"}},
			},
			failures: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			failures := checkQuery(tc.query, QueryResult{Name: tc.query.Name, Outcomes: tc.outcomes})
			assert.Len(t, failures, tc.failures, "failures: %v", failures)
		})
	}
}

func TestAssertionError(t *testing.T) {
	err := &AssertionError{Query: "q", Path: PathRendered, Expected: "a", Actual: "(none)"}
	assert.Equal(t, "Assertion failed: q (rendered)\n  Expected: a\n  Actual: (none)", err.Error())
}
