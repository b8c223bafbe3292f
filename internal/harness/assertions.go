package harness

import (
	"fmt"
	"slices"
	"strings"
)

// pathOrder is the order outcomes are checked and reported in.
var pathOrder = []string{PathTranslated, PathRendered, PathMatched, PathWalked}

// AssertionError is returned when a path disagrees with an expectation.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Query    string // Query name
	Path     string // Evaluation path
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s (%s)\n", e.Query, e.Path)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkQuery compares every outcome of qr against q and returns one
// message per failure. Unsupported paths are skipped, but at least one
// path must have run.
func checkQuery(q Query, qr QueryResult) []string {
	var failures []string
	ran := 0

	for _, path := range pathOrder {
		out, ok := qr.Outcomes[path]
		if !ok || out.Unsupported {
			continue
		}
		ran++

		var err error
		if q.Error != "" {
			err = assertFails(q, path, out)
		} else {
			err = assertSelects(q, path, out)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}

	if ran == 0 {
		failures = append(failures, fmt.Sprintf("query %s: no evaluation path supports it", q.Name))
	}
	return failures
}

// assertSelects checks that out succeeded with exactly the expected IDs,
// in order.
func assertSelects(q Query, path string, out Outcome) error {
	if out.Err != "" {
		return &AssertionError{
			Query:    q.Name,
			Path:     path,
			Expected: formatIDs(q.Expect),
			Actual:   "error: " + out.Err,
		}
	}
	if !slices.Equal(normalize(q.Expect), normalize(out.IDs)) {
		return &AssertionError{
			Query:    q.Name,
			Path:     path,
			Expected: formatIDs(q.Expect),
			Actual:   formatIDs(out.IDs),
		}
	}
	return nil
}

// assertFails checks that out failed with an error containing q.Error.
func assertFails(q Query, path string, out Outcome) error {
	if out.Err == "" {
		return &AssertionError{
			Query:    q.Name,
			Path:     path,
			Expected: fmt.Sprintf("error containing %q", q.Error),
			Actual:   formatIDs(out.IDs),
		}
	}
	if !strings.Contains(out.Err, q.Error) {
		return &AssertionError{
			Query:    q.Name,
			Path:     path,
			Expected: fmt.Sprintf("error containing %q", q.Error),
			Actual:   "error: " + out.Err,
		}
	}
	return nil
}

func normalize(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func formatIDs(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, " ")
}
