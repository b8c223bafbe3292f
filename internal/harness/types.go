package harness

// Evaluation paths a filter query runs through.
const (
	// PathTranslated runs the relational descriptor compiled to SQL.
	PathTranslated = "translated"

	// PathRendered runs the rendered boolean expression in SQL.
	PathRendered = "rendered"

	// PathMatched evaluates the operator tree in memory.
	PathMatched = "matched"

	// PathWalked runs a path query.
	PathWalked = "walked"
)

// Outcome is what one evaluation path produced for a query.
type Outcome struct {
	// IDs are the selected node IDs in id order, or the matched paths.
	IDs []string `json:"ids,omitempty"`

	// Unsupported is true when the path has no form for the filter.
	Unsupported bool `json:"unsupported,omitempty"`

	// Err is the error the path reported, if any.
	Err string `json:"error,omitempty"`
}

// QueryResult collects the outcomes of one query.
type QueryResult struct {
	Name string `json:"name"`

	// Filter is the filter as JSON in member order; empty for path queries.
	Filter string `json:"filter,omitempty"`

	// Expression is the rendered boolean expression of the filter.
	Expression string `json:"expression,omitempty"`

	// Descriptor is the JSON form of the translated descriptor.
	Descriptor string `json:"descriptor,omitempty"`

	// Outcomes are keyed by path name.
	Outcomes map[string]Outcome `json:"outcomes"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every path agreed with every
	// expectation.
	Pass bool `json:"pass"`

	// Queries holds one entry per query, in scenario order.
	Queries []QueryResult `json:"queries"`

	// Errors contains assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Queries: []QueryResult{},
		Errors:  []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
