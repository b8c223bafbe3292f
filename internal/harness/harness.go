package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/propgraph/internal/expr"
	"github.com/roach88/propgraph/internal/graph"
	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/querysql"
	"github.com/roach88/propgraph/internal/relational"
	"github.com/roach88/propgraph/internal/store"
	"github.com/roach88/propgraph/internal/testutil"
)

// Harness runs the queries of one scenario against a seeded graph.
type Harness struct {
	store  *store.Store
	graph  *graph.Graph
	logger *slog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger handed to the graph. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. Nodes
// and edges without an ID get sequential IDs, so results are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Seed nodes, then edges
// 3. Run every query through each evaluation path
// 4. Check the paths against the expectations and each other
//
// An error is returned only when the scenario cannot be executed; query
// failures are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}
	h.graph = graph.New(st,
		graph.WithLogger(h.logger),
		graph.WithIDGenerator(testutil.NewSequentialIDs(scenario.Name)),
	)

	if err := h.seed(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to seed graph: %w", err)
	}

	result := NewResult()
	for _, q := range scenario.Queries {
		var qr QueryResult
		if q.Path != nil {
			qr, err = h.runPath(ctx, q)
		} else {
			qr, err = h.runFilter(ctx, q)
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.Name, err)
		}
		result.Queries = append(result.Queries, qr)
		for _, msg := range checkQuery(q, qr) {
			result.AddError(msg)
		}
	}
	return result, nil
}

func (h *Harness) seed(ctx context.Context, scenario *Scenario) error {
	for _, n := range scenario.Nodes {
		if _, err := h.graph.CreateNode(ctx, store.Node{ID: n.ID, Labels: n.Labels, Data: n.Data}); err != nil {
			return err
		}
	}
	for _, e := range scenario.Edges {
		if _, err := h.graph.CreateEdge(ctx, store.Edge{
			ID: e.ID, Label: e.Label, From: e.From, To: e.To, Data: e.Data,
		}); err != nil {
			return err
		}
	}
	h.logger.Debug("scenario seeded", "scenario", scenario.Name,
		"nodes", len(scenario.Nodes), "edges", len(scenario.Edges))
	return nil
}

// runFilter evaluates a filter query three ways: the translated
// descriptor in SQL, the rendered expression in SQL, and the operator
// tree in memory.
func (h *Harness) runFilter(ctx context.Context, q Query) (QueryResult, error) {
	filter, err := ir.MarshalValue(q.Filter)
	if err != nil {
		return QueryResult{}, err
	}
	qr := QueryResult{
		Name:       q.Name,
		Filter:     string(filter),
		Descriptor: relational.Translate(q.Filter).String(),
		Outcomes:   map[string]Outcome{},
	}

	translated, err := h.graph.FindNodes(ctx, q.Filter, 0)
	qr.Outcomes[PathTranslated] = nodeOutcome(translated, err)

	rendered, err := h.graph.FindNodesByExpression(ctx, q.Filter)
	qr.Outcomes[PathRendered] = nodeOutcome(rendered, err)

	tree, err := projection.Parse(q.Filter)
	if err != nil {
		qr.Outcomes[PathMatched] = Outcome{Err: err.Error()}
		return qr, nil
	}
	if qr.Expression, err = expr.Render(tree, expr.DefaultVariable, 0); err != nil {
		qr.Expression = ""
	}

	all, err := h.store.SelectNodes(ctx, relational.Descriptor{})
	if err != nil {
		return QueryResult{}, err
	}
	var matched []store.Node
	for _, n := range all {
		ok, err := projection.Match(tree, graph.Record(n))
		if err != nil {
			qr.Outcomes[PathMatched] = Outcome{Err: err.Error()}
			return qr, nil
		}
		if ok {
			matched = append(matched, n)
		}
	}
	qr.Outcomes[PathMatched] = nodeOutcome(matched, nil)
	return qr, nil
}

func (h *Harness) runPath(ctx context.Context, q Query) (QueryResult, error) {
	pattern, err := q.Path.Pattern()
	if err != nil {
		return QueryResult{}, err
	}

	qr := QueryResult{Name: q.Name, Outcomes: map[string]Outcome{}}
	paths, err := h.graph.PathQuery(ctx, pattern)
	if err != nil {
		qr.Outcomes[PathWalked] = Outcome{Err: err.Error()}
		return qr, nil
	}
	out := Outcome{IDs: make([]string, 0, len(paths))}
	for _, p := range paths {
		out.IDs = append(out.IDs, FormatPath(p))
	}
	qr.Outcomes[PathWalked] = out
	return qr, nil
}

func nodeOutcome(nodes []store.Node, err error) Outcome {
	switch {
	case errors.Is(err, querysql.ErrUnsupported):
		return Outcome{Unsupported: true}
	case err != nil:
		return Outcome{Err: err.Error()}
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return Outcome{IDs: ids}
}

// FormatPath joins the node IDs of p with ">".
func FormatPath(p graph.Path) string {
	ids := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = n.ID
	}
	return strings.Join(ids, ">")
}

// Pattern converts the fixture into a graph.PathPattern.
func (p PathFixture) Pattern() (graph.PathPattern, error) {
	pattern := graph.PathPattern{Start: p.Start, MaxPaths: p.MaxPaths}
	for i, s := range p.Steps {
		dir, err := parseDirection(s.Direction)
		if err != nil {
			return graph.PathPattern{}, fmt.Errorf("step %d: %w", i, err)
		}
		pattern.Steps = append(pattern.Steps, graph.Step{Label: s.Label, Direction: dir, Filter: s.Filter})
	}
	return pattern, nil
}

func parseDirection(s string) (store.Direction, error) {
	switch s {
	case "", "out":
		return store.Out, nil
	case "in":
		return store.In, nil
	case "both":
		return store.Both, nil
	}
	return store.Out, fmt.Errorf("unknown direction %q", s)
}
