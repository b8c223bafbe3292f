package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/propgraph/internal/expr"
	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/relational"
	"github.com/roach88/propgraph/internal/store"
)

// ErrNotFound is returned (wrapped) when a node or edge does not exist.
var ErrNotFound = store.ErrNotFound

// Graph is the adapter between filter objects and the store.
//
// Thread-safety: Graph holds no mutable state of its own; concurrent use is
// as safe as the underlying store, which serializes access through a
// single connection.
type Graph struct {
	store        *store.Store
	logger       *slog.Logger
	ids          IDGenerator
	defaultLimit int
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDefaultLimit sets the limit merged into queries whose caller passes
// a limit <= 0. Default: 0 (unlimited).
func WithDefaultLimit(limit int) Option {
	return func(g *Graph) {
		g.defaultLimit = limit
	}
}

// WithIDGenerator sets the generator for nodes and edges created without
// an ID. Default: UUIDv7Generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(g *Graph) {
		if ids != nil {
			g.ids = ids
		}
	}
}

// New creates a Graph over s.
func New(s *store.Store, opts ...Option) *Graph {
	g := &Graph{
		store:  s,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateNode stores n, generating an ID when n.ID is empty, and returns
// the node as stored (labels normalized).
func (g *Graph) CreateNode(ctx context.Context, n store.Node) (store.Node, error) {
	if n.ID == "" {
		n.ID = g.ids.NewID()
	}
	if err := g.store.WriteNode(ctx, n); err != nil {
		return store.Node{}, err
	}
	g.logger.Debug("node created", "id", n.ID, "labels", strings.Join(n.Labels, ","))
	return g.store.ReadNode(ctx, n.ID)
}

// GetNode returns the node with the given ID.
func (g *Graph) GetNode(ctx context.Context, id string) (store.Node, error) {
	return g.store.ReadNode(ctx, id)
}

// UpdateNode merges patch into the node's data. Keys in patch replace
// existing keys; other keys are kept.
func (g *Graph) UpdateNode(ctx context.Context, id string, patch ir.Object) (store.Node, error) {
	n, err := g.store.ReadNode(ctx, id)
	if err != nil {
		return store.Node{}, err
	}
	n.Data = n.Data.Merge(patch)
	if err := g.store.UpdateNodeData(ctx, id, n.Data); err != nil {
		return store.Node{}, err
	}
	g.logger.Debug("node updated", "id", id, "keys", strings.Join(patch.Keys(), ","))
	return g.store.ReadNode(ctx, id)
}

// DeleteNode deletes a node and its edges.
func (g *Graph) DeleteNode(ctx context.Context, id string) error {
	if err := g.store.DeleteNode(ctx, id); err != nil {
		return err
	}
	g.logger.Debug("node deleted", "id", id)
	return nil
}

// CreateEdge stores e, generating an ID when e.ID is empty. Both endpoints
// must exist.
func (g *Graph) CreateEdge(ctx context.Context, e store.Edge) (store.Edge, error) {
	if e.ID == "" {
		e.ID = g.ids.NewID()
	}
	if err := g.store.WriteEdge(ctx, e); err != nil {
		return store.Edge{}, err
	}
	g.logger.Debug("edge created", "id", e.ID, "label", e.Label, "from", e.From, "to", e.To)
	return g.store.ReadEdge(ctx, e.ID)
}

// GetEdge returns the edge with the given ID.
func (g *Graph) GetEdge(ctx context.Context, id string) (store.Edge, error) {
	return g.store.ReadEdge(ctx, id)
}

// DeleteEdge deletes an edge.
func (g *Graph) DeleteEdge(ctx context.Context, id string) error {
	if err := g.store.DeleteEdge(ctx, id); err != nil {
		return err
	}
	g.logger.Debug("edge deleted", "id", id)
	return nil
}

// Descriptor translates filter and merges limit into the result. A limit
// <= 0 falls back to the default limit.
func (g *Graph) Descriptor(filter ir.Object, limit int) relational.Descriptor {
	if limit <= 0 {
		limit = g.defaultLimit
	}
	return relational.Translate(filter).WithLimit(limit, 0)
}

// FindNodes returns up to limit nodes matching filter, ordered by id.
func (g *Graph) FindNodes(ctx context.Context, filter ir.Object, limit int) ([]store.Node, error) {
	d := g.Descriptor(filter, limit)
	g.logger.Debug("find nodes", "descriptor", d.String())
	nodes, err := g.store.SelectNodes(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("find nodes: %w", err)
	}
	return nodes, nil
}

// FindEdges returns up to limit edges matching filter, ordered by id. The
// labels key of the filter matches the edge label.
func (g *Graph) FindEdges(ctx context.Context, filter ir.Object, limit int) ([]store.Edge, error) {
	d := g.Descriptor(filter, limit)
	g.logger.Debug("find edges", "descriptor", d.String())
	edges, err := g.store.SelectEdges(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("find edges: %w", err)
	}
	return edges, nil
}

// CountNodes returns how many nodes match filter.
func (g *Graph) CountNodes(ctx context.Context, filter ir.Object) (int, error) {
	d := relational.Translate(filter)
	g.logger.Debug("count nodes", "descriptor", d.String())
	count, err := g.store.CountNodes(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return count, nil
}

// DeleteNodes deletes up to limit nodes matching filter (all of them when
// limit <= 0 and no default limit is set) and returns how many were
// deleted.
func (g *Graph) DeleteNodes(ctx context.Context, filter ir.Object, limit int) (int, error) {
	d := g.Descriptor(filter, limit)
	n, err := g.store.DeleteNodes(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	g.logger.Debug("nodes deleted", "descriptor", d.String(), "count", n)
	return n, nil
}

// FindNodesByExpression returns the nodes matching filter, selected by
// evaluating the filter's rendered boolean expression.
func (g *Graph) FindNodesByExpression(ctx context.Context, filter ir.Object) ([]store.Node, error) {
	tree, err := projection.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("find nodes by expression: %w", err)
	}
	if g.logger.Enabled(ctx, slog.LevelDebug) {
		rendered, err := expr.Render(tree, expr.DefaultVariable, 0)
		if err != nil {
			return nil, fmt.Errorf("find nodes by expression: %w", err)
		}
		g.logger.Debug("find nodes by expression", "expression", rendered)
	}
	nodes, err := g.store.SelectNodesByExpression(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("find nodes by expression: %w", err)
	}
	return nodes, nil
}

// NodesWithLabel returns the nodes carrying label, ordered by id.
func (g *Graph) NodesWithLabel(ctx context.Context, label string) ([]store.Node, error) {
	return g.store.NodesByLabel(ctx, label)
}
