package graph

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/relational"
	"github.com/roach88/propgraph/internal/store"
)

// DefaultMaxPaths caps PathQuery results when the pattern sets no cap.
const DefaultMaxPaths = 100

// Subgraph is a set of nodes and the edges between them, each ordered by
// id.
type Subgraph struct {
	Nodes []store.Node `json:"nodes"`
	Edges []store.Edge `json:"edges"`
}

// Step is one hop of a path pattern: follow an edge with Label (any label
// when empty) in Direction, to a node matching Filter (any node when
// empty).
type Step struct {
	Label     string
	Direction store.Direction
	Filter    ir.Object
}

// PathPattern describes labeled paths: a start node filter and the steps
// that follow it.
type PathPattern struct {
	Start    ir.Object
	Steps    []Step
	MaxPaths int
}

// Path is a matched path. Nodes has one more element than Edges.
type Path struct {
	Nodes []store.Node `json:"nodes"`
	Edges []store.Edge `json:"edges"`
}

// Neighborhood returns the nodes within depth hops of id, in either edge
// direction, and every edge walked to reach them.
func (g *Graph) Neighborhood(ctx context.Context, id string, depth int) (Subgraph, error) {
	if depth < 0 {
		return Subgraph{}, fmt.Errorf("neighborhood: negative depth %d", depth)
	}
	start, err := g.store.ReadNode(ctx, id)
	if err != nil {
		return Subgraph{}, err
	}

	nodes := map[string]store.Node{id: start}
	edges := map[string]store.Edge{}
	frontier := []string{id}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, cur := range frontier {
			out, err := g.store.EdgesOf(ctx, cur, store.Both, "")
			if err != nil {
				return Subgraph{}, fmt.Errorf("neighborhood: %w", err)
			}
			for _, e := range out {
				edges[e.ID] = e
				other := otherEnd(e, cur)
				if _, seen := nodes[other]; seen {
					continue
				}
				n, err := g.store.ReadNode(ctx, other)
				if err != nil {
					return Subgraph{}, fmt.Errorf("neighborhood: %w", err)
				}
				nodes[other] = n
				next = append(next, other)
			}
		}
		frontier = next
	}

	g.logger.Debug("neighborhood", "id", id, "depth", depth, "nodes", len(nodes), "edges", len(edges))
	return Subgraph{
		Nodes: sortedValues(nodes, func(n store.Node) string { return n.ID }),
		Edges: sortedValues(edges, func(e store.Edge) string { return e.ID }),
	}, nil
}

// PathQuery returns the paths matching p, in depth-first order from start
// nodes ordered by id. A node appears at most once per path. At most
// p.MaxPaths (DefaultMaxPaths when <= 0) paths are returned.
func (g *Graph) PathQuery(ctx context.Context, p PathPattern) ([]Path, error) {
	maxPaths := p.MaxPaths
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	trees := make([]projection.Node, len(p.Steps))
	for i, step := range p.Steps {
		tree, err := projection.Parse(step.Filter)
		if err != nil {
			return nil, fmt.Errorf("path query step %d: %w", i, err)
		}
		trees[i] = tree
	}

	starts, err := g.store.SelectNodes(ctx, relational.Translate(p.Start))
	if err != nil {
		return nil, fmt.Errorf("path query start: %w", err)
	}

	w := &pathWalker{
		g:        g,
		steps:    p.Steps,
		trees:    trees,
		maxPaths: maxPaths,
		cache:    map[string]store.Node{},
	}
	for _, n := range starts {
		w.cache[n.ID] = n
	}

	for _, start := range starts {
		if len(w.paths) >= maxPaths {
			break
		}
		if err := w.walk(ctx, Path{Nodes: []store.Node{start}}, map[string]bool{start.ID: true}); err != nil {
			return nil, err
		}
	}

	g.logger.Debug("path query", "starts", len(starts), "steps", len(p.Steps), "paths", len(w.paths))
	return w.paths, nil
}

// pathWalker is the state of one bounded depth-first search.
type pathWalker struct {
	g        *Graph
	steps    []Step
	trees    []projection.Node
	maxPaths int
	cache    map[string]store.Node
	paths    []Path
}

func (w *pathWalker) walk(ctx context.Context, path Path, onPath map[string]bool) error {
	depth := len(path.Edges)
	if depth == len(w.steps) {
		w.paths = append(w.paths, Path{
			Nodes: slices.Clone(path.Nodes),
			Edges: slices.Clone(path.Edges),
		})
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	step := w.steps[depth]
	cur := path.Nodes[len(path.Nodes)-1]
	edges, err := w.g.store.EdgesOf(ctx, cur.ID, step.Direction, step.Label)
	if err != nil {
		return fmt.Errorf("path query step %d: %w", depth, err)
	}

	for _, e := range edges {
		if len(w.paths) >= w.maxPaths {
			return nil
		}
		next := otherEnd(e, cur.ID)
		if onPath[next] {
			continue
		}
		n, err := w.node(ctx, next)
		if err != nil {
			return fmt.Errorf("path query step %d: %w", depth, err)
		}
		matched, err := projection.Match(w.trees[depth], Record(n))
		if err != nil {
			return fmt.Errorf("path query step %d: %w", depth, err)
		}
		if !matched {
			continue
		}

		onPath[next] = true
		err = w.walk(ctx, Path{
			Nodes: append(path.Nodes, n),
			Edges: append(path.Edges, e),
		}, onPath)
		delete(onPath, next)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *pathWalker) node(ctx context.Context, id string) (store.Node, error) {
	if n, ok := w.cache[id]; ok {
		return n, nil
	}
	n, err := w.g.store.ReadNode(ctx, id)
	if err != nil {
		return store.Node{}, err
	}
	w.cache[id] = n
	return n, nil
}

// otherEnd returns the endpoint of e that is not from. For a self-loop it
// returns from.
func otherEnd(e store.Edge, from string) string {
	if e.From == from {
		return e.To
	}
	return e.From
}

func sortedValues[T any](m map[string]T, key func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(key(a), key(b)) })
	return out
}
