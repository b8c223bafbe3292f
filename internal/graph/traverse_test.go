package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/store"
)

// seedFellowship builds:
//
//	frodo -KNOWS-> sam -KNOWS-> gandalf
//	frodo -KNOWS-> gandalf
//	gandalf -VISITED-> bree
//	sam -VISITED-> bree
func seedFellowship(t *testing.T, g *Graph) {
	t.Helper()
	ctx := context.Background()
	for _, n := range []store.Node{
		{ID: "bree", Labels: []string{"Place"}, Data: ir.Obj(ir.M("name", "Bree"))},
		{ID: "frodo", Labels: []string{"Hobbit"}, Data: ir.Obj(ir.M("name", "Frodo"), ir.M("age", 50))},
		{ID: "gandalf", Labels: []string{"Wizard"}, Data: ir.Obj(ir.M("name", "Gandalf"), ir.M("age", 2019))},
		{ID: "sam", Labels: []string{"Hobbit"}, Data: ir.Obj(ir.M("name", "Sam"), ir.M("age", 38))},
	} {
		_, err := g.CreateNode(ctx, n)
		require.NoError(t, err)
	}
	for _, e := range []store.Edge{
		{ID: "e1", Label: "KNOWS", From: "frodo", To: "sam"},
		{ID: "e2", Label: "KNOWS", From: "sam", To: "gandalf"},
		{ID: "e3", Label: "KNOWS", From: "frodo", To: "gandalf"},
		{ID: "e4", Label: "VISITED", From: "gandalf", To: "bree"},
		{ID: "e5", Label: "VISITED", From: "sam", To: "bree"},
	} {
		_, err := g.CreateEdge(ctx, e)
		require.NoError(t, err)
	}
}

func edgeIDs(edges []store.Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}

func TestNeighborhood(t *testing.T) {
	g := newTestGraph(t)
	seedFellowship(t, g)
	ctx := context.Background()

	sub, err := g.Neighborhood(ctx, "frodo", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"frodo"}, ids(sub.Nodes))
	assert.Empty(t, sub.Edges)

	sub, err = g.Neighborhood(ctx, "frodo", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"frodo", "gandalf", "sam"}, ids(sub.Nodes))
	assert.Equal(t, []string{"e1", "e3"}, edgeIDs(sub.Edges))

	sub, err = g.Neighborhood(ctx, "frodo", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"bree", "frodo", "gandalf", "sam"}, ids(sub.Nodes))
	assert.Equal(t, []string{"e1", "e2", "e3", "e4", "e5"}, edgeIDs(sub.Edges))

	_, err = g.Neighborhood(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = g.Neighborhood(ctx, "frodo", -1)
	assert.Error(t, err)
}

func pathIDs(paths []Path) [][]string {
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = ids(p.Nodes)
	}
	return out
}

func TestPathQuery(t *testing.T) {
	g := newTestGraph(t)
	seedFellowship(t, g)
	ctx := context.Background()

	paths, err := g.PathQuery(ctx, PathPattern{
		Start: ir.Obj(ir.M("name", "Frodo")),
		Steps: []Step{
			{Label: "KNOWS", Direction: store.Out},
			{Label: "VISITED", Direction: store.Out, Filter: ir.Obj(ir.M("labels", "Place"))},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"frodo", "sam", "bree"},
		{"frodo", "gandalf", "bree"},
	}, pathIDs(paths))
	assert.Equal(t, []string{"e1", "e5"}, edgeIDs(paths[0].Edges))
}

func TestPathQuery_StepFilter(t *testing.T) {
	g := newTestGraph(t)
	seedFellowship(t, g)

	paths, err := g.PathQuery(context.Background(), PathPattern{
		Start: ir.Obj(ir.M("labels", "Hobbit")),
		Steps: []Step{
			{Label: "KNOWS", Direction: store.Out, Filter: ir.Obj(ir.M("age", ir.Obj(ir.M("$gt", 100))))},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"frodo", "gandalf"},
		{"sam", "gandalf"},
	}, pathIDs(paths))
}

func TestPathQuery_NoRepeatedNodes(t *testing.T) {
	g := newTestGraph(t)
	seedFellowship(t, g)

	paths, err := g.PathQuery(context.Background(), PathPattern{
		Start: ir.Obj(ir.M("id", "frodo")),
		Steps: []Step{
			{Label: "KNOWS", Direction: store.Both},
			{Label: "KNOWS", Direction: store.Both},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"frodo", "sam", "gandalf"},
		{"frodo", "gandalf", "sam"},
	}, pathIDs(paths))
}

func TestPathQuery_MaxPaths(t *testing.T) {
	g := newTestGraph(t)
	seedFellowship(t, g)

	paths, err := g.PathQuery(context.Background(), PathPattern{
		Steps:    []Step{{Direction: store.Both}},
		MaxPaths: 3,
	})
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestPathQuery_NoSteps(t *testing.T) {
	g := newTestGraph(t)
	seedFellowship(t, g)

	paths, err := g.PathQuery(context.Background(), PathPattern{Start: ir.Obj(ir.M("labels", "Wizard"))})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"gandalf"}}, pathIDs(paths))
}

func TestPathQuery_BadStepFilter(t *testing.T) {
	g := newTestGraph(t)

	_, err := g.PathQuery(context.Background(), PathPattern{
		Steps: []Step{{Filter: ir.Obj(ir.M("x", ir.Obj(ir.M("$nope", 1))))}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0")
}

func TestRecord(t *testing.T) {
	rec := Record(store.Node{ID: "a", Labels: []string{"A", "B"}, Data: ir.Obj(ir.M("x", 1), ir.M("id", "shadow"))})

	v, ok := rec.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, ir.String("a"), v)

	v, ok = rec.Lookup("labels")
	require.True(t, ok)
	assert.Equal(t, ir.String("A,B"), v)

	v, ok = rec.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, ir.Int(1), v)
}
