package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/relational"
)

func selectIDs(t *testing.T, s *Store, filter string) []string {
	t.Helper()
	obj, err := ir.ParseObject([]byte(filter))
	require.NoError(t, err)
	nodes, err := s.SelectNodes(context.Background(), relational.Translate(obj))
	require.NoError(t, err)
	return nodeIDs(nodes)
}

func expressionIDs(t *testing.T, s *Store, filter string) []string {
	t.Helper()
	obj, err := ir.ParseObject([]byte(filter))
	require.NoError(t, err)
	tree, err := projection.Parse(obj)
	require.NoError(t, err)
	nodes, err := s.SelectNodesByExpression(context.Background(), tree)
	require.NoError(t, err)
	return nodeIDs(nodes)
}

func TestReadNode(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s, hobbits()...)

	n, err := s.ReadNode(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, []string{"Hobbit", "Person"}, n.Labels)
	assert.Equal(t, ir.Obj(ir.M("age", 50), ir.M("name", "Frodo"), ir.M("rings", []string{"One"})), n.Data)

	_, err = s.ReadNode(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestSelectNodes(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s, hobbits()...)

	testCases := []struct {
		filter string
		want   []string
	}{
		{`{}`, []string{"n1", "n2", "n3", "n4"}},
		{`{"id": "n3"}`, []string{"n3"}},
		{`{"labels": "Hobbit,Person"}`, []string{"n1", "n2"}},
		{`{"name": "Sam"}`, []string{"n2"}},
		{`{"age": {"$gt": 40}}`, []string{"n1", "n3"}},
		{`{"age": {"$gte": 38, "$lt": 100}}`, []string{"n1", "n2"}},
		{`{"name": {"$in": ["Sam", "Bree"]}}`, []string{"n2", "n4"}},
		{`{"name": {"$startsWith": "g"}}`, []string{"n3"}},
		{`{"name": {"$contains": "r"}}`, []string{"n1", "n4"}},
		{`{"$or": [{"name": "Sam"}, {"age": {"$gt": 1000}}]}`, []string{"n2", "n3"}},
		{`{"$and": [{"labels": {"$contains": "Person"}}, {"age": {"$lt": 45}}]}`, []string{"n2"}},
		{`{"rings": {"$size": 1}}`, []string{"n1", "n3"}},
		{`{"rings": {"$size": 0}, "name": "Sam"}`, []string{"n2"}},
		{`{"rings": ["One"]}`, []string{"n1"}},
		{`{"age": null}`, []string{"n4"}},
		{`{"name": {"$gt": 1}}`, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.filter, func(t *testing.T) {
			assert.Equal(t, tc.want, selectIDs(t, s, tc.filter))
		})
	}
}

func TestSelectNodes_Pagination(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s, hobbits()...)

	nodes, err := s.SelectNodes(context.Background(), relational.Descriptor{}.WithLimit(2, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"n2", "n3"}, nodeIDs(nodes))
}

func TestSelectNodes_CompileError(t *testing.T) {
	s := createTestStore(t)

	_, err := s.SelectNodes(context.Background(),
		relational.Translate(ir.Obj(ir.M("a", ir.Obj(ir.M("$eqq", 1))))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select nodes")
}

func TestCountNodes(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s, hobbits()...)

	count, err := s.CountNodes(context.Background(),
		relational.Translate(ir.Obj(ir.M("labels", ir.Obj(ir.M("$contains", "Person"))))))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSelectNodesByExpression(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s, hobbits()...)

	testCases := []struct {
		filter string
		want   []string
	}{
		{`{}`, []string{"n1", "n2", "n3", "n4"}},
		{`{"age": {"$gt": 40}}`, []string{"n1", "n3"}},
		{`{"name": {"$in": ["Sam", "Bree"]}}`, []string{"n2", "n4"}},
		{`{"name": {"$startsWith": "g"}}`, []string{"n3"}},
		{`{"name": {"$regex": "^[FS]"}}`, []string{"n1", "n2"}},
		{`{"$or": [{"name": "Sam"}, {"age": {"$gt": 1000}}], "labels": "Person,Wizard"}`, []string{"n3"}},
		{`{"id": "n4"}`, []string{"n4"}},
	}

	for _, tc := range testCases {
		t.Run(tc.filter, func(t *testing.T) {
			assert.Equal(t, tc.want, expressionIDs(t, s, tc.filter))
		})
	}
}

func TestSelectNodes_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s,
		Node{ID: "a", Data: ir.Obj(ir.M("x", 3))},
		Node{ID: "b", Data: ir.Obj(ir.M("x", 9))},
		Node{ID: "c", Data: ir.Obj(ir.M("x", 12.5))},
		Node{ID: "d", Data: ir.Obj(ir.M("y", 100))},
	)

	filter := `{"x": {"$gt": 8}}`
	assert.Equal(t, []string{"b", "c"}, selectIDs(t, s, filter))
	assert.Equal(t, selectIDs(t, s, filter), expressionIDs(t, s, filter))
}

func TestSelectNodes_RoundTripLikeWildcards(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s,
		Node{ID: "a", Data: ir.Obj(ir.M("name", "snake_case"))},
		Node{ID: "b", Data: ir.Obj(ir.M("name", "camelCase"))},
		Node{ID: "c", Data: ir.Obj(ir.M("name", "50% off"))},
		Node{ID: "d", Data: ir.Obj(ir.M("name", `back\slash`))},
	)

	testCases := []struct {
		filter string
		want   []string
	}{
		{`{"name": {"$contains": "_"}}`, []string{"a"}},
		{`{"name": {"$startsWith": "5%"}}`, nil},
		{`{"name": {"$startsWith": "50%"}}`, []string{"c"}},
		{`{"name": {"$contains": "%"}}`, []string{"c"}},
		{`{"name": {"$contains": "\\"}}`, []string{"d"}},
		{`{"name": {"$contains": "case"}}`, []string{"a", "b"}},
	}
	for _, tc := range testCases {
		t.Run(tc.filter, func(t *testing.T) {
			want := tc.want
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, selectIDs(t, s, tc.filter))
			assert.Equal(t, want, expressionIDs(t, s, tc.filter))
		})
	}
}

func TestNodesByLabel(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s, hobbits()...)

	nodes, err := s.NodesByLabel(context.Background(), "Person")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2", "n3"}, nodeIDs(nodes))

	nodes, err = s.NodesByLabel(context.Background(), "Dragon")
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.NotNil(t, nodes)
}

func TestEdgesOf(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedNodes(t, s, hobbits()...)
	for _, e := range []Edge{
		{ID: "e1", Label: "KNOWS", From: "n1", To: "n2"},
		{ID: "e2", Label: "KNOWS", From: "n3", To: "n1"},
		{ID: "e3", Label: "VISITED", From: "n1", To: "n4"},
	} {
		require.NoError(t, s.WriteEdge(ctx, e))
	}

	edgeIDs := func(edges []Edge) []string {
		ids := make([]string, len(edges))
		for i, e := range edges {
			ids[i] = e.ID
		}
		return ids
	}

	out, err := s.EdgesOf(ctx, "n1", Out, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e3"}, edgeIDs(out))

	in, err := s.EdgesOf(ctx, "n1", In, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"e2"}, edgeIDs(in))

	both, err := s.EdgesOf(ctx, "n1", Both, "KNOWS")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, edgeIDs(both))

	selected, err := s.SelectEdges(ctx, relational.Translate(ir.Obj(ir.M("labels", "VISITED"))))
	require.NoError(t, err)
	assert.Equal(t, []string{"e3"}, edgeIDs(selected))
}

func TestReads_OrderByBinaryID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"b", "B", "a", "A"} {
		seedNodes(t, s, Node{ID: id, Labels: []string{"Letter"}, Data: ir.Obj(ir.M("x", 1))})
	}
	for _, e := range []Edge{
		{ID: "e", Label: "NEXT", From: "a", To: "b"},
		{ID: "E", Label: "NEXT", From: "a", To: "B"},
	} {
		require.NoError(t, s.WriteEdge(ctx, e))
	}
	want := []string{"A", "B", "a", "b"}

	assert.Equal(t, want, selectIDs(t, s, `{}`))
	assert.Equal(t, want, selectIDs(t, s, `{"x": 1}`))
	assert.Equal(t, want, expressionIDs(t, s, `{"x": 1}`))

	byLabel, err := s.NodesByLabel(ctx, "Letter")
	require.NoError(t, err)
	assert.Equal(t, want, nodeIDs(byLabel))

	limited, err := s.SelectNodes(ctx, relational.Translate(ir.Obj()).WithLimit(2, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "a"}, nodeIDs(limited))

	edges, err := s.EdgesOf(ctx, "a", Out, "NEXT")
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "E", edges[0].ID)
	assert.Equal(t, "e", edges[1].ID)

	deleted, err := s.DeleteNodes(ctx, relational.Translate(ir.Obj()).WithLimit(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	_, err = s.ReadNode(ctx, "A")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuery(t *testing.T) {
	s := createTestStore(t)
	seedNodes(t, s, hobbits()...)

	rows, err := s.Query(context.Background(), "SELECT id FROM nodes WHERE labels = ? ORDER BY id COLLATE BINARY ASC", "Place")
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"n4"}, ids)
}
