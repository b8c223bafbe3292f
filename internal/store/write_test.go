package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/relational"
)

func TestWriteNode_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.WriteNode(ctx, Node{
		ID:     "n1",
		Labels: []string{"Person", "Hobbit", "Person"},
		Data:   ir.Obj(ir.M("name", "Frodo"), ir.M("age", 50)),
	})
	require.NoError(t, err)

	var labels, data string
	err = s.db.QueryRow(`SELECT labels, data FROM nodes WHERE id = 'n1'`).Scan(&labels, &data)
	require.NoError(t, err)
	assert.Equal(t, "Hobbit,Person", labels)
	assert.Equal(t, `{"age":50,"name":"Frodo"}`, data)

	var indexed int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM node_labels WHERE node_id = 'n1'`).Scan(&indexed)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)
}

func TestWriteNode_Upsert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteNode(ctx, Node{ID: "n1", Labels: []string{"A", "B"}}))
	require.NoError(t, s.WriteNode(ctx, Node{ID: "n1", Labels: []string{"C"}, Data: ir.Obj(ir.M("x", 1))}))

	n, err := s.ReadNode(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, n.Labels)
	assert.Equal(t, ir.Obj(ir.M("x", 1)), n.Data)

	byA, err := s.NodesByLabel(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, byA)
}

func TestWriteNode_Invalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.WriteNode(ctx, Node{}))
	assert.Error(t, s.WriteNode(ctx, Node{ID: "n1", Labels: []string{"a,b"}}))
}

func TestUpdateNodeData(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedNodes(t, s, Node{ID: "n1", Labels: []string{"A"}, Data: ir.Obj(ir.M("x", 1))})

	require.NoError(t, s.UpdateNodeData(ctx, "n1", ir.Obj(ir.M("y", 2))))

	n, err := s.ReadNode(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, ir.Obj(ir.M("y", 2)), n.Data)
	assert.Equal(t, []string{"A"}, n.Labels)

	err = s.UpdateNodeData(ctx, "missing", ir.Object{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteNode_CascadesEdges(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedNodes(t, s, Node{ID: "a", Labels: []string{"X"}}, Node{ID: "b"})
	require.NoError(t, s.WriteEdge(ctx, Edge{ID: "e1", Label: "KNOWS", From: "a", To: "b"}))

	require.NoError(t, s.DeleteNode(ctx, "a"))

	_, err := s.ReadEdge(ctx, "e1")
	assert.ErrorIs(t, err, ErrNotFound)

	var indexed int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM node_labels`).Scan(&indexed))
	assert.Equal(t, 0, indexed)

	assert.ErrorIs(t, s.DeleteNode(ctx, "a"), ErrNotFound)
}

func TestDeleteNodes(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedNodes(t, s, hobbits()...)

	filter := ir.Obj(ir.M("labels", ir.Obj(ir.M("$contains", "Hobbit"))))
	n, err := s.DeleteNodes(ctx, relational.Translate(filter).WithLimit(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := s.SelectNodes(ctx, relational.Descriptor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n2", "n3", "n4"}, nodeIDs(remaining))

	n, err = s.DeleteNodes(ctx, relational.Translate(filter))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteEdge(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedNodes(t, s, Node{ID: "a"}, Node{ID: "b"})

	e := Edge{ID: "e1", Label: "KNOWS", From: "a", To: "b", Data: ir.Obj(ir.M("since", 2001))}
	require.NoError(t, s.WriteEdge(ctx, e))

	got, err := s.ReadEdge(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, e, got)

	assert.Error(t, s.WriteEdge(ctx, Edge{ID: "e2", Label: "KNOWS", From: "a", To: "missing"}))
	assert.Error(t, s.WriteEdge(ctx, Edge{ID: "e3", From: "a", To: "b"}))
	assert.Error(t, s.WriteEdge(ctx, Edge{Label: "KNOWS", From: "a", To: "b"}))
}

func TestDeleteEdge(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	seedNodes(t, s, Node{ID: "a"}, Node{ID: "b"})
	require.NoError(t, s.WriteEdge(ctx, Edge{ID: "e1", Label: "KNOWS", From: "a", To: "b"}))

	require.NoError(t, s.DeleteEdge(ctx, "e1"))
	assert.ErrorIs(t, s.DeleteEdge(ctx, "e1"), ErrNotFound)

	// Endpoints survive.
	_, err := s.ReadNode(ctx, "a")
	assert.NoError(t, err)
}
