package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/propgraph/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedNodes writes nodes with the given ids, labels and data.
func seedNodes(t *testing.T, s *Store, nodes ...Node) {
	t.Helper()
	for _, n := range nodes {
		if err := s.WriteNode(context.Background(), n); err != nil {
			t.Fatalf("WriteNode(%s) failed: %v", n.ID, err)
		}
	}
}

// hobbits is a small fixture shared by the read tests.
func hobbits() []Node {
	return []Node{
		{ID: "n1", Labels: []string{"Person", "Hobbit"}, Data: ir.Obj(ir.M("name", "Frodo"), ir.M("age", 50), ir.M("rings", []string{"One"}))},
		{ID: "n2", Labels: []string{"Person", "Hobbit"}, Data: ir.Obj(ir.M("name", "Sam"), ir.M("age", 38), ir.M("rings", []string{}))},
		{ID: "n3", Labels: []string{"Person", "Wizard"}, Data: ir.Obj(ir.M("name", "Gandalf"), ir.M("age", 2019), ir.M("rings", []string{"Narya"}))},
		{ID: "n4", Labels: []string{"Place"}, Data: ir.Obj(ir.M("name", "Bree"))},
	}
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
