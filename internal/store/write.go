package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/querysql"
	"github.com/roach88/propgraph/internal/relational"
)

// WriteNode inserts a node, or replaces the labels and data of an existing
// node with the same ID. The node_labels index is rewritten in the same
// transaction.
//
// Data is serialized to canonical JSON.
func (s *Store) WriteNode(ctx context.Context, n Node) error {
	if n.ID == "" {
		return fmt.Errorf("write node: empty id")
	}
	labels, err := normalizeLabels(n.Labels)
	if err != nil {
		return fmt.Errorf("write node %s: %w", n.ID, err)
	}
	joined, _ := joinLabels(labels)
	dataJSON, err := marshalData(n.Data)
	if err != nil {
		return fmt.Errorf("write node %s: %w", n.ID, err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (id, labels, data)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET labels = excluded.labels, data = excluded.data
		`, n.ID, joined, dataJSON)
		if err != nil {
			return fmt.Errorf("write node %s: %w", n.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM node_labels WHERE node_id = ?`, n.ID); err != nil {
			return fmt.Errorf("write node %s labels: %w", n.ID, err)
		}
		for _, label := range labels {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO node_labels (node_id, label) VALUES (?, ?)`, n.ID, label); err != nil {
				return fmt.Errorf("write node %s labels: %w", n.ID, err)
			}
		}
		return nil
	})
}

// UpdateNodeData replaces the data of an existing node.
// Returns ErrNotFound if the node does not exist.
func (s *Store) UpdateNodeData(ctx context.Context, id string, data ir.Object) error {
	dataJSON, err := marshalData(data)
	if err != nil {
		return fmt.Errorf("update node %s: %w", id, err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE nodes SET data = ? WHERE id = ?`, dataJSON, id)
	if err != nil {
		return fmt.Errorf("update node %s: %w", id, err)
	}
	return expectRow(res, "node", id)
}

// DeleteNode deletes a node. Its edges and label index rows cascade.
// Returns ErrNotFound if the node does not exist.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	return expectRow(res, "node", id)
}

// DeleteNodes deletes the nodes d selects and returns how many were
// deleted. A limit in d bounds the deletion to the first rows by id.
func (s *Store) DeleteNodes(ctx context.Context, d relational.Descriptor) (int, error) {
	query, params, err := s.compiler.CompileDelete(querysql.Nodes, d)
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	return int(n), nil
}

// WriteEdge inserts an edge, or replaces an existing edge with the same ID.
// Both endpoints must exist (foreign key constraint).
func (s *Store) WriteEdge(ctx context.Context, e Edge) error {
	if e.ID == "" {
		return fmt.Errorf("write edge: empty id")
	}
	if e.Label == "" {
		return fmt.Errorf("write edge %s: empty label", e.ID)
	}
	dataJSON, err := marshalData(e.Data)
	if err != nil {
		return fmt.Errorf("write edge %s: %w", e.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO edges (id, label, from_id, to_id, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			from_id = excluded.from_id,
			to_id = excluded.to_id,
			data = excluded.data
	`, e.ID, e.Label, e.From, e.To, dataJSON)
	if err != nil {
		return fmt.Errorf("write edge %s: %w", e.ID, err)
	}
	return nil
}

// DeleteEdge deletes an edge.
// Returns ErrNotFound if the edge does not exist.
func (s *Store) DeleteEdge(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	return expectRow(res, "edge", id)
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
