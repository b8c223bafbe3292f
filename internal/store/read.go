package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/querysql"
	"github.com/roach88/propgraph/internal/relational"
)

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ReadNode retrieves a single node by ID.
// Returns ErrNotFound if the node does not exist.
func (s *Store) ReadNode(ctx context.Context, id string) (Node, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, labels, data FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Node{}, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return n, err
}

// ReadEdge retrieves a single edge by ID.
// Returns ErrNotFound if the edge does not exist.
func (s *Store) ReadEdge(ctx context.Context, id string) (Edge, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, from_id, to_id, data FROM edges WHERE id = ?`, id)
	e, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Edge{}, fmt.Errorf("edge %s: %w", id, ErrNotFound)
	}
	return e, err
}

// SelectNodes returns the nodes d selects, ordered by id.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) SelectNodes(ctx context.Context, d relational.Descriptor) ([]Node, error) {
	query, params, err := s.compiler.CompileSelect(querysql.Nodes, d)
	if err != nil {
		return nil, fmt.Errorf("select nodes: %w", err)
	}
	return s.queryNodes(ctx, query, params...)
}

// SelectEdges returns the edges d selects, ordered by id. The labels key
// of the filter addresses the edge label.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) SelectEdges(ctx context.Context, d relational.Descriptor) ([]Edge, error) {
	query, params, err := s.compiler.CompileSelect(querysql.Edges, d)
	if err != nil {
		return nil, fmt.Errorf("select edges: %w", err)
	}
	return s.queryEdges(ctx, query, params...)
}

// CountNodes returns how many nodes d selects. Limit and offset are
// ignored.
func (s *Store) CountNodes(ctx context.Context, d relational.Descriptor) (int, error) {
	query, params, err := s.compiler.CompileCount(querysql.Nodes, d)
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return count, nil
}

// SelectNodesByExpression returns the nodes for which the rendered boolean
// expression of node holds, ordered by id.
func (s *Store) SelectNodesByExpression(ctx context.Context, node projection.Node) ([]Node, error) {
	query, err := s.compiler.CompileExpression(querysql.Nodes, node)
	if err != nil {
		return nil, fmt.Errorf("select nodes by expression: %w", err)
	}
	return s.queryNodes(ctx, query)
}

// NodesByLabel returns the nodes carrying label, ordered by id.
func (s *Store) NodesByLabel(ctx context.Context, label string) ([]Node, error) {
	return s.queryNodes(ctx, `
		SELECT n.id, n.labels, n.data
		FROM node_labels l
		JOIN nodes n ON n.id = l.node_id
		WHERE l.label = ?
		ORDER BY n.id COLLATE BINARY ASC
	`, label)
}

// EdgesOf returns the edges of a node in the given direction, ordered by
// id. An empty label matches every edge label.
func (s *Store) EdgesOf(ctx context.Context, nodeID string, dir Direction, label string) ([]Edge, error) {
	var where string
	var params []any
	switch dir {
	case Out:
		where, params = "from_id = ?", []any{nodeID}
	case In:
		where, params = "to_id = ?", []any{nodeID}
	default:
		where, params = "(from_id = ? OR to_id = ?)", []any{nodeID, nodeID}
	}
	if label != "" {
		where += " AND label = ?"
		params = append(params, label)
	}

	return s.queryEdges(ctx,
		"SELECT id, label, from_id, to_id, data FROM edges WHERE "+where+" ORDER BY id COLLATE BINARY ASC",
		params...)
}

func (s *Store) queryNodes(ctx context.Context, query string, args ...any) ([]Node, error) {
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

func (s *Store) queryEdges(ctx context.Context, query string, args ...any) ([]Edge, error) {
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := []Edge{}
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}

func scanNode(row scanner) (Node, error) {
	var n Node
	var labels, data string
	if err := row.Scan(&n.ID, &labels, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Node{}, err
		}
		return Node{}, fmt.Errorf("scan node: %w", err)
	}
	obj, err := unmarshalData(data)
	if err != nil {
		return Node{}, fmt.Errorf("scan node %s: %w", n.ID, err)
	}
	n.Labels = splitLabels(labels)
	n.Data = obj
	return n, nil
}

func scanEdge(row scanner) (Edge, error) {
	var e Edge
	var data string
	if err := row.Scan(&e.ID, &e.Label, &e.From, &e.To, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Edge{}, err
		}
		return Edge{}, fmt.Errorf("scan edge: %w", err)
	}
	obj, err := unmarshalData(data)
	if err != nil {
		return Edge{}, fmt.Errorf("scan edge %s: %w", e.ID, err)
	}
	e.Data = obj
	return e, nil
}
