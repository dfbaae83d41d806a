// Package pg provides a graph.Graph implementation backed by a PostgreSQL
// instance.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kasozi/searchengine/linkgraph/graph"
)

var (
	upsertLinkQuery = `
					INSERT INTO links (url, retrieved_at)
					VALUES ($1, $2)
					ON CONFLICT (url)
					DO UPDATE SET retrieved_at=GREATEST(links.retrieved_at, $2)
					RETURNING id, retrieved_at
					`
	findLinkQuery = "SELECT id, url, retrieved_at FROM links WHERE id=$1"

	linksQuery = "SELECT id, url, retrieved_at FROM links"

	upsertEdgeQuery = `
					INSERT INTO edges (src, dest, updated_at)
					VALUES ($1, $2, NOW())
					ON CONFLICT (src, dest)
					DO UPDATE SET updated_at=NOW()
					RETURNING id, updated_at
					`
	edgesQuery = "SELECT id, src, dest, updated_at FROM edges"

	removeStaleEdgesQuery = "DELETE FROM edges WHERE src=$1 AND updated_at < $2"
)

// Static and compile-time check to ensure PostgresGraph implements
// Graph interface.
var _ graph.Graph = (*PostgresGraph)(nil)

// PostgresGraph implements a persistent link and edge graph using a
// PostgreSQL instance.
type PostgresGraph struct {
	db *sql.DB
}

// NewPostgresGraph returns a PostgresGraph instance.
func NewPostgresGraph(dsn string) (*PostgresGraph, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return &PostgresGraph{db}, nil
}

// Close terminates the connection to the postgres instance.
func (s *PostgresGraph) Close() error {
	return s.db.Close()
}

// UpsertLink creates a new or updates an existing link.
func (s *PostgresGraph) UpsertLink(link *graph.Link) error {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.db.QueryRowContext(
		ctx, upsertLinkQuery, link.URL, link.RetrievedAt,
	).Scan(&link.ID, &link.RetrievedAt)
	if err != nil {
		return fmt.Errorf("upsert link: %w", err)
	}

	return nil
}

// FindLink performs a link lookup by id.
func (s *PostgresGraph) FindLink(id uuid.UUID) (*graph.Link, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	l := new(graph.Link)

	err := s.db.QueryRowContext(ctx, findLinkQuery, id).Scan(&l.ID, &l.URL, &l.RetrievedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("find link: %w", graph.ErrNotFound)
		}

		return nil, fmt.Errorf("find link: %w", err)
	}

	return l, nil
}

// Links returns an iterator over all links in the graph.
func (s *PostgresGraph) Links() (graph.LinkIterator, error) {
	rows, err := s.db.Query(linksQuery)
	if err != nil {
		return nil, fmt.Errorf("links: %w", err)
	}

	return &linkIterator{rows: rows}, nil
}

// UpsertEdge creates a new or updates an existing edge.
func (s *PostgresGraph) UpsertEdge(edge *graph.Edge) error {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.db.QueryRowContext(
		ctx, upsertEdgeQuery, edge.Src, edge.Dest,
	).Scan(&edge.ID, &edge.UpdatedAt)
	if err != nil {
		if isForeignKeyViolationError(err) {
			err = graph.ErrUnknownEdgeLinks
		}

		return fmt.Errorf("upsert edge: %w", err)
	}

	return nil
}

// RemoveStaleEdges removes any edge that originates from a specific link ID
// and was updated before the specified [updatedBefore] time.
func (s *PostgresGraph) RemoveStaleEdges(
	fromID uuid.UUID, updatedBefore time.Time,
) error {

	_, err := s.db.Exec(removeStaleEdgesQuery, fromID, updatedBefore)
	if err != nil {
		return fmt.Errorf("remove stale edges: %w", err)
	}

	return nil
}

// Edges returns an iterator over all edges in the graph.
func (s *PostgresGraph) Edges() (graph.EdgeIterator, error) {
	rows, err := s.db.Query(edgesQuery)
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}

	return &edgeIterator{rows: rows}, nil
}

// isForeignKeyViolationError returns true if error is a foreign key
// constraint violation error.
func isForeignKeyViolationError(err error) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}

	return pqErr.Code.Name() == "foreign_key_violation"
}
