package pg

import (
	"database/sql"
	"fmt"

	"github.com/kasozi/searchengine/index"
)

// Static and compile-time checks to ensure the iterators implement the
// index iterator interfaces.
var (
	_ index.DocumentIterator = (*documentIterator)(nil)
	_ index.TermIterator     = (*termIterator)(nil)
)

// documentIterator is an index.DocumentIterator implementation for the
// postgres backed store.
type documentIterator struct {
	rows       *sql.Rows
	currentDoc *index.Document
	lastErr    error
}

// Next loads the next item, returns false when no more documents
// are available or when an error occurs.
func (i *documentIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	d := new(index.Document)

	i.lastErr = i.rows.Scan(
		&d.ID, &d.URL, &d.Title, &d.Content, &d.WordCount, &d.PageRank,
		&d.IndexedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if i.lastErr != nil {
		return false
	}

	i.currentDoc = d

	return true
}

// Error returns the last error encountered by the iterator.
func (i *documentIterator) Error() error {
	return i.lastErr
}

// Close releases any resources allocated to the iterator.
func (i *documentIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("document iterator: %w", err)
	}

	return nil
}

// Document returns the currently fetched document object.
func (i *documentIterator) Document() *index.Document {
	return i.currentDoc
}

// termIterator is an index.TermIterator implementation for the postgres
// backed store.
type termIterator struct {
	rows        *sql.Rows
	currentTerm *index.Term
	lastErr     error
}

// Next advances the iterator. When no terms are available or when an
// error occurs, calls to Next() return false.
func (i *termIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	t := new(index.Term)

	i.lastErr = i.rows.Scan(&t.ID, &t.Text, &t.TotalFrequency)
	if i.lastErr != nil {
		return false
	}

	i.currentTerm = t

	return true
}

// Error returns the last error recorded by the iterator.
func (i *termIterator) Error() error {
	return i.lastErr
}

// Close releases any resources linked to the iterator.
func (i *termIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("term iterator: %w", err)
	}

	return nil
}

// Term returns the currently fetched term object.
func (i *termIterator) Term() *index.Term {
	return i.currentTerm
}
