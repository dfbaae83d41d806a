// Package pg provides an index.Store implementation backed by a PostgreSQL
// instance. All frequency writes use additive upserts so that concurrent
// indexing runs never lose updates.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kasozi/searchengine/index"
	"github.com/kasozi/searchengine/textproc"
)

var (
	upsertDocumentQuery = `
					INSERT INTO documents (url, title, content, word_count, indexed_at, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
					ON CONFLICT (url)
					DO UPDATE SET title=EXCLUDED.title, content=EXCLUDED.content,
						word_count=EXCLUDED.word_count, indexed_at=EXCLUDED.indexed_at,
						updated_at=NOW()
					RETURNING id, page_rank, created_at, updated_at
					`
	findDocumentQuery = `
					SELECT id, url, title, content, word_count, page_rank, indexed_at, created_at, updated_at
					FROM documents WHERE id=$1
					`
	findDocumentByURLQuery = `
					SELECT id, url, title, content, word_count, page_rank, indexed_at, created_at, updated_at
					FROM documents WHERE url=$1
					`
	documentsQuery = `
					SELECT id, url, title, content, word_count, page_rank, indexed_at, created_at, updated_at
					FROM documents ORDER BY id
					`
	documentCountQuery = "SELECT COUNT(*) FROM documents"

	updatePageRankQuery = "UPDATE documents SET page_rank=$2, updated_at=NOW() WHERE id=$1"

	upsertTermQuery = `
					INSERT INTO terms (text, total_frequency)
					VALUES ($1, $2)
					ON CONFLICT (text)
					DO UPDATE SET total_frequency = terms.total_frequency + EXCLUDED.total_frequency
					RETURNING id, total_frequency
					`
	findTermQuery  = "SELECT id, text, total_frequency FROM terms WHERE text=$1"
	termsQuery     = "SELECT id, text, total_frequency FROM terms ORDER BY id"
	termCountQuery = "SELECT COUNT(*) FROM terms"

	addPostingQuery = `
					INSERT INTO postings (term_id, doc_id, frequency)
					VALUES ($1, $2, $3)
					ON CONFLICT (term_id, doc_id)
					DO UPDATE SET frequency = postings.frequency + EXCLUDED.frequency
					`
	addTagPostingQuery = `
					INSERT INTO tag_postings (term_id, doc_id, tag, frequency)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (term_id, doc_id, tag)
					DO UPDATE SET frequency = tag_postings.frequency + EXCLUDED.frequency
					`
	appendPositionsQuery = `
					INSERT INTO term_positions (term_id, doc_id, positions)
					VALUES ($1, $2, $3)
					ON CONFLICT (term_id, doc_id)
					DO UPDATE SET positions = array_cat(term_positions.positions, EXCLUDED.positions)
					`
	postingQuery = `
					SELECT term_id, doc_id, frequency FROM postings
					WHERE term_id=$1 AND doc_id=$2
					`
	postingsForTermQuery = `
					SELECT term_id, doc_id, frequency FROM postings
					WHERE term_id=$1 ORDER BY frequency DESC, doc_id LIMIT $2
					`
	allPostingsForTermQuery = `
					SELECT term_id, doc_id, frequency FROM postings
					WHERE term_id=$1 ORDER BY frequency DESC, doc_id
					`
	tagPostingsQuery = `
					SELECT term_id, doc_id, tag, frequency FROM tag_postings
					WHERE term_id=$1 AND doc_id=$2 ORDER BY tag
					`
	positionsQuery = `
					SELECT positions FROM term_positions
					WHERE term_id=$1 AND doc_id=$2
					`
	docFrequencyQuery = "SELECT COUNT(*) FROM postings WHERE term_id=$1"

	deleteTermStatsQuery = "DELETE FROM term_stats"
	insertTermStatsQuery = `
					INSERT INTO term_stats (term_id, document_frequency, idf, total_documents)
					VALUES ($1, $2, $3, $4)
					`
	termStatsQuery = `
					SELECT term_id, document_frequency, idf, total_documents
					FROM term_stats WHERE term_id=$1
					`
	upsertPostingMetricsQuery = `
					INSERT INTO posting_metrics (term_id, doc_id, frequency, term_frequency, tf_idf, normalized_score)
					VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT (term_id, doc_id)
					DO UPDATE SET frequency=EXCLUDED.frequency,
						term_frequency=EXCLUDED.term_frequency,
						tf_idf=EXCLUDED.tf_idf,
						normalized_score=EXCLUDED.normalized_score
					`
	postingMetricsQuery = `
					SELECT term_id, doc_id, frequency, term_frequency, tf_idf, normalized_score
					FROM posting_metrics WHERE term_id=$1 AND doc_id=$2
					`
)

// Static and compile-time check to ensure PostgresStore implements the
// index.Store interface.
var _ index.Store = (*PostgresStore)(nil)

// PostgresStore implements a persistent inverted index using a PostgreSQL
// instance.
type PostgresStore struct {
	db          *sql.DB
	indexedTags map[string]struct{}
}

// NewPostgresStore returns a PostgresStore instance.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	indexedTags := make(map[string]struct{}, len(textproc.IndexedTags))
	for _, tag := range textproc.IndexedTags {
		indexedTags[tag] = struct{}{}
	}

	return &PostgresStore{db: db, indexedTags: indexedTags}, nil
}

// Close terminates the connection to the postgres instance.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// UpsertDocument creates a new document keyed by URL or updates the mutable
// fields of an existing one.
func (s *PostgresStore) UpsertDocument(doc *index.Document) error {
	if doc.URL == "" {
		return fmt.Errorf("upsert document: %w", index.ErrMissingURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := s.db.QueryRowContext(
		ctx, upsertDocumentQuery,
		doc.URL, doc.Title, doc.Content, doc.WordCount, doc.IndexedAt.UTC(),
	).Scan(&doc.ID, &doc.PageRank, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	return nil
}

// FindDocument performs a document lookup by id.
func (s *PostgresStore) FindDocument(id int64) (*index.Document, error) {
	return s.findDocument(findDocumentQuery, id)
}

// FindDocumentByURL performs a document lookup by its unique URL.
func (s *PostgresStore) FindDocumentByURL(url string) (*index.Document, error) {
	return s.findDocument(findDocumentByURLQuery, url)
}

func (s *PostgresStore) findDocument(query string, arg interface{}) (*index.Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	d := new(index.Document)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&d.ID, &d.URL, &d.Title, &d.Content, &d.WordCount, &d.PageRank,
		&d.IndexedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("find document: %w", index.ErrNotFound)
		}

		return nil, fmt.Errorf("find document: %w", err)
	}

	return d, nil
}

// Documents returns an iterator over all registered documents.
func (s *PostgresStore) Documents() (index.DocumentIterator, error) {
	rows, err := s.db.Query(documentsQuery)
	if err != nil {
		return nil, fmt.Errorf("documents: %w", err)
	}

	return &documentIterator{rows: rows}, nil
}

// DocumentCount returns the total number of registered documents.
func (s *PostgresStore) DocumentCount() (int64, error) {
	return s.count(documentCountQuery)
}

// UpdatePageRank sets the PageRank score for a document.
func (s *PostgresStore) UpdatePageRank(docID int64, score float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := s.db.ExecContext(ctx, updatePageRankQuery, docID, score)
	if err != nil {
		return fmt.Errorf("update page rank: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update page rank: %w", index.ErrNotFound)
	}

	return nil
}

// UpsertTerm registers a term if it is missing and adds frequencyDelta to
// its total frequency.
func (s *PostgresStore) UpsertTerm(text string, frequencyDelta int64) (*index.Term, error) {
	if text == "" {
		return nil, fmt.Errorf("upsert term: %w", index.ErrEmptyTerm)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	t := &index.Term{Text: text}

	err := s.db.QueryRowContext(
		ctx, upsertTermQuery, text, frequencyDelta,
	).Scan(&t.ID, &t.TotalFrequency)
	if err != nil {
		return nil, fmt.Errorf("upsert term: %w", err)
	}

	return t, nil
}

// FindTerm performs a term lookup by its normalized text.
func (s *PostgresStore) FindTerm(text string) (*index.Term, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	t := new(index.Term)

	err := s.db.QueryRowContext(ctx, findTermQuery, text).Scan(
		&t.ID, &t.Text, &t.TotalFrequency,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("find term: %w", index.ErrNotFound)
		}

		return nil, fmt.Errorf("find term: %w", err)
	}

	return t, nil
}

// Terms returns an iterator over all registered terms.
func (s *PostgresStore) Terms() (index.TermIterator, error) {
	rows, err := s.db.Query(termsQuery)
	if err != nil {
		return nil, fmt.Errorf("terms: %w", err)
	}

	return &termIterator{rows: rows}, nil
}

// TermCount returns the total number of registered terms.
func (s *PostgresStore) TermCount() (int64, error) {
	return s.count(termCountQuery)
}

// AddPosting adds frequency occurrences of a term in a document.
func (s *PostgresStore) AddPosting(termID, docID, frequency int64) error {
	_, err := s.db.Exec(addPostingQuery, termID, docID, frequency)
	if err != nil {
		return fmt.Errorf("add posting: %w", err)
	}

	return nil
}

// AddTagPosting adds frequency occurrences of a term within a specific tag
// of a document.
func (s *PostgresStore) AddTagPosting(
	termID, docID int64, tag string, frequency int64,
) error {

	if _, indexed := s.indexedTags[tag]; !indexed {
		return fmt.Errorf("add tag posting: %q: %w", tag, index.ErrUnknownTag)
	}

	_, err := s.db.Exec(addTagPostingQuery, termID, docID, tag, frequency)
	if err != nil {
		return fmt.Errorf("add tag posting: %w", err)
	}

	return nil
}

// AppendPositions appends token offsets to the position list of a
// (term, document) pair.
func (s *PostgresStore) AppendPositions(termID, docID int64, offsets []int64) error {
	if len(offsets) == 0 {
		return nil
	}

	_, err := s.db.Exec(appendPositionsQuery, termID, docID, pq.Array(offsets))
	if err != nil {
		return fmt.Errorf("append positions: %w", err)
	}

	return nil
}

// Posting returns a single posting.
func (s *PostgresStore) Posting(termID, docID int64) (*index.Posting, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	p := new(index.Posting)

	err := s.db.QueryRowContext(ctx, postingQuery, termID, docID).Scan(
		&p.TermID, &p.DocID, &p.Frequency,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("posting: %w", index.ErrNotFound)
		}

		return nil, fmt.Errorf("posting: %w", err)
	}

	return p, nil
}

// PostingsForTerm returns up to limit postings for a term ordered by
// descending frequency.
func (s *PostgresStore) PostingsForTerm(termID int64, limit int) ([]index.Posting, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = s.db.Query(postingsForTermQuery, termID, limit)
	} else {
		rows, err = s.db.Query(allPostingsForTermQuery, termID)
	}
	if err != nil {
		return nil, fmt.Errorf("postings for term: %w", err)
	}
	defer rows.Close()

	var postings []index.Posting
	for rows.Next() {
		var p index.Posting
		if err := rows.Scan(&p.TermID, &p.DocID, &p.Frequency); err != nil {
			return nil, fmt.Errorf("postings for term: %w", err)
		}

		postings = append(postings, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postings for term: %w", err)
	}

	return postings, nil
}

// TagPostings returns the per-tag entries for a (term, document) pair.
func (s *PostgresStore) TagPostings(termID, docID int64) ([]index.TagPosting, error) {
	rows, err := s.db.Query(tagPostingsQuery, termID, docID)
	if err != nil {
		return nil, fmt.Errorf("tag postings: %w", err)
	}
	defer rows.Close()

	var tagPostings []index.TagPosting
	for rows.Next() {
		var tp index.TagPosting
		if err := rows.Scan(&tp.TermID, &tp.DocID, &tp.Tag, &tp.Frequency); err != nil {
			return nil, fmt.Errorf("tag postings: %w", err)
		}

		tagPostings = append(tagPostings, tp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tag postings: %w", err)
	}

	return tagPostings, nil
}

// Positions returns the ordered token offsets for a (term, document) pair.
func (s *PostgresStore) Positions(termID, docID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var offsets []int64

	err := s.db.QueryRowContext(ctx, positionsQuery, termID, docID).Scan(
		pq.Array(&offsets),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return []int64{}, nil
		}

		return nil, fmt.Errorf("positions: %w", err)
	}

	return offsets, nil
}

// DocFrequency returns the number of documents a term appears in.
func (s *PostgresStore) DocFrequency(termID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var df int64
	if err := s.db.QueryRowContext(ctx, docFrequencyQuery, termID).Scan(&df); err != nil {
		return 0, fmt.Errorf("doc frequency: %w", err)
	}

	return df, nil
}

// ReplaceTermStats atomically replaces the whole term statistics set using
// a single transaction.
func (s *PostgresStore) ReplaceTermStats(stats []index.TermStats) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace term stats: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(deleteTermStatsQuery); err != nil {
		return fmt.Errorf("replace term stats: %w", err)
	}

	for _, stat := range stats {
		_, err := tx.Exec(
			insertTermStatsQuery,
			stat.TermID, stat.DocumentFrequency, stat.IDF, stat.TotalDocuments,
		)
		if err != nil {
			return fmt.Errorf("replace term stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace term stats: %w", err)
	}

	return nil
}

// TermStatsFor returns the derived statistics for a term.
func (s *PostgresStore) TermStatsFor(termID int64) (*index.TermStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	stats := new(index.TermStats)

	err := s.db.QueryRowContext(ctx, termStatsQuery, termID).Scan(
		&stats.TermID, &stats.DocumentFrequency, &stats.IDF, &stats.TotalDocuments,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("term stats: %w", index.ErrNotFound)
		}

		return nil, fmt.Errorf("term stats: %w", err)
	}

	return stats, nil
}

// UpsertPostingMetrics creates or overwrites derived per-posting metrics
// entries using a single transaction.
func (s *PostgresStore) UpsertPostingMetrics(metrics []index.PostingMetrics) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("upsert posting metrics: %w", err)
	}
	defer tx.Rollback()

	for _, m := range metrics {
		_, err := tx.Exec(
			upsertPostingMetricsQuery,
			m.TermID, m.DocID, m.Frequency, m.TermFrequency, m.TFIDF, m.NormalizedScore,
		)
		if err != nil {
			return fmt.Errorf("upsert posting metrics: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert posting metrics: %w", err)
	}

	return nil
}

// PostingMetricsFor returns the derived metrics for a (term, document) pair.
func (s *PostgresStore) PostingMetricsFor(termID, docID int64) (*index.PostingMetrics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	m := new(index.PostingMetrics)

	err := s.db.QueryRowContext(ctx, postingMetricsQuery, termID, docID).Scan(
		&m.TermID, &m.DocID, &m.Frequency, &m.TermFrequency, &m.TFIDF, &m.NormalizedScore,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("posting metrics: %w", index.ErrNotFound)
		}

		return nil, fmt.Errorf("posting metrics: %w", err)
	}

	return m, nil
}

func (s *PostgresStore) count(query string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var count int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	return count, nil
}
