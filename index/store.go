package index

// Store should be implemented by objects that can persist the inverted
// index: documents, terms, postings and the derived metrics tables.
//
// All frequency-modifying operations are additive upserts and must be
// atomic so that concurrent indexing runs interleave without losing
// updates.
type Store interface {
	// UpsertDocument creates a new document keyed by URL or updates the
	// mutable fields of an existing one. On success the document's ID and
	// timestamp fields are populated.
	UpsertDocument(doc *Document) error

	// FindDocument looks up a document by its store assigned id.
	FindDocument(id int64) (*Document, error)

	// FindDocumentByURL looks up a document by its unique URL.
	FindDocumentByURL(url string) (*Document, error)

	// Documents returns an iterator over all registered documents.
	Documents() (DocumentIterator, error)

	// DocumentCount returns the total number of registered documents.
	DocumentCount() (int64, error)

	// UpdatePageRank sets the PageRank score for a document.
	UpdatePageRank(docID int64, score float64) error

	// UpsertTerm registers a term if it is missing and adds
	// frequencyDelta to its total frequency. The stored term, including
	// its id, is returned.
	UpsertTerm(text string, frequencyDelta int64) (*Term, error)

	// FindTerm looks up a term by its normalized text.
	FindTerm(text string) (*Term, error)

	// Terms returns an iterator over all registered terms.
	Terms() (TermIterator, error)

	// TermCount returns the total number of registered terms.
	TermCount() (int64, error)

	// AddPosting adds frequency occurrences of a term in a document,
	// creating the posting when absent.
	AddPosting(termID, docID, frequency int64) error

	// AddTagPosting adds frequency occurrences of a term within a
	// specific tag of a document, creating the entry when absent.
	AddTagPosting(termID, docID int64, tag string, frequency int64) error

	// AppendPositions appends token offsets from the whole-document pass
	// to the position list of a (term, document) pair.
	AppendPositions(termID, docID int64, offsets []int64) error

	// Posting returns a single posting, or ErrNotFound.
	Posting(termID, docID int64) (*Posting, error)

	// PostingsForTerm returns up to limit postings for a term ordered by
	// descending frequency. A non-positive limit returns all postings.
	PostingsForTerm(termID int64, limit int) ([]Posting, error)

	// TagPostings returns the per-tag entries for a (term, document) pair.
	TagPostings(termID, docID int64) ([]TagPosting, error)

	// Positions returns the ordered token offsets for a (term, document)
	// pair. A missing entry yields an empty slice, not an error.
	Positions(termID, docID int64) ([]int64, error)

	// DocFrequency returns the number of documents a term appears in.
	DocFrequency(termID int64) (int64, error)

	// ReplaceTermStats atomically replaces the whole term statistics set.
	ReplaceTermStats(stats []TermStats) error

	// TermStatsFor returns the derived statistics for a term, or
	// ErrNotFound when the metrics pass has not covered it yet.
	TermStatsFor(termID int64) (*TermStats, error)

	// UpsertPostingMetrics creates or overwrites derived per-posting
	// metrics entries.
	UpsertPostingMetrics(metrics []PostingMetrics) error

	// PostingMetricsFor returns the derived metrics for a
	// (term, document) pair, or ErrNotFound.
	PostingMetricsFor(termID, docID int64) (*PostingMetrics, error)

	// Close releases any resources held by the store.
	Close() error
}

// DocumentIterator should be implemented by objects that can iterate over
// a stream of documents.
type DocumentIterator interface {
	// Next loads the next item, returns false when no more items
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error

	// Document returns the current document from the result set.
	Document() *Document
}

// TermIterator should be implemented by objects that can iterate over
// a stream of terms.
type TermIterator interface {
	Next() bool
	Error() error
	Close() error

	// Term returns the current term from the result set.
	Term() *Term
}
