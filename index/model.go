// Package index defines the data model for the inverted index along with
// the Store interface implemented by the available storage backends.
package index

import "time"

// Document defines a web page registered with the index. Content holds the
// markup-stripped text with paragraphs separated by newlines, which is what
// phrase verification and snippet generation operate on.
type Document struct {
	// Store assigned identifier. Stable across re-indexing runs.
	ID int64

	// URL pointing to the source of the document content. Unique.
	URL string

	// Title of the document (if available).
	Title string

	// Markup-stripped text content.
	Content string

	// Number of tokens produced by the whole-document normalization pass.
	WordCount int64

	// PageRank score assigned to this document.
	PageRank float64

	// Last time the document content was indexed.
	IndexedAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Term defines a normalized word known to the index.
type Term struct {
	// Store assigned identifier.
	ID int64

	// Stemmed lowercase text. Unique.
	Text string

	// Total number of occurrences across all documents.
	TotalFrequency int64
}

// Posting records how often a term occurs in a document. Postings are only
// ever written through additive upserts so that concurrent indexing runs
// never lose updates.
type Posting struct {
	TermID    int64
	DocID     int64
	Frequency int64
}

// TagPosting records a term's occurrences within a specific HTML tag of a
// document. Tag is one of textproc.IndexedTags.
type TagPosting struct {
	TermID    int64
	DocID     int64
	Tag       string
	Frequency int64
}

// TermStats holds the per-term derived values produced by the metrics pass.
// The whole set is dropped and rebuilt on every run.
type TermStats struct {
	TermID int64

	// Number of documents the term appears in.
	DocumentFrequency int64

	// Inverse document frequency: log10(totalDocs / max(1, df)).
	IDF float64

	// Corpus size at computation time.
	TotalDocuments int64
}

// PostingMetrics holds the per-(term, document) derived values produced by
// the metrics pass.
type PostingMetrics struct {
	TermID int64
	DocID  int64

	// Raw occurrence count, copied from the posting at computation time.
	Frequency int64

	// Frequency divided by the document's word count.
	TermFrequency float64

	// TermFrequency * IDF.
	TFIDF float64

	// TFIDF divided by the highest TFIDF recorded for the term.
	NormalizedScore float64
}
