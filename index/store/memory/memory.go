// Package memory provides an in-memory index.Store implementation that can
// be concurrently accessed by multiple clients.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kasozi/searchengine/index"
	"github.com/kasozi/searchengine/textproc"
)

// Static and compile-time check to ensure InMemoryStore implements
// the index.Store interface.
var _ index.Store = (*InMemoryStore)(nil)

type postingKey struct {
	termID int64
	docID  int64
}

// InMemoryStore implements an in-memory inverted index.
type InMemoryStore struct {
	mu sync.RWMutex

	nextDocID  int64
	nextTermID int64

	docs         map[int64]*index.Document
	docURLIndex  map[string]*index.Document
	terms        map[int64]*index.Term
	termTextIdx  map[string]*index.Term
	postings     map[int64]map[int64]*index.Posting // termID -> docID -> posting
	tagPostings  map[postingKey]map[string]int64
	positions    map[postingKey][]int64
	termStats    map[int64]*index.TermStats
	postMetrics  map[postingKey]*index.PostingMetrics
	indexedTags  map[string]struct{}
}

// NewInMemoryStore creates a new in-memory index store.
func NewInMemoryStore() *InMemoryStore {
	indexedTags := make(map[string]struct{}, len(textproc.IndexedTags))
	for _, tag := range textproc.IndexedTags {
		indexedTags[tag] = struct{}{}
	}

	return &InMemoryStore{
		docs:        make(map[int64]*index.Document),
		docURLIndex: make(map[string]*index.Document),
		terms:       make(map[int64]*index.Term),
		termTextIdx: make(map[string]*index.Term),
		postings:    make(map[int64]map[int64]*index.Posting),
		tagPostings: make(map[postingKey]map[string]int64),
		positions:   make(map[postingKey][]int64),
		termStats:   make(map[int64]*index.TermStats),
		postMetrics: make(map[postingKey]*index.PostingMetrics),
		indexedTags: indexedTags,
	}
}

// UpsertDocument creates a new document keyed by URL or updates the mutable
// fields of an existing one.
func (s *InMemoryStore) UpsertDocument(doc *index.Document) error {
	if doc.URL == "" {
		return fmt.Errorf("upsert document: %w", index.ErrMissingURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	if existing, exists := s.docURLIndex[doc.URL]; exists {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		doc.PageRank = existing.PageRank
		doc.UpdatedAt = now
		*existing = *doc

		return nil
	}

	s.nextDocID++
	doc.ID = s.nextDocID
	doc.CreatedAt = now
	doc.UpdatedAt = now

	// Make a new local pointer to the document provided by the caller.
	// This step protects the local document data from side-effects
	// triggered outside this method.
	dCopy := new(index.Document)
	*dCopy = *doc

	s.docs[dCopy.ID] = dCopy
	s.docURLIndex[dCopy.URL] = dCopy

	return nil
}

// FindDocument performs a document lookup by id.
func (s *InMemoryStore) FindDocument(id int64) (*index.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.docs[id]
	if !exists {
		return nil, fmt.Errorf("find document: %w", index.ErrNotFound)
	}

	dCopy := new(index.Document)
	*dCopy = *d

	return dCopy, nil
}

// FindDocumentByURL performs a document lookup by its unique URL.
func (s *InMemoryStore) FindDocumentByURL(url string) (*index.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, exists := s.docURLIndex[url]
	if !exists {
		return nil, fmt.Errorf("find document by url: %w", index.ErrNotFound)
	}

	dCopy := new(index.Document)
	*dCopy = *d

	return dCopy, nil
}

// Documents returns an iterator over all registered documents.
func (s *InMemoryStore) Documents() (index.DocumentIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*index.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		list = append(list, doc)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return &documentIterator{store: s, docs: list}, nil
}

// DocumentCount returns the total number of registered documents.
func (s *InMemoryStore) DocumentCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.docs)), nil
}

// UpdatePageRank sets the PageRank score for a document.
func (s *InMemoryStore) UpdatePageRank(docID int64, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, exists := s.docs[docID]
	if !exists {
		return fmt.Errorf("update page rank: %w", index.ErrNotFound)
	}

	d.PageRank = score
	d.UpdatedAt = time.Now()

	return nil
}

// UpsertTerm registers a term if it is missing and adds frequencyDelta to
// its total frequency.
func (s *InMemoryStore) UpsertTerm(text string, frequencyDelta int64) (*index.Term, error) {
	if text == "" {
		return nil, fmt.Errorf("upsert term: %w", index.ErrEmptyTerm)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, exists := s.termTextIdx[text]; exists {
		t.TotalFrequency += frequencyDelta

		tCopy := new(index.Term)
		*tCopy = *t

		return tCopy, nil
	}

	s.nextTermID++
	t := &index.Term{
		ID:             s.nextTermID,
		Text:           text,
		TotalFrequency: frequencyDelta,
	}

	s.terms[t.ID] = t
	s.termTextIdx[t.Text] = t

	tCopy := new(index.Term)
	*tCopy = *t

	return tCopy, nil
}

// FindTerm performs a term lookup by its normalized text.
func (s *InMemoryStore) FindTerm(text string) (*index.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.termTextIdx[text]
	if !exists {
		return nil, fmt.Errorf("find term: %w", index.ErrNotFound)
	}

	tCopy := new(index.Term)
	*tCopy = *t

	return tCopy, nil
}

// Terms returns an iterator over all registered terms.
func (s *InMemoryStore) Terms() (index.TermIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*index.Term, 0, len(s.terms))
	for _, t := range s.terms {
		list = append(list, t)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return &termIterator{store: s, terms: list}, nil
}

// TermCount returns the total number of registered terms.
func (s *InMemoryStore) TermCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.terms)), nil
}

// AddPosting adds frequency occurrences of a term in a document, creating
// the posting when absent.
func (s *InMemoryStore) AddPosting(termID, docID, frequency int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docPostings, exists := s.postings[termID]
	if !exists {
		docPostings = make(map[int64]*index.Posting)
		s.postings[termID] = docPostings
	}

	if p, exists := docPostings[docID]; exists {
		p.Frequency += frequency

		return nil
	}

	docPostings[docID] = &index.Posting{
		TermID:    termID,
		DocID:     docID,
		Frequency: frequency,
	}

	return nil
}

// AddTagPosting adds frequency occurrences of a term within a specific tag
// of a document.
func (s *InMemoryStore) AddTagPosting(
	termID, docID int64, tag string, frequency int64,
) error {

	if _, indexed := s.indexedTags[tag]; !indexed {
		return fmt.Errorf("add tag posting: %q: %w", tag, index.ErrUnknownTag)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := postingKey{termID: termID, docID: docID}

	tagFreqs, exists := s.tagPostings[key]
	if !exists {
		tagFreqs = make(map[string]int64)
		s.tagPostings[key] = tagFreqs
	}

	tagFreqs[tag] += frequency

	return nil
}

// AppendPositions appends token offsets to the position list of a
// (term, document) pair.
func (s *InMemoryStore) AppendPositions(termID, docID int64, offsets []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := postingKey{termID: termID, docID: docID}
	s.positions[key] = append(s.positions[key], offsets...)

	return nil
}

// Posting returns a single posting.
func (s *InMemoryStore) Posting(termID, docID int64) (*index.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.postings[termID][docID]
	if !exists {
		return nil, fmt.Errorf("posting: %w", index.ErrNotFound)
	}

	pCopy := new(index.Posting)
	*pCopy = *p

	return pCopy, nil
}

// PostingsForTerm returns up to limit postings for a term ordered by
// descending frequency.
func (s *InMemoryStore) PostingsForTerm(termID int64, limit int) ([]index.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]index.Posting, 0, len(s.postings[termID]))
	for _, p := range s.postings[termID] {
		list = append(list, *p)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Frequency != list[j].Frequency {
			return list[i].Frequency > list[j].Frequency
		}

		return list[i].DocID < list[j].DocID
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// TagPostings returns the per-tag entries for a (term, document) pair.
func (s *InMemoryStore) TagPostings(termID, docID int64) ([]index.TagPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := postingKey{termID: termID, docID: docID}

	list := make([]index.TagPosting, 0, len(s.tagPostings[key]))
	for tag, freq := range s.tagPostings[key] {
		list = append(list, index.TagPosting{
			TermID:    termID,
			DocID:     docID,
			Tag:       tag,
			Frequency: freq,
		})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Tag < list[j].Tag })

	return list, nil
}

// Positions returns the ordered token offsets for a (term, document) pair.
func (s *InMemoryStore) Positions(termID, docID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.positions[postingKey{termID: termID, docID: docID}]

	offsets := make([]int64, len(stored))
	copy(offsets, stored)

	return offsets, nil
}

// DocFrequency returns the number of documents a term appears in.
func (s *InMemoryStore) DocFrequency(termID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.postings[termID])), nil
}

// ReplaceTermStats atomically replaces the whole term statistics set.
func (s *InMemoryStore) ReplaceTermStats(stats []index.TermStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.termStats = make(map[int64]*index.TermStats, len(stats))
	for i := range stats {
		stat := stats[i]
		s.termStats[stat.TermID] = &stat
	}

	return nil
}

// TermStatsFor returns the derived statistics for a term.
func (s *InMemoryStore) TermStatsFor(termID int64) (*index.TermStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, exists := s.termStats[termID]
	if !exists {
		return nil, fmt.Errorf("term stats: %w", index.ErrNotFound)
	}

	statsCopy := new(index.TermStats)
	*statsCopy = *stats

	return statsCopy, nil
}

// UpsertPostingMetrics creates or overwrites derived per-posting metrics
// entries.
func (s *InMemoryStore) UpsertPostingMetrics(metrics []index.PostingMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range metrics {
		m := metrics[i]
		s.postMetrics[postingKey{termID: m.TermID, docID: m.DocID}] = &m
	}

	return nil
}

// PostingMetricsFor returns the derived metrics for a (term, document) pair.
func (s *InMemoryStore) PostingMetricsFor(termID, docID int64) (*index.PostingMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.postMetrics[postingKey{termID: termID, docID: docID}]
	if !exists {
		return nil, fmt.Errorf("posting metrics: %w", index.ErrNotFound)
	}

	mCopy := new(index.PostingMetrics)
	*mCopy = *m

	return mCopy, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
