// Package indextest defines a re-usable set of index store tests that can
// be executed against any concrete type that implements the index.Store
// interface.
package indextest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/index"
)

// BaseSuite defines a set of re-usable store related tests that can be
// executed against any concrete type that implements the index.Store
// interface.
type BaseSuite struct {
	store index.Store
}

// SetStore sets BaseSuite's store field.
func (s *BaseSuite) SetStore(store index.Store) {
	s.store = store
}

// TestUpsertDocument verifies the insert and update logic for documents.
func (s *BaseSuite) TestUpsertDocument(c *check.C) {
	doc := &index.Document{
		URL:       "https://example.com",
		Title:     "test document title",
		Content:   "This should be the body text of the document",
		WordCount: 9,
		IndexedAt: time.Now().Add(-12 * time.Hour).UTC(),
	}

	err := s.store.UpsertDocument(doc)
	c.Assert(err, check.IsNil, check.Commentf("++++Document insert++++: %v", err))
	c.Assert(doc.ID, check.Not(check.Equals), int64(0))

	originalID := doc.ID

	// Update existing document. The URL keys the upsert so the id must
	// remain stable.
	updated := &index.Document{
		URL:       doc.URL,
		Title:     "This is an updated document title",
		Content:   "This is an updated document body",
		WordCount: 6,
		IndexedAt: time.Now().UTC(),
	}

	err = s.store.UpsertDocument(updated)
	c.Assert(err, check.IsNil, check.Commentf("++++Document update++++: %v", err))
	c.Assert(updated.ID, check.Equals, originalID)

	d, err := s.store.FindDocument(originalID)
	c.Assert(err, check.IsNil)
	c.Assert(d.Title, check.Equals, updated.Title)
	c.Assert(d.Content, check.Equals, updated.Content)

	d, err = s.store.FindDocumentByURL(doc.URL)
	c.Assert(err, check.IsNil)
	c.Assert(d.ID, check.Equals, originalID)

	// Insert a document without a URL.
	err = s.store.UpsertDocument(&index.Document{Title: "no url"})
	c.Assert(errors.Is(err, index.ErrMissingURL), check.Equals, true)
}

// TestUpsertDocumentDoesNotOverridePageRank verifies that re-indexing a
// document preserves its previously assigned PageRank score.
func (s *BaseSuite) TestUpsertDocumentDoesNotOverridePageRank(c *check.C) {
	doc := &index.Document{URL: "https://example.com/ranked"}

	c.Assert(s.store.UpsertDocument(doc), check.IsNil)
	c.Assert(s.store.UpdatePageRank(doc.ID, 0.5), check.IsNil)

	c.Assert(s.store.UpsertDocument(&index.Document{
		URL:   doc.URL,
		Title: "re-indexed",
	}), check.IsNil)

	d, err := s.store.FindDocument(doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(d.PageRank, check.Equals, 0.5)
}

// TestUpsertTerm verifies that term upserts are additive.
func (s *BaseSuite) TestUpsertTerm(c *check.C) {
	t, err := s.store.UpsertTerm("search", 3)
	c.Assert(err, check.IsNil)
	c.Assert(t.ID, check.Not(check.Equals), int64(0))
	c.Assert(t.TotalFrequency, check.Equals, int64(3))

	again, err := s.store.UpsertTerm("search", 2)
	c.Assert(err, check.IsNil)
	c.Assert(again.ID, check.Equals, t.ID)
	c.Assert(again.TotalFrequency, check.Equals, int64(5))

	found, err := s.store.FindTerm("search")
	c.Assert(err, check.IsNil)
	c.Assert(found.TotalFrequency, check.Equals, int64(5))

	_, err = s.store.UpsertTerm("", 1)
	c.Assert(errors.Is(err, index.ErrEmptyTerm), check.Equals, true)
}

// TestAddPostingIsAdditive verifies that concurrent-style repeated posting
// writes accumulate rather than overwrite.
func (s *BaseSuite) TestAddPostingIsAdditive(c *check.C) {
	term, doc := s.mustTermAndDoc(c, "additive", "https://example.com/additive")

	c.Assert(s.store.AddPosting(term.ID, doc.ID, 2), check.IsNil)
	c.Assert(s.store.AddPosting(term.ID, doc.ID, 3), check.IsNil)

	p, err := s.store.Posting(term.ID, doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(p.Frequency, check.Equals, int64(5))
}

// TestConcurrentAdditiveWrites ensures that racing term and posting
// frequency increments accumulate without lost updates.
func (s *BaseSuite) TestConcurrentAdditiveWrites(c *check.C) {
	var (
		wg         sync.WaitGroup
		numWriters = 10
		numWrites  = 50
	)

	term, doc := s.mustTermAndDoc(c, "contended", "https://example.com/contended")

	wg.Add(numWriters)

	for i := 0; i < numWriters; i++ {
		go func(id int) {
			defer wg.Done()

			comment := check.Commentf("writer %d", id)

			for j := 0; j < numWrites; j++ {
				_, err := s.store.UpsertTerm("contended", 1)
				c.Assert(err, check.IsNil, comment)
				c.Assert(s.store.AddPosting(term.ID, doc.ID, 1), check.IsNil, comment)
			}
		}(i)
	}

	wg.Wait()

	// mustTermAndDoc seeds the term with one occurrence.
	t, err := s.store.FindTerm("contended")
	c.Assert(err, check.IsNil)
	c.Assert(t.TotalFrequency, check.Equals, int64(1+numWriters*numWrites))

	p, err := s.store.Posting(term.ID, doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(p.Frequency, check.Equals, int64(numWriters*numWrites))
}

// TestPostingsForTermOrderAndLimit verifies descending frequency ordering
// and the posting list cap.
func (s *BaseSuite) TestPostingsForTermOrderAndLimit(c *check.C) {
	term, err := s.store.UpsertTerm("ordered", 0)
	c.Assert(err, check.IsNil)

	for i := 1; i <= 5; i++ {
		doc := &index.Document{URL: fmt.Sprintf("https://example.com/ordered/%d", i)}
		c.Assert(s.store.UpsertDocument(doc), check.IsNil)
		c.Assert(s.store.AddPosting(term.ID, doc.ID, int64(i)), check.IsNil)
	}

	postings, err := s.store.PostingsForTerm(term.ID, 3)
	c.Assert(err, check.IsNil)
	c.Assert(len(postings), check.Equals, 3)
	c.Assert(postings[0].Frequency, check.Equals, int64(5))
	c.Assert(postings[1].Frequency, check.Equals, int64(4))
	c.Assert(postings[2].Frequency, check.Equals, int64(3))

	all, err := s.store.PostingsForTerm(term.ID, 0)
	c.Assert(err, check.IsNil)
	c.Assert(len(all), check.Equals, 5)

	df, err := s.store.DocFrequency(term.ID)
	c.Assert(err, check.IsNil)
	c.Assert(df, check.Equals, int64(5))
}

// TestTagPostings verifies per-tag frequency accumulation and the indexed
// tag allow list.
func (s *BaseSuite) TestTagPostings(c *check.C) {
	term, doc := s.mustTermAndDoc(c, "tagged", "https://example.com/tagged")

	c.Assert(s.store.AddTagPosting(term.ID, doc.ID, "h1", 1), check.IsNil)
	c.Assert(s.store.AddTagPosting(term.ID, doc.ID, "p", 2), check.IsNil)
	c.Assert(s.store.AddTagPosting(term.ID, doc.ID, "p", 1), check.IsNil)

	err := s.store.AddTagPosting(term.ID, doc.ID, "blink", 1)
	c.Assert(errors.Is(err, index.ErrUnknownTag), check.Equals, true)

	tagPostings, err := s.store.TagPostings(term.ID, doc.ID)
	c.Assert(err, check.IsNil)

	freqs := make(map[string]int64)
	for _, tp := range tagPostings {
		freqs[tp.Tag] = tp.Frequency
	}

	c.Assert(freqs, check.DeepEquals, map[string]int64{"h1": 1, "p": 3})
}

// TestAppendPositions verifies offset accumulation and ordering.
func (s *BaseSuite) TestAppendPositions(c *check.C) {
	term, doc := s.mustTermAndDoc(c, "positioned", "https://example.com/positioned")

	c.Assert(s.store.AppendPositions(term.ID, doc.ID, []int64{1, 4}), check.IsNil)
	c.Assert(s.store.AppendPositions(term.ID, doc.ID, []int64{9}), check.IsNil)

	offsets, err := s.store.Positions(term.ID, doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(offsets, check.DeepEquals, []int64{1, 4, 9})

	// A pair without positions yields an empty slice, not an error.
	empty, err := s.store.Positions(term.ID, doc.ID+1000)
	c.Assert(err, check.IsNil)
	c.Assert(len(empty), check.Equals, 0)
}

// TestReplaceTermStats verifies the drop-and-rebuild semantics of the
// derived term statistics.
func (s *BaseSuite) TestReplaceTermStats(c *check.C) {
	term, err := s.store.UpsertTerm("statted", 1)
	c.Assert(err, check.IsNil)

	other, err := s.store.UpsertTerm("statted2", 1)
	c.Assert(err, check.IsNil)

	err = s.store.ReplaceTermStats([]index.TermStats{
		{TermID: term.ID, DocumentFrequency: 2, IDF: 0.5, TotalDocuments: 10},
		{TermID: other.ID, DocumentFrequency: 1, IDF: 1.0, TotalDocuments: 10},
	})
	c.Assert(err, check.IsNil)

	// A second replace drops entries absent from the new set.
	err = s.store.ReplaceTermStats([]index.TermStats{
		{TermID: term.ID, DocumentFrequency: 3, IDF: 0.4, TotalDocuments: 12},
	})
	c.Assert(err, check.IsNil)

	stats, err := s.store.TermStatsFor(term.ID)
	c.Assert(err, check.IsNil)
	c.Assert(stats.DocumentFrequency, check.Equals, int64(3))
	c.Assert(stats.IDF, check.Equals, 0.4)

	_, err = s.store.TermStatsFor(other.ID)
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)
}

// TestUpsertPostingMetrics verifies that metric rewrites are idempotent.
func (s *BaseSuite) TestUpsertPostingMetrics(c *check.C) {
	term, doc := s.mustTermAndDoc(c, "metriced", "https://example.com/metriced")

	metrics := []index.PostingMetrics{{
		TermID:          term.ID,
		DocID:           doc.ID,
		Frequency:       4,
		TermFrequency:   0.04,
		TFIDF:           0.02,
		NormalizedScore: 1.0,
	}}

	c.Assert(s.store.UpsertPostingMetrics(metrics), check.IsNil)

	// Overwrite with recomputed values.
	metrics[0].TFIDF = 0.03
	c.Assert(s.store.UpsertPostingMetrics(metrics), check.IsNil)

	m, err := s.store.PostingMetricsFor(term.ID, doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(m.TFIDF, check.Equals, 0.03)
	c.Assert(m.Frequency, check.Equals, int64(4))
}

// TestCounts verifies the document and term counters.
func (s *BaseSuite) TestCounts(c *check.C) {
	docCount, err := s.store.DocumentCount()
	c.Assert(err, check.IsNil)

	termCount, err := s.store.TermCount()
	c.Assert(err, check.IsNil)

	doc := &index.Document{URL: "https://example.com/counted"}
	c.Assert(s.store.UpsertDocument(doc), check.IsNil)

	_, err = s.store.UpsertTerm("counted", 1)
	c.Assert(err, check.IsNil)

	newDocCount, err := s.store.DocumentCount()
	c.Assert(err, check.IsNil)
	c.Assert(newDocCount, check.Equals, docCount+1)

	newTermCount, err := s.store.TermCount()
	c.Assert(err, check.IsNil)
	c.Assert(newTermCount, check.Equals, termCount+1)
}

// TestLookupMissingEntries verifies the not-found error taxonomy.
func (s *BaseSuite) TestLookupMissingEntries(c *check.C) {
	_, err := s.store.FindDocument(987654321)
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)

	_, err = s.store.FindDocumentByURL("https://example.com/no-such-page")
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)

	_, err = s.store.FindTerm("nosuchterm")
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)

	_, err = s.store.Posting(987654321, 987654321)
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)

	err = s.store.UpdatePageRank(987654321, 0.1)
	c.Assert(errors.Is(err, index.ErrNotFound), check.Equals, true)
}

func (s *BaseSuite) mustTermAndDoc(
	c *check.C, termText, url string,
) (*index.Term, *index.Document) {

	term, err := s.store.UpsertTerm(termText, 1)
	c.Assert(err, check.IsNil)

	doc := &index.Document{URL: url}
	c.Assert(s.store.UpsertDocument(doc), check.IsNil)

	return term, doc
}
