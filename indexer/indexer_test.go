package indexer

import (
	"context"
	"testing"

	check "gopkg.in/check.v1"

	memstore "github.com/kasozi/searchengine/index/store/memory"
	"github.com/kasozi/searchengine/textproc"
)

// Initialize and register an instance of the IndexerTestSuite.
var _ = check.Suite(new(IndexerTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type IndexerTestSuite struct {
	store *memstore.InMemoryStore
	idx   *Indexer
}

func (s *IndexerTestSuite) SetUpTest(c *check.C) {
	s.store = memstore.NewInMemoryStore()

	idx, err := New(Config{IndexStore: s.store})
	c.Assert(err, check.IsNil)

	s.idx = idx
}

const testPage = `<html>
	<head><title>Search Engines Explained</title></head>
	<body>
		<h1>Search engines</h1>
		<p>A search engine builds an inverted index.</p>
		<p>The index maps terms to documents.</p>
	</body>
</html>`

func (s *IndexerTestSuite) TestNewRequiresStore(c *check.C) {
	_, err := New(Config{})
	c.Assert(err, check.ErrorMatches, "(?ms).*index store not provided.*")
}

func (s *IndexerTestSuite) TestIndexDocumentSkipsUnregisteredURL(c *check.C) {
	err := s.idx.IndexDocument("https://example.com/unknown", testPage)
	c.Assert(err, check.IsNil)

	count, err := s.store.DocumentCount()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, int64(0))
}

func (s *IndexerTestSuite) TestIndexDocumentPopulatesDocument(c *check.C) {
	url := "https://example.com/engines"

	_, err := s.idx.RegisterDocument(url)
	c.Assert(err, check.IsNil)

	c.Assert(s.idx.IndexDocument(url, testPage), check.IsNil)

	doc, err := s.store.FindDocumentByURL(url)
	c.Assert(err, check.IsNil)
	c.Assert(doc.Title, check.Equals, "Search Engines Explained")
	c.Assert(doc.Content, check.Equals,
		"A search engine builds an inverted index.\nThe index maps terms to documents.",
	)
	c.Assert(doc.WordCount > 0, check.Equals, true)
	c.Assert(doc.IndexedAt.IsZero(), check.Equals, false)
}

func (s *IndexerTestSuite) TestIndexDocumentRecordsPostings(c *check.C) {
	url := "https://example.com/engines"

	_, err := s.idx.RegisterDocument(url)
	c.Assert(err, check.IsNil)
	c.Assert(s.idx.IndexDocument(url, testPage), check.IsNil)

	doc, err := s.store.FindDocumentByURL(url)
	c.Assert(err, check.IsNil)

	// "search" appears in the title, the h1 and one paragraph.
	term, err := s.store.FindTerm(textproc.Stem("search"))
	c.Assert(err, check.IsNil)

	p, err := s.store.Posting(term.ID, doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(p.Frequency, check.Equals, int64(3))

	tagPostings, err := s.store.TagPostings(term.ID, doc.ID)
	c.Assert(err, check.IsNil)

	freqs := make(map[string]int64)
	for _, tp := range tagPostings {
		freqs[tp.Tag] = tp.Frequency
	}
	c.Assert(freqs, check.DeepEquals, map[string]int64{"title": 1, "h1": 1, "p": 1})

	offsets, err := s.store.Positions(term.ID, doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(len(offsets) > 0, check.Equals, true)
}

func (s *IndexerTestSuite) TestReindexingIsAdditive(c *check.C) {
	url := "https://example.com/engines"

	_, err := s.idx.RegisterDocument(url)
	c.Assert(err, check.IsNil)

	c.Assert(s.idx.IndexDocument(url, testPage), check.IsNil)
	c.Assert(s.idx.IndexDocument(url, testPage), check.IsNil)

	doc, err := s.store.FindDocumentByURL(url)
	c.Assert(err, check.IsNil)

	term, err := s.store.FindTerm(textproc.Stem("search"))
	c.Assert(err, check.IsNil)

	// Postings accumulate: two identical passes double the frequency.
	p, err := s.store.Posting(term.ID, doc.ID)
	c.Assert(err, check.IsNil)
	c.Assert(p.Frequency, check.Equals, int64(6))
	c.Assert(term.TotalFrequency, check.Equals, int64(6))
}

func (s *IndexerTestSuite) TestBuildIndexRegistersAndIndexes(c *check.C) {
	pages := map[string]string{
		"https://example.com/a": testPage,
		"https://example.com/b": `<html><body><p>Another page about engines.</p></body></html>`,
		"https://example.com/c": `<html><body><p>A third page entirely.</p></body></html>`,
	}

	cache := &purgeRecorder{}

	idx, err := New(Config{IndexStore: s.store, Cache: cache, BatchSize: 2})
	c.Assert(err, check.IsNil)

	c.Assert(idx.BuildIndex(context.Background(), pages), check.IsNil)
	c.Assert(cache.purges, check.Equals, 1)

	count, err := s.store.DocumentCount()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, int64(3))

	for url := range pages {
		doc, err := s.store.FindDocumentByURL(url)
		c.Assert(err, check.IsNil)
		c.Assert(doc.IndexedAt.IsZero(), check.Equals, false)
	}
}

func (s *IndexerTestSuite) TestBuildIndexHonorsContext(c *check.C) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.idx.BuildIndex(ctx, map[string]string{"https://example.com/a": testPage})
	c.Assert(err, check.NotNil)
}

type purgeRecorder struct {
	purges int
}

func (r *purgeRecorder) Purge() { r.purges++ }
