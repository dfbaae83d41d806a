package query_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/index"
	memstore "github.com/kasozi/searchengine/index/store/memory"
	"github.com/kasozi/searchengine/indexer"
	"github.com/kasozi/searchengine/metrics"
	"github.com/kasozi/searchengine/query"
)

func Test(t *testing.T) { check.TestingT(t) }

const (
	goPageURL     = "https://example.com/go"
	searchPageURL = "https://example.com/search-basics"
	distPageURL   = "https://example.com/distributed"
)

var corpusPages = map[string]string{
	goPageURL: `<html><head><title>The Go Programming Language</title></head><body>
<h1>The Go Programming Language</h1>
<p>Go makes it easy to build simple, reliable and efficient software.</p>
<p>Concurrency primitives such as channels and goroutines are built into the language itself.</p>
</body></html>`,
	searchPageURL: `<html><head><title>Search Engine Basics</title></head><body>
<h1>Search Engine Basics</h1>
<p>A search engine crawls pages and ranks them for every query it receives.</p>
<p>An inverted index maps every term to the documents containing that term.</p>
</body></html>`,
	distPageURL: `<html><head><title>Distributed Systems</title></head><body>
<h1>Distributed Systems</h1>
<p>Distributed search systems scale horizontally across many machines.</p>
<p>Each shard answers queries independently and the results are merged afterwards.</p>
</body></html>`,
}

// countingStore wraps an index store and counts term lookups so tests
// can observe whether a search hit the cache or ran the pipeline.
type countingStore struct {
	index.Store
	findTermCalls int64
}

func (cs *countingStore) FindTerm(text string) (*index.Term, error) {
	atomic.AddInt64(&cs.findTermCalls, 1)
	return cs.Store.FindTerm(text)
}

// gatedStore blocks every document fetch after the first for one
// document so tests can stall the result detail stage.
type gatedStore struct {
	index.Store
	blockID int64
	calls   int64
	gate    chan struct{}
}

func (gs *gatedStore) FindDocument(id int64) (*index.Document, error) {
	if id == gs.blockID && atomic.AddInt64(&gs.calls, 1) > 1 {
		<-gs.gate
	}
	return gs.Store.FindDocument(id)
}

type EngineTestSuite struct {
	store  *countingStore
	engine *query.Engine
}

var _ = check.Suite(new(EngineTestSuite))

func (s *EngineTestSuite) SetUpTest(c *check.C) {
	s.store = &countingStore{Store: memstore.NewInMemoryStore()}

	idx, err := indexer.New(indexer.Config{IndexStore: s.store})
	c.Assert(err, check.IsNil)
	c.Assert(idx.BuildIndex(context.Background(), corpusPages), check.IsNil)

	computer, err := metrics.New(metrics.Config{IndexStore: s.store})
	c.Assert(err, check.IsNil)
	c.Assert(computer.ComputeAndStore(context.Background()), check.IsNil)

	s.engine, err = query.NewEngine(query.Config{IndexStore: s.store})
	c.Assert(err, check.IsNil)
}

func (s *EngineTestSuite) search(c *check.C, expr string, page, pageSize int) *query.Results {
	res, err := s.engine.Search(context.Background(), expr, page, pageSize)
	c.Assert(err, check.IsNil, check.Commentf("expr: %s", expr))
	return res
}

func (s *EngineTestSuite) resultURLs(res *query.Results) []string {
	urls := make([]string, len(res.Results))
	for i, r := range res.Results {
		urls[i] = r.URL
	}
	return urls
}

func (s *EngineTestSuite) TestFreeTextSearch(c *check.C) {
	res := s.search(c, "search engine", 1, 10)

	c.Assert(res.TotalResults > 0, check.Equals, true)
	c.Assert(res.Results[0].URL, check.Equals, searchPageURL)
	c.Assert(res.Results[0].Title, check.Equals, "Search Engine Basics")
	c.Assert(res.Results[0].Snippet, check.Not(check.Equals), "")
	c.Assert(res.Results[0].Score > 0, check.Equals, true)
}

func (s *EngineTestSuite) TestFreeTextFallsBackToPartialMatches(c *check.C) {
	// "goroutines" only occurs on the Go page and "shard" only on the
	// distributed systems page, so no single document contains both terms.
	res := s.search(c, "goroutines shard", 1, 10)

	c.Assert(res.TotalResults, check.Equals, 2)
	for _, url := range s.resultURLs(res) {
		c.Assert(url == goPageURL || url == distPageURL, check.Equals, true)
	}
}

func (s *EngineTestSuite) TestExactTitleMatchRanksFirst(c *check.C) {
	res := s.search(c, "Search Engine Basics", 1, 10)

	c.Assert(res.TotalResults > 0, check.Equals, true)
	c.Assert(res.Results[0].URL, check.Equals, searchPageURL)
}

func (s *EngineTestSuite) TestPhraseSearch(c *check.C) {
	res := s.search(c, `"inverted index"`, 1, 10)

	c.Assert(res.TotalResults, check.Equals, 1)
	c.Assert(res.Results[0].URL, check.Equals, searchPageURL)
	c.Assert(strings.Contains(res.Results[0].Snippet, "<b>inverted</b>"), check.Equals, true)
	c.Assert(strings.Contains(res.Results[0].Snippet, "<b>index</b>"), check.Equals, true)
}

func (s *EngineTestSuite) TestPhraseRequiresAdjacentWords(c *check.C) {
	// Both words occur in the corpus but never next to each other.
	res := s.search(c, `"index search"`, 1, 10)

	c.Assert(res.TotalResults, check.Equals, 0)
}

func (s *EngineTestSuite) TestPhraseWithNoOccurrences(c *check.C) {
	res := s.search(c, `"purple elephant parade"`, 1, 10)

	c.Assert(res.TotalResults, check.Equals, 0)
	c.Assert(res.Results, check.HasLen, 0)
}

func (s *EngineTestSuite) TestBooleanAnd(c *check.C) {
	res := s.search(c, `"search" AND "distributed"`, 1, 10)

	c.Assert(s.resultURLs(res), check.DeepEquals, []string{distPageURL})
}

func (s *EngineTestSuite) TestBooleanOr(c *check.C) {
	res := s.search(c, `"search" OR "goroutines"`, 1, 10)

	urls := s.resultURLs(res)
	c.Assert(urls, check.HasLen, 3)
	seen := make(map[string]bool)
	for _, u := range urls {
		seen[u] = true
	}
	c.Assert(seen[goPageURL], check.Equals, true)
	c.Assert(seen[searchPageURL], check.Equals, true)
	c.Assert(seen[distPageURL], check.Equals, true)
}

func (s *EngineTestSuite) TestBooleanOrSumsContributionsAcrossOperands(c *check.C) {
	// The distributed systems page matches both operands so its summed
	// score outranks the search basics page, which matches one.
	res := s.search(c, `"search" OR "distributed"`, 1, 10)

	c.Assert(res.TotalResults, check.Equals, 2)
	c.Assert(res.Results[0].URL, check.Equals, distPageURL)
	c.Assert(res.Results[1].URL, check.Equals, searchPageURL)
}

func (s *EngineTestSuite) TestBooleanNot(c *check.C) {
	res := s.search(c, `"search" NOT "distributed"`, 1, 10)

	c.Assert(s.resultURLs(res), check.DeepEquals, []string{searchPageURL})
}

func (s *EngineTestSuite) TestUnquotedOperandsAreRejected(c *check.C) {
	_, err := s.engine.Search(context.Background(), "search AND ranking", 1, 10)

	c.Assert(errors.Is(err, query.ErrBadQuery), check.Equals, true)
	c.Assert(err, check.ErrorMatches, ".*operators require both operands in quotes")
}

func (s *EngineTestSuite) TestPagination(c *check.C) {
	first := s.search(c, `"search" OR "goroutines"`, 1, 2)
	c.Assert(first.Results, check.HasLen, 2)
	c.Assert(first.TotalResults, check.Equals, 3)
	c.Assert(first.TotalPages, check.Equals, 2)

	second := s.search(c, `"search" OR "goroutines"`, 2, 2)
	c.Assert(second.Results, check.HasLen, 1)

	beyond := s.search(c, `"search" OR "goroutines"`, 9, 2)
	c.Assert(beyond.Results, check.HasLen, 0)
	c.Assert(beyond.TotalResults, check.Equals, 3)
}

func (s *EngineTestSuite) TestPageRankOrdersEqualHeuristicMatches(c *check.C) {
	store := memstore.NewInMemoryStore()
	pages := map[string]string{
		"https://example.com/ds-one": `<html><head><title>Distributed Systems Primer</title></head><body>
<p>Distributed systems replicate state across many machines.</p>
</body></html>`,
		"https://example.com/ds-two": `<html><head><title>Advanced Distributed Systems</title></head><body>
<p>Distributed systems replicate state across many machines.</p>
</body></html>`,
	}

	idx, err := indexer.New(indexer.Config{IndexStore: store})
	c.Assert(err, check.IsNil)
	c.Assert(idx.BuildIndex(context.Background(), pages), check.IsNil)

	computer, err := metrics.New(metrics.Config{IndexStore: store})
	c.Assert(err, check.IsNil)
	c.Assert(computer.ComputeAndStore(context.Background()), check.IsNil)

	authority, err := store.FindDocumentByURL("https://example.com/ds-two")
	c.Assert(err, check.IsNil)
	c.Assert(store.UpdatePageRank(authority.ID, 0.9), check.IsNil)

	engine, err := query.NewEngine(query.Config{IndexStore: store})
	c.Assert(err, check.IsNil)

	// Both titles contain every query term so the heuristic scores tie;
	// the blended TF-IDF and PageRank rank decides the order.
	res, err := engine.Search(context.Background(), "distributed systems", 1, 10)
	c.Assert(err, check.IsNil)
	c.Assert(res.TotalResults, check.Equals, 2)
	c.Assert(res.Results[0].URL, check.Equals, "https://example.com/ds-two")
}

func (s *EngineTestSuite) TestDetailTimeoutReturnsPartialResults(c *check.C) {
	slow, err := s.store.FindDocumentByURL(distPageURL)
	c.Assert(err, check.IsNil)

	gs := &gatedStore{Store: s.store, blockID: slow.ID, gate: make(chan struct{})}
	engine, err := query.NewEngine(query.Config{
		IndexStore:   gs,
		Workers:      2,
		FetchTimeout: 200 * time.Millisecond,
	})
	c.Assert(err, check.IsNil)

	// Both pages containing "search" survive scoring; the detail fetch
	// for the distributed systems page stalls until the timeout fires.
	res, err := engine.Search(context.Background(), "search", 1, 10)
	c.Assert(err, check.IsNil)
	c.Assert(res.Message, check.Not(check.Equals), "")
	c.Assert(res.TotalResults, check.Equals, 1)
	c.Assert(res.Results[0].URL, check.Equals, searchPageURL)

	// Degraded lists are not cached: once the store is unblocked the
	// same expression is evaluated again and returns the full list.
	close(gs.gate)

	res, err = engine.Search(context.Background(), "search", 1, 10)
	c.Assert(err, check.IsNil)
	c.Assert(res.Message, check.Equals, "")
	c.Assert(res.TotalResults, check.Equals, 2)
}

func (s *EngineTestSuite) TestRepeatSearchesAreServedFromCache(c *check.C) {
	s.search(c, "search engine", 1, 10)
	calls := atomic.LoadInt64(&s.store.findTermCalls)

	s.search(c, "search engine", 1, 10)
	c.Assert(atomic.LoadInt64(&s.store.findTermCalls), check.Equals, calls)

	s.engine.Purge()
	s.search(c, "search engine", 1, 10)
	c.Assert(atomic.LoadInt64(&s.store.findTermCalls) > calls, check.Equals, true)
}

func (s *EngineTestSuite) TestResultsAreDeterministic(c *check.C) {
	first := s.search(c, "search systems", 1, 10)
	s.engine.Purge()
	second := s.search(c, "search systems", 1, 10)

	c.Assert(second, check.DeepEquals, first)
}
