package metrics

import (
	"context"
	"math"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/index"
	memstore "github.com/kasozi/searchengine/index/store/memory"
)

// Initialize and register an instance of the MetricsTestSuite.
var _ = check.Suite(new(MetricsTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type MetricsTestSuite struct {
	store    *memstore.InMemoryStore
	computer *Computer
}

func (s *MetricsTestSuite) SetUpTest(c *check.C) {
	s.store = memstore.NewInMemoryStore()

	computer, err := New(Config{IndexStore: s.store})
	c.Assert(err, check.IsNil)

	s.computer = computer
}

func (s *MetricsTestSuite) TestNewRequiresStore(c *check.C) {
	_, err := New(Config{})
	c.Assert(err, check.ErrorMatches, "(?ms).*index store not provided.*")
}

func (s *MetricsTestSuite) seedCorpus(c *check.C) (*index.Term, *index.Term, []int64) {
	docIDs := make([]int64, 4)
	for i := range docIDs {
		doc := &index.Document{
			URL:       "https://example.com/" + string(rune('a'+i)),
			WordCount: 100,
		}
		c.Assert(s.store.UpsertDocument(doc), check.IsNil)
		docIDs[i] = doc.ID
	}

	// "common" appears in every document, "rare" in one.
	common, err := s.store.UpsertTerm("common", 8)
	c.Assert(err, check.IsNil)
	for i, id := range docIDs {
		c.Assert(s.store.AddPosting(common.ID, id, int64(i+1)), check.IsNil)
	}

	rare, err := s.store.UpsertTerm("rare", 5)
	c.Assert(err, check.IsNil)
	c.Assert(s.store.AddPosting(rare.ID, docIDs[0], 5), check.IsNil)

	return common, rare, docIDs
}

func (s *MetricsTestSuite) TestComputeAndStore(c *check.C) {
	common, rare, docIDs := s.seedCorpus(c)

	c.Assert(s.computer.ComputeAndStore(context.Background()), check.IsNil)

	commonStats, err := s.store.TermStatsFor(common.ID)
	c.Assert(err, check.IsNil)
	c.Assert(commonStats.DocumentFrequency, check.Equals, int64(4))
	c.Assert(commonStats.TotalDocuments, check.Equals, int64(4))
	// A term present in every document carries no discriminating power.
	c.Assert(commonStats.IDF, check.Equals, 0.0)

	rareStats, err := s.store.TermStatsFor(rare.ID)
	c.Assert(err, check.IsNil)
	c.Assert(rareStats.DocumentFrequency, check.Equals, int64(1))
	c.Assert(rareStats.IDF, check.Equals, math.Log10(4))

	m, err := s.store.PostingMetricsFor(rare.ID, docIDs[0])
	c.Assert(err, check.IsNil)
	c.Assert(m.TermFrequency, check.Equals, 0.05)
	c.Assert(m.TFIDF, check.Equals, 0.05*math.Log10(4))
	c.Assert(m.NormalizedScore, check.Equals, 1.0)
}

func (s *MetricsTestSuite) TestNormalizedScoreOrdering(c *check.C) {
	common, _, docIDs := s.seedCorpus(c)

	// IDF of a fully common term is zero, so boost its spread with one
	// extra document that does not contain it.
	extra := &index.Document{URL: "https://example.com/extra", WordCount: 100}
	c.Assert(s.store.UpsertDocument(extra), check.IsNil)

	c.Assert(s.computer.ComputeAndStore(context.Background()), check.IsNil)

	// The highest-frequency posting normalizes to 1.0.
	best, err := s.store.PostingMetricsFor(common.ID, docIDs[len(docIDs)-1])
	c.Assert(err, check.IsNil)
	c.Assert(best.NormalizedScore, check.Equals, 1.0)

	worst, err := s.store.PostingMetricsFor(common.ID, docIDs[0])
	c.Assert(err, check.IsNil)
	c.Assert(worst.NormalizedScore < best.NormalizedScore, check.Equals, true)
}

func (s *MetricsTestSuite) TestRerunIsIdempotent(c *check.C) {
	_, rare, docIDs := s.seedCorpus(c)

	c.Assert(s.computer.ComputeAndStore(context.Background()), check.IsNil)

	first, err := s.store.PostingMetricsFor(rare.ID, docIDs[0])
	c.Assert(err, check.IsNil)

	c.Assert(s.computer.ComputeAndStore(context.Background()), check.IsNil)

	second, err := s.store.PostingMetricsFor(rare.ID, docIDs[0])
	c.Assert(err, check.IsNil)
	c.Assert(second, check.DeepEquals, first)
}

func (s *MetricsTestSuite) TestIDFFloorsDocumentFrequency(c *check.C) {
	c.Assert(IDF(10, 0), check.Equals, math.Log10(10))
	c.Assert(IDF(0, 0), check.Equals, 0.0)
}

func (s *MetricsTestSuite) TestComputeHonorsContext(c *check.C) {
	s.seedCorpus(c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.Assert(s.computer.ComputeAndStore(ctx), check.NotNil)
}
