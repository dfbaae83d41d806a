package query

import (
	check "gopkg.in/check.v1"

	"github.com/kasozi/searchengine/index"
	memstore "github.com/kasozi/searchengine/index/store/memory"
)

var _ = check.Suite(new(ScorerTestSuite))

type ScorerTestSuite struct {
	engine *Engine
}

func (s *ScorerTestSuite) SetUpTest(c *check.C) {
	var err error
	s.engine, err = NewEngine(Config{IndexStore: memstore.NewInMemoryStore()})
	c.Assert(err, check.IsNil)
}

func matchFor(termID int64, text string, docFreqs map[int64]int64) *termMatch {
	postings := make(map[int64]*index.Posting, len(docFreqs))
	for docID, freq := range docFreqs {
		postings[docID] = &index.Posting{TermID: termID, DocID: docID, Frequency: freq}
	}
	return &termMatch{
		term:     &index.Term{ID: termID, Text: text},
		postings: postings,
	}
}

func (s *ScorerTestSuite) TestExactTitleShortCircuit(c *check.C) {
	doc := &index.Document{ID: 1, Title: "Search Engine Basics", WordCount: 100}
	matches := []*termMatch{matchFor(1, "search", map[int64]int64{1: 1})}

	score := s.engine.scoreDocument(doc, matches, "", "search engine basics")
	c.Assert(score, check.Equals, exactTitleScore)
}

func (s *ScorerTestSuite) TestStructuralTierOrdering(c *check.C) {
	matches := []*termMatch{
		matchFor(1, "search", map[int64]int64{1: 2, 2: 2, 3: 2}),
		matchFor(2, "engin", map[int64]int64{1: 2, 2: 2, 3: 2}),
	}

	inURL := &index.Document{ID: 1, URL: "https://a.test/search-engines", Title: "Other", WordCount: 100}
	inTitle := &index.Document{ID: 2, URL: "https://a.test/page", Title: "Search Engines Compared", WordCount: 100}
	inBody := &index.Document{ID: 3, URL: "https://a.test/other", Title: "Unrelated", WordCount: 100}

	urlScore := s.engine.scoreDocument(inURL, matches, "", "")
	titleScore := s.engine.scoreDocument(inTitle, matches, "", "")
	bodyScore := s.engine.scoreDocument(inBody, matches, "", "")

	c.Assert(urlScore > titleScore, check.Equals, true)
	c.Assert(titleScore > bodyScore, check.Equals, true)
	c.Assert(bodyScore > 0, check.Equals, true)
}

func (s *ScorerTestSuite) TestTitleTermBoostIsMonotonic(c *check.C) {
	matches := []*termMatch{
		matchFor(1, "search", map[int64]int64{1: 2, 2: 2}),
		matchFor(2, "engin", map[int64]int64{1: 2, 2: 2}),
	}

	// Only one of the two terms appears in the title, so the structural
	// all-in-title tier does not apply and the per-term boost decides.
	boosted := &index.Document{ID: 1, Title: "About search", WordCount: 100}
	plain := &index.Document{ID: 2, Title: "About", WordCount: 100}

	boostedScore := s.engine.scoreDocument(boosted, matches, "", "")
	plainScore := s.engine.scoreDocument(plain, matches, "", "")

	c.Assert(boostedScore > plainScore, check.Equals, true)
}

func (s *ScorerTestSuite) TestMissingTermsPenalty(c *check.C) {
	fullMatches := []*termMatch{
		matchFor(1, "alpha", map[int64]int64{1: 2}),
		matchFor(2, "beta", map[int64]int64{1: 2}),
		matchFor(3, "gamma", map[int64]int64{1: 2}),
	}
	partialMatches := []*termMatch{
		matchFor(1, "alpha", map[int64]int64{1: 2}),
		matchFor(2, "beta", map[int64]int64{}),
		matchFor(3, "gamma", map[int64]int64{}),
	}
	doc := &index.Document{ID: 1, Title: "zzz", WordCount: 100}

	full := s.engine.scoreDocument(doc, fullMatches, "", "")
	partial := s.engine.scoreDocument(doc, partialMatches, "", "")

	// One of three terms matched, so the partial score is the single
	// term contribution scaled down by the penalty.
	c.Assert(partial < full/3, check.Equals, true)
	c.Assert(partial > 0, check.Equals, true)
}

func (s *ScorerTestSuite) TestLiteralPhraseMultiplier(c *check.C) {
	matches := []*termMatch{
		matchFor(1, "invert", map[int64]int64{1: 2, 2: 2}),
		matchFor(2, "index", map[int64]int64{1: 2, 2: 2}),
	}

	withPhrase := &index.Document{ID: 1, Title: "zzz", Content: "the inverted index structure", WordCount: 100}
	without := &index.Document{ID: 2, Title: "zzz", Content: "the index was inverted later", WordCount: 100}

	phraseScore := s.engine.scoreDocument(withPhrase, matches, "inverted index", "")
	plainScore := s.engine.scoreDocument(without, matches, "inverted index", "")

	c.Assert(phraseScore > plainScore*2, check.Equals, true)
}

func (s *ScorerTestSuite) TestFrequencyCapLimitsSpam(c *check.C) {
	matches := []*termMatch{matchFor(1, "spam", map[int64]int64{1: 90, 2: 10})}

	stuffed := &index.Document{ID: 1, Title: "zzz", WordCount: 100}
	normal := &index.Document{ID: 2, Title: "zzz", WordCount: 100}

	stuffedScore := s.engine.scoreDocument(stuffed, matches, "", "")
	normalScore := s.engine.scoreDocument(normal, matches, "", "")

	// Frequency is capped at a tenth of the document length, so ninety
	// occurrences score no better than ten.
	c.Assert(stuffedScore, check.Equals, normalScore)
}

func (s *ScorerTestSuite) TestMinPairDistance(c *check.C) {
	c.Assert(minPairDistance([]int64{1, 10, 20}, []int64{12, 40}), check.Equals, int64(2))
	c.Assert(minPairDistance([]int64{5}, []int64{5}), check.Equals, int64(0))
}
