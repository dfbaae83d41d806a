package query

import (
	"math"
	"strings"

	"github.com/kasozi/searchengine/index"
)

// Scoring tier constants. Exact and near-exact structural matches are
// ranked above any accumulation of per-term relevance.
const (
	exactTitleScore = 1e12
	allInURLScore   = 1e9
	allInTitleScore = 1e6

	titleTermMultiplier  = 3.0
	urlTermMultiplier    = 2.0
	phraseMultiplier     = 3.0
	missingTermsPenalty  = 0.1
	maxTermFrequencyFrac = 0.1
)

// termMatch carries everything the scorer needs about one query term:
// the stored term row, its corpus statistics and the capped posting
// set for the documents it appears in.
type termMatch struct {
	term     *index.Term
	stats    *index.TermStats
	postings map[int64]*index.Posting
}

// scoreDocument computes the heuristic relevance of a document for the
// given query terms. literal is the lowercased phrase to reward when it
// appears verbatim in the document content, or empty for plain term
// queries. normalizedQuery is the lowercased whitespace-collapsed raw
// expression used for the exact title short-circuit.
func (e *Engine) scoreDocument(doc *index.Document, matches []*termMatch, literal, normalizedQuery string) float64 {
	lowerTitle := strings.ToLower(doc.Title)
	lowerURL := strings.ToLower(doc.URL)

	if normalizedQuery != "" && lowerTitle == normalizedQuery {
		return exactTitleScore
	}

	matched := 0
	allInTitle, allInURL := true, true
	for _, m := range matches {
		if _, ok := m.postings[doc.ID]; ok {
			matched++
		}
		if !strings.Contains(lowerTitle, m.term.Text) {
			allInTitle = false
		}
		if !strings.Contains(lowerURL, m.term.Text) {
			allInURL = false
		}
	}
	if matched == 0 {
		return 0
	}
	if len(matches) > 0 && allInURL {
		return allInURLScore
	}
	if len(matches) > 0 && allInTitle {
		return allInTitleScore
	}

	wordCount := float64(doc.WordCount)
	if wordCount <= 0 {
		wordCount = 1
	}

	var total float64
	for _, m := range matches {
		posting, ok := m.postings[doc.ID]
		if !ok {
			continue
		}
		freq := float64(posting.Frequency)
		if limit := wordCount * maxTermFrequencyFrac; freq > limit {
			freq = limit
		}
		score := (freq / wordCount) * m.idf()
		if strings.Contains(lowerTitle, m.term.Text) {
			score *= titleTermMultiplier
		}
		if strings.Contains(lowerURL, m.term.Text) {
			score *= urlTermMultiplier
		}
		total += score
	}

	if matched*2 < len(matches) {
		total *= missingTermsPenalty
	}
	if literal != "" && strings.Contains(strings.ToLower(doc.Content), literal) {
		total *= phraseMultiplier
	}
	total += e.proximityBonus(doc.ID, matches)
	return total
}

// storedRelevance sums the per-posting TF-IDF values persisted by the
// metrics pass for the document across the query terms. This is the
// plain relevance blended with PageRank, kept separate from the tiered
// heuristics in scoreDocument. Terms the metrics pass has not covered
// yet contribute nothing.
func (e *Engine) storedRelevance(docID int64, matches []*termMatch) float64 {
	var total float64
	for _, m := range matches {
		pm, err := e.store.PostingMetricsFor(m.term.ID, docID)
		if err != nil {
			continue
		}
		total += pm.TFIDF
	}
	return total
}

// idf returns the inverse document frequency of a term, falling back to
// a neutral weight when the metrics pass has not run yet.
func (m *termMatch) idf() float64 {
	if m.stats == nil || m.stats.TotalDocuments == 0 {
		return 1.0
	}
	return m.stats.IDF
}

// proximityBonus rewards documents where distinct query terms occur
// close together. The bonus uses the minimum pairwise token distance
// across all term pairs.
func (e *Engine) proximityBonus(docID int64, matches []*termMatch) float64 {
	if len(matches) < 2 {
		return 0
	}
	minDist := int64(math.MaxInt64)
	for i := 0; i < len(matches); i++ {
		if _, ok := matches[i].postings[docID]; !ok {
			continue
		}
		posA, err := e.store.Positions(matches[i].term.ID, docID)
		if err != nil || len(posA) == 0 {
			continue
		}
		for j := i + 1; j < len(matches); j++ {
			if _, ok := matches[j].postings[docID]; !ok {
				continue
			}
			posB, err := e.store.Positions(matches[j].term.ID, docID)
			if err != nil || len(posB) == 0 {
				continue
			}
			if d := minPairDistance(posA, posB); d < minDist {
				minDist = d
			}
		}
	}
	switch {
	case minDist <= 3:
		return 2.0
	case minDist <= 10:
		return 1.0
	case minDist <= 50:
		return 0.5
	}
	return 0
}

// minPairDistance returns the smallest absolute difference between any
// value in a and any value in b. Both slices are sorted ascending.
func minPairDistance(a, b []int64) int64 {
	min := int64(math.MaxInt64)
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		d := a[i] - b[j]
		if d < 0 {
			d = -d
		}
		if d < min {
			min = d
		}
		if a[i] < b[j] {
			i++
		} else {
			j++
		}
	}
	return min
}
