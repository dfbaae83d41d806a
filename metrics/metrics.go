// Package metrics implements the TF-IDF computation pass that derives
// per-term statistics and per-posting scores from the raw index counts.
package metrics

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/index"
)

// Config defines configurations for the metrics computer.
type Config struct {
	// The index store holding the raw counts and receiving the derived
	// values.
	IndexStore index.Store

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.IndexStore == nil {
		err = multierror.Append(err, fmt.Errorf("index store not provided"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Computer derives TF-IDF statistics from the raw index counts. Runs are
// idempotent: each pass recomputes every derived value from scratch.
type Computer struct {
	config Config
}

// New creates and returns a fully configured metrics computer instance.
func New(config Config) (*Computer, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("metrics: config validation failed: %w", err)
	}

	return &Computer{config: config}, nil
}

// ComputeAndStore runs a full metrics pass: for every term it derives the
// document frequency and IDF, and for every posting the term frequency,
// TF-IDF and a per-term normalized score. The term statistics set is
// replaced wholesale at the end of the pass. Per-term failures are logged
// and skipped so that queries keep being served from the previous pass
// for the affected terms.
func (m *Computer) ComputeAndStore(ctx context.Context) error {
	store := m.config.IndexStore

	totalDocs, err := store.DocumentCount()
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	docLengths, err := m.documentLengths()
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	termIt, err := store.Terms()
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}
	defer termIt.Close()

	var (
		allStats    []index.TermStats
		termCount   int
		failedTerms int
	)

	for termIt.Next() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("compute metrics: %w", err)
		}

		term := termIt.Term()
		termCount++

		stats, postingMetrics, err := m.computeTerm(term, totalDocs, docLengths)
		if err != nil {
			m.config.Logger.WithField("term", term.Text).WithError(err).Warn(
				"failed to compute term metrics",
			)
			failedTerms++

			continue
		}

		if err := store.UpsertPostingMetrics(postingMetrics); err != nil {
			m.config.Logger.WithField("term", term.Text).WithError(err).Warn(
				"failed to store posting metrics",
			)
			failedTerms++

			continue
		}

		allStats = append(allStats, *stats)
	}

	if err := termIt.Error(); err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	if err := store.ReplaceTermStats(allStats); err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	m.config.Logger.WithFields(logrus.Fields{
		"terms":        termCount,
		"failed_terms": failedTerms,
		"documents":    totalDocs,
	}).Info("metrics pass completed")

	return nil
}

func (m *Computer) computeTerm(
	term *index.Term, totalDocs int64, docLengths map[int64]int64,
) (*index.TermStats, []index.PostingMetrics, error) {

	postings, err := m.config.IndexStore.PostingsForTerm(term.ID, 0)
	if err != nil {
		return nil, nil, err
	}

	df, err := m.config.IndexStore.DocFrequency(term.ID)
	if err != nil {
		return nil, nil, err
	}
	idf := IDF(totalDocs, df)

	postingMetrics := make([]index.PostingMetrics, 0, len(postings))

	var maxTFIDF float64
	for _, p := range postings {
		tf := termFrequency(p.Frequency, docLengths[p.DocID])
		tfidf := tf * idf
		if tfidf > maxTFIDF {
			maxTFIDF = tfidf
		}

		postingMetrics = append(postingMetrics, index.PostingMetrics{
			TermID:        term.ID,
			DocID:         p.DocID,
			Frequency:     p.Frequency,
			TermFrequency: tf,
			TFIDF:         tfidf,
		})
	}

	for i := range postingMetrics {
		if maxTFIDF > 0 {
			postingMetrics[i].NormalizedScore = postingMetrics[i].TFIDF / maxTFIDF
		}
	}

	stats := &index.TermStats{
		TermID:            term.ID,
		DocumentFrequency: df,
		IDF:               idf,
		TotalDocuments:    totalDocs,
	}

	return stats, postingMetrics, nil
}

func (m *Computer) documentLengths() (map[int64]int64, error) {
	docIt, err := m.config.IndexStore.Documents()
	if err != nil {
		return nil, err
	}
	defer docIt.Close()

	lengths := make(map[int64]int64)
	for docIt.Next() {
		doc := docIt.Document()
		lengths[doc.ID] = doc.WordCount
	}

	return lengths, docIt.Error()
}

// IDF returns the inverse document frequency for a term that appears in
// df of totalDocs documents. A zero document frequency is floored at one
// to keep the value finite.
func IDF(totalDocs, df int64) float64 {
	if totalDocs == 0 {
		return 0
	}

	if df < 1 {
		df = 1
	}

	return math.Log10(float64(totalDocs) / float64(df))
}

func termFrequency(frequency, docLength int64) float64 {
	if docLength == 0 {
		return 0
	}

	return float64(frequency) / float64(docLength)
}
