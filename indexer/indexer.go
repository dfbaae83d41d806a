// Package indexer implements the index builder: it turns raw page content
// into document records, postings, tag postings and position lists.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/index"
	"github.com/kasozi/searchengine/textproc"
)

// Indexer builds and maintains the inverted index for registered documents.
type Indexer struct {
	config Config
}

// New creates and returns a fully configured index builder instance.
func New(config Config) (*Indexer, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("indexer: config validation failed: %w", err)
	}

	return &Indexer{config: config}, nil
}

// RegisterDocument makes a URL known to the index so that a later indexing
// pass can fill in its content. Registering an already known URL is a
// no-op that returns the existing document.
func (idx *Indexer) RegisterDocument(url string) (*index.Document, error) {
	doc, err := idx.config.IndexStore.FindDocumentByURL(url)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, index.ErrNotFound) {
		return nil, fmt.Errorf("register document: %w", err)
	}

	doc = &index.Document{URL: url}
	if err := idx.config.IndexStore.UpsertDocument(doc); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	return doc, nil
}

// IndexDocument indexes the raw HTML content for a registered URL. Unknown
// URLs are skipped with a warning since postings must reference an existing
// document. Individual term failures are logged and do not abort the rest
// of the document.
func (idx *Indexer) IndexDocument(url, rawHTML string) error {
	store := idx.config.IndexStore
	logger := idx.config.Logger.WithField("url", url)

	doc, err := store.FindDocumentByURL(url)
	if err != nil {
		if errors.Is(err, index.ErrNotFound) {
			logger.Warn("skipping unregistered document")

			return nil
		}

		return fmt.Errorf("index document: %w", err)
	}

	// Whole-document pass: token stream with positions, letters only.
	tokens := textproc.NormalizeDocument(rawHTML)

	positions := make(map[string][]int64)
	for offset, token := range tokens {
		positions[token] = append(positions[token], int64(offset))
	}

	// Per-tag pass: term frequencies per tag, merged into per-document
	// totals. Digits survive this pass.
	tagFrequencies := make(map[string]map[string]int64)
	totals := make(map[string]int64)

	for tag, texts := range textproc.ExtractTagText(rawHTML) {
		for _, text := range texts {
			for _, term := range textproc.NormalizeText(text) {
				frequencies, exists := tagFrequencies[term]
				if !exists {
					frequencies = make(map[string]int64)
					tagFrequencies[term] = frequencies
				}

				frequencies[tag]++
				totals[term]++
			}
		}
	}

	doc.Title = textproc.ExtractTitle(rawHTML)
	doc.Content = extractContent(rawHTML)
	doc.WordCount = int64(len(tokens))
	doc.IndexedAt = time.Now().UTC()

	if err := store.UpsertDocument(doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	var failedTerms int

	for termText, total := range totals {
		term, err := store.UpsertTerm(termText, total)
		if err != nil {
			logger.WithField("term", termText).WithError(err).Warn("failed to upsert term")
			failedTerms++

			continue
		}

		if err := store.AddPosting(term.ID, doc.ID, total); err != nil {
			logger.WithField("term", termText).WithError(err).Warn("failed to add posting")
			failedTerms++

			continue
		}

		for tag, frequency := range tagFrequencies[termText] {
			if err := store.AddTagPosting(term.ID, doc.ID, tag, frequency); err != nil {
				logger.WithFields(logrus.Fields{
					"term": termText,
					"tag":  tag,
				}).WithError(err).Warn("failed to add tag posting")
			}
		}

		if offsets := positions[termText]; len(offsets) != 0 {
			if err := store.AppendPositions(term.ID, doc.ID, offsets); err != nil {
				logger.WithField("term", termText).WithError(err).Warn("failed to append positions")
			}
		}
	}

	if failedTerms != 0 {
		logger.WithField("failed_terms", failedTerms).Warn("document indexed with term failures")
	}

	return nil
}

// BuildIndex registers and indexes a set of pages keyed by URL. Pages are
// processed in batches by a bounded worker pool. Failures on individual
// pages are logged and skipped so that one bad page never aborts a bulk
// run. The query result cache, when configured, is purged up front since
// results computed against the old index contents are about to go stale.
func (idx *Indexer) BuildIndex(ctx context.Context, pages map[string]string) error {
	if idx.config.Cache != nil {
		idx.config.Cache.Purge()
	}

	urls := make([]string, 0, len(pages))
	for url := range pages {
		urls = append(urls, url)
	}

	for _, url := range urls {
		if _, err := idx.RegisterDocument(url); err != nil {
			idx.config.Logger.WithField("url", url).WithError(err).Warn(
				"failed to register document",
			)
		}
	}

	pool, err := ants.NewPool(idx.config.Workers)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	defer pool.Release()

	var indexed int

	for start := 0; start < len(urls); start += idx.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build index: %w", err)
		}

		end := start + idx.config.BatchSize
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup

		for _, url := range urls[start:end] {
			url := url

			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()

				if err := idx.IndexDocument(url, pages[url]); err != nil {
					idx.config.Logger.WithField("url", url).WithError(err).Warn(
						"failed to index document",
					)
				}
			})
			if err != nil {
				wg.Done()
				idx.config.Logger.WithField("url", url).WithError(err).Warn(
					"failed to submit document for indexing",
				)
			}
		}

		wg.Wait()

		indexed = end
		idx.config.Logger.WithFields(logrus.Fields{
			"indexed": indexed,
			"total":   len(urls),
		}).Info("indexing progress")
	}

	return nil
}

// extractContent returns the document text with paragraphs separated by
// newlines. Documents without paragraph tags fall back to the full
// stripped text.
func extractContent(rawHTML string) string {
	if paragraphs := textproc.Paragraphs(rawHTML); len(paragraphs) != 0 {
		return strings.Join(paragraphs, "\n")
	}

	return textproc.ExtractText(rawHTML)
}
