package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/linkgraph/graph"
)

// Crawler re-fetches pages, refreshes the link graph with the anchors
// they carry and hands the fetched content to the indexing pipeline.
type Crawler struct {
	config Config
}

// New creates a Crawler instance with the provided config.
func New(config Config) (*Crawler, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("crawler: config validation failed: %w", err)
	}

	return &Crawler{config: config}, nil
}

// Reindex fetches the given URLs, updates the link graph from their
// anchors and rebuilds the index entries for the fetched pages. An
// empty URL list triggers a full pass over every registered document.
// Pages that fail to fetch are logged and skipped.
func (c *Crawler) Reindex(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		var err error
		if urls, err = c.registeredURLs(); err != nil {
			return err
		}
	}
	if len(urls) == 0 {
		c.config.Logger.Info("no documents to re-index")
		return nil
	}

	c.config.Logger.WithField("total_urls", len(urls)).Info("started re-index pass")

	pages, err := c.fetchPages(ctx, urls)
	if err != nil {
		return err
	}

	for pageURL, content := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.updateLinkGraph(pageURL, content); err != nil {
			return err
		}
	}

	if err := c.config.IndexAPI.BuildIndex(ctx, pages); err != nil {
		return err
	}

	c.config.Logger.WithFields(logrus.Fields{
		"total_urls":    len(urls),
		"fetched_pages": len(pages),
	}).Info("completed re-index pass")

	return nil
}

func (c *Crawler) registeredURLs() ([]string, error) {
	docIt, err := c.config.DocumentSource.Documents()
	if err != nil {
		return nil, err
	}

	var urls []string
	for docIt.Next() {
		urls = append(urls, docIt.Document().URL)
	}

	if err := docIt.Error(); err != nil {
		_ = docIt.Close()

		return nil, err
	}

	return urls, docIt.Close()
}

// fetchPages retrieves the URL set concurrently and returns the raw
// HTML for every page that responded with html content.
func (c *Crawler) fetchPages(ctx context.Context, urls []string) (map[string]string, error) {
	pool, err := ants.NewPool(c.config.FetchWorkers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		pages = make(map[string]string, len(urls))
	)
	for _, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			break
		}

		pageURL := pageURL
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			content, err := c.fetchPage(pageURL)
			if err != nil {
				c.config.Logger.WithFields(logrus.Fields{
					"url":   pageURL,
					"error": err,
				}).Warn("skipping page that could not be fetched")
				return
			}

			mu.Lock()
			pages[pageURL] = content
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
		}
	}
	wg.Wait()

	return pages, ctx.Err()
}

func (c *Crawler) fetchPage(pageURL string) (string, error) {
	if exclusionRegex.MatchString(pageURL) {
		return "", fmt.Errorf("url points to non-html content")
	}

	res, err := c.config.URLGetter.Get(pageURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code %d", res.StatusCode)
	}
	if contentType := res.Header.Get("Content-Type"); !strings.Contains(contentType, "html") {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// updateLinkGraph upserts the page and its anchor targets as links,
// refreshes the outgoing edge set and drops edges for anchors the page
// no longer carries. No-follow targets are registered without edges so
// they never contribute to page rank.
func (c *Crawler) updateLinkGraph(pageURL, content string) error {
	srcLink := &graph.Link{URL: pageURL, RetrievedAt: time.Now()}
	if err := c.config.GraphAPI.UpsertLink(srcLink); err != nil {
		return err
	}

	links, noFollow := extractLinks(pageURL, content)

	for _, target := range noFollow {
		if err := c.config.GraphAPI.UpsertLink(&graph.Link{URL: target}); err != nil {
			return err
		}
	}

	updatedBefore := time.Now()
	for _, target := range links {
		link := &graph.Link{URL: target}
		if err := c.config.GraphAPI.UpsertLink(link); err != nil {
			return err
		}

		if err := c.config.GraphAPI.UpsertEdge(&graph.Edge{
			Src:  srcLink.ID,
			Dest: link.ID,
		}); err != nil {
			return err
		}
	}

	return c.config.GraphAPI.RemoveStaleEdges(srcLink.ID, updatedBefore)
}
