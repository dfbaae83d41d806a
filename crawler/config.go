package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/index"
	"github.com/kasozi/searchengine/linkgraph/graph"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxFetchWorkers     = 8
)

// URLGetter is implemented by objects that can perform HTTP GET requests.
type URLGetter interface {
	Get(url string) (*http.Response, error)
}

// GraphAPI defines a minimum set of API methods for maintaining the link
// graph while pages get re-fetched.
type GraphAPI interface {
	// UpsertLink creates a new or updates an existing link.
	UpsertLink(link *graph.Link) error

	// UpsertEdge creates a new or updates an existing edge.
	UpsertEdge(edge *graph.Edge) error

	// RemoveStaleEdges removes any edge that originates from a specific
	// link ID and was updated before the specified time.
	RemoveStaleEdges(fromID uuid.UUID, updatedBefore time.Time) error
}

// IndexAPI defines a minimum set of API methods for bulk-indexing
// fetched pages.
type IndexAPI interface {
	// BuildIndex indexes the provided URL to raw HTML page mapping.
	BuildIndex(ctx context.Context, pages map[string]string) error
}

// DocumentSource is implemented by stores that can enumerate the
// already-registered documents. It provides the URL set for full
// re-index passes.
type DocumentSource interface {
	Documents() (index.DocumentIterator, error)
}

// Config encapsulates the settings for creating a Crawler.
type Config struct {
	// API for maintaining the link graph.
	GraphAPI GraphAPI

	// API for indexing fetched pages.
	IndexAPI IndexAPI

	// Source of registered document URLs for full passes.
	DocumentSource DocumentSource

	// Client used for fetching pages. If not specified, a default
	// client with a 10 second timeout will be used instead.
	URLGetter URLGetter

	// The number of concurrent page fetches. If not specified, the
	// number of available CPUs will be used instead.
	FetchWorkers int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.GraphAPI == nil {
		err = multierror.Append(err, fmt.Errorf("graph API not provided"))
	}

	if config.IndexAPI == nil {
		err = multierror.Append(err, fmt.Errorf("index API not provided"))
	}

	if config.DocumentSource == nil {
		err = multierror.Append(err, fmt.Errorf("document source not provided"))
	}

	if config.URLGetter == nil {
		config.URLGetter = &http.Client{Timeout: defaultFetchTimeout}
	}

	if config.FetchWorkers <= 0 {
		config.FetchWorkers = runtime.NumCPU()
	}
	if config.FetchWorkers > maxFetchWorkers {
		config.FetchWorkers = maxFetchWorkers
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
