package pagerank

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/index"
	"github.com/kasozi/searchengine/linkgraph/graph"
)

// GraphAPI defines a minimum set of API methods for querying the link
// graph store.
type GraphAPI interface {
	// Links returns an iterator over all links in the graph.
	Links() (graph.LinkIterator, error)

	// Edges returns an iterator over all edges in the graph.
	Edges() (graph.EdgeIterator, error)
}

// IndexAPI defines a minimum set of API methods for mapping link URLs
// to indexed documents and persisting their scores.
type IndexAPI interface {
	// FindDocumentByURL performs a document lookup by URL.
	FindDocumentByURL(url string) (*index.Document, error)

	// UpdatePageRank sets the PageRank score of a document.
	UpdatePageRank(docID int64, score float64) error
}

// Config defines configurations for the page-ranking service.
type Config struct {
	// API for querying the links and edges data store.
	GraphAPI GraphAPI

	// API for communicating with the index store.
	IndexAPI IndexAPI

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The number of power iterations per update pass. If not specified,
	// the calculator default will be used instead.
	Iterations int

	// The damping factor for the calculator. If not specified, the
	// calculator default will be used instead.
	DampingFactor float64

	// The duration between subsequent page-rank passes.
	UpdateInterval time.Duration

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

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.UpdateInterval == 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for update interval"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
