package rest

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/query"
)

const (
	defaultResultsPerPage = 10
)

// SearchAPI defines a minimum set of API methods for evaluating search
// expressions.
type SearchAPI interface {
	// Search evaluates an expression and returns one page of ranked
	// results.
	Search(ctx context.Context, expression string, page, pageSize int) (*query.Results, error)
}

// IndexAPI defines a minimum set of API methods for triggering index
// rebuilds.
type IndexAPI interface {
	// Reindex rebuilds the index for the given URLs, or for the full
	// registered document set when the list is empty.
	Reindex(ctx context.Context, urls []string) error
}

// MetricsAPI is implemented by components that can run a full metrics
// pass over the index.
type MetricsAPI interface {
	// ComputeAndStore recomputes and persists the corpus statistics.
	ComputeAndStore(ctx context.Context) error
}

// StatsAPI defines a minimum set of API methods for reporting index
// size statistics.
type StatsAPI interface {
	// DocumentCount returns the number of indexed documents.
	DocumentCount() (int64, error)

	// TermCount returns the number of distinct indexed terms.
	TermCount() (int64, error)
}

// Config defines configurations for the REST gateway service.
type Config struct {
	// API for evaluating search expressions.
	SearchAPI SearchAPI

	// API for triggering index rebuilds.
	IndexAPI IndexAPI

	// API for triggering metrics passes.
	MetricsAPI MetricsAPI

	// API for reporting index statistics.
	StatsAPI StatsAPI

	// Address to listen on for incoming requests.
	ListenAddr string

	// Number of results per page when the client does not specify one.
	// If not specified, a default value of 10 will be used instead.
	ResultsPerPage int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.SearchAPI == nil {
		err = multierror.Append(err, fmt.Errorf("search API not provided"))
	}

	if config.IndexAPI == nil {
		err = multierror.Append(err, fmt.Errorf("index API not provided"))
	}

	if config.MetricsAPI == nil {
		err = multierror.Append(err, fmt.Errorf("metrics API not provided"))
	}

	if config.StatsAPI == nil {
		err = multierror.Append(err, fmt.Errorf("stats API not provided"))
	}

	if config.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address not provided"))
	}

	if config.ResultsPerPage <= 0 {
		config.ResultsPerPage = defaultResultsPerPage
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
