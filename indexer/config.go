package indexer

import (
	"fmt"
	"io"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/index"
)

const maxBuildWorkers = 8

// CacheInvalidator is implemented by caches that need flushing when the
// underlying index data changes.
type CacheInvalidator interface {
	// Purge drops all cached entries.
	Purge()
}

// Config defines configurations for the index builder.
type Config struct {
	// The index store to write postings to.
	IndexStore index.Store

	// Optional query result cache that gets purged at the start of every
	// bulk indexing run.
	Cache CacheInvalidator

	// The number of documents indexed per batch during bulk runs. If not
	// specified, a default value of 20 will be used instead.
	BatchSize int

	// The number of workers to spin up for bulk indexing runs. If not
	// specified, the number of available CPUs (capped at 8) will be used
	// instead.
	Workers int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.IndexStore == nil {
		err = multierror.Append(err, fmt.Errorf("index store not provided"))
	}

	if config.BatchSize <= 0 {
		config.BatchSize = 20
	}

	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Workers > maxBuildWorkers {
		config.Workers = maxBuildWorkers
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
