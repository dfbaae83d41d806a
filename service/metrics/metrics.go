package metrics

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
)

// MetricsAPI is implemented by components that can run a full metrics
// pass over the index.
type MetricsAPI interface {
	// ComputeAndStore recomputes and persists the corpus statistics.
	ComputeAndStore(ctx context.Context) error
}

// Config defines configurations for the metrics refresh service.
type Config struct {
	// API for triggering metrics passes.
	MetricsAPI MetricsAPI

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The duration between subsequent metrics passes.
	UpdateInterval time.Duration

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.MetricsAPI == nil {
		err = multierror.Append(err, fmt.Errorf("metrics API not provided"))
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

// Service periodically recomputes the corpus metrics so that search
// scoring stays in step with the index contents. It satisfies the
// service.Service interface.
type Service struct {
	config Config
}

// New creates and returns a fully configured metrics service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("metrics service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "metrics" }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	svc.config.Logger.WithField(
		"update_interval", svc.config.UpdateInterval.String(),
	).Info("started service")
	defer svc.config.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.UpdateInterval):
			startedAt := svc.config.Clock.Now()
			if err := svc.config.MetricsAPI.ComputeAndStore(ctx); err != nil {
				return err
			}

			svc.config.Logger.WithField(
				"elapsed", svc.config.Clock.Now().Sub(startedAt).String(),
			).Info("completed metrics pass")
		}
	}
}
