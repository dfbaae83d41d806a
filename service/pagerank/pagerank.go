package pagerank

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/index"
	"github.com/kasozi/searchengine/pagerank"
)

// Service periodically recomputes PageRank scores from the link graph
// and persists them on the indexed documents. It satisfies the
// service.Service interface.
type Service struct {
	config Config
}

// New creates and returns a fully configured page-rank service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("page-rank service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "page-rank" }

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
			if err := svc.updateGraphScores(ctx); err != nil {
				return err
			}
		}
	}
}

// updateGraphScores runs a full page-rank pass: it rebuilds the
// calculator graph from the link graph, resolving each link URL to its
// indexed document, runs the power iterations and persists the scores.
func (svc *Service) updateGraphScores(ctx context.Context) error {
	svc.config.Logger.Info("started page-rank update pass")
	startedAt := svc.config.Clock.Now()

	calc, err := pagerank.NewCalculator(pagerank.Config{
		Iterations:    svc.config.Iterations,
		DampingFactor: svc.config.DampingFactor,
	})
	if err != nil {
		return err
	}

	tick := svc.config.Clock.Now()
	docIDs, err := svc.loadLinks(calc)
	if err != nil {
		return err
	}
	if err := svc.loadEdges(calc, docIDs); err != nil {
		return err
	}
	graphPopulationDuration := svc.config.Clock.Now().Sub(tick)

	tick = svc.config.Clock.Now()
	if err := calc.Run(ctx); err != nil {
		return err
	}
	scoreCalculationDuration := svc.config.Clock.Now().Sub(tick)

	tick = svc.config.Clock.Now()
	if err := calc.Scores(svc.config.IndexAPI.UpdatePageRank); err != nil {
		return err
	}
	scorePersistenceDuration := svc.config.Clock.Now().Sub(tick)

	svc.config.Logger.WithFields(logrus.Fields{
		"processed_documents":        calc.NodeCount(),
		"graph_population_duration":  graphPopulationDuration.String(),
		"score_calculation_duration": scoreCalculationDuration.String(),
		"score_persistence_duration": scorePersistenceDuration.String(),
		"total_processing_time":      svc.config.Clock.Now().Sub(startedAt).String(),
	}).Info("completed page-rank update pass")

	return nil
}

// loadLinks registers every link with an indexed document as a graph
// node and returns the link-ID to document-ID mapping used to resolve
// edges. Links that were never indexed are skipped.
func (svc *Service) loadLinks(calc *pagerank.Calculator) (map[uuid.UUID]int64, error) {
	linkIt, err := svc.config.GraphAPI.Links()
	if err != nil {
		return nil, err
	}

	docIDs := make(map[uuid.UUID]int64)
	for linkIt.Next() {
		link := linkIt.Link()
		doc, err := svc.config.IndexAPI.FindDocumentByURL(link.URL)
		if err != nil {
			if errors.Is(err, index.ErrNotFound) {
				continue
			}
			_ = linkIt.Close()

			return nil, err
		}

		docIDs[link.ID] = doc.ID
		calc.AddNode(doc.ID)
	}

	if err := linkIt.Error(); err != nil {
		_ = linkIt.Close()

		return nil, err
	}

	return docIDs, linkIt.Close()
}

func (svc *Service) loadEdges(calc *pagerank.Calculator, docIDs map[uuid.UUID]int64) error {
	edgeIt, err := svc.config.GraphAPI.Edges()
	if err != nil {
		return err
	}

	for edgeIt.Next() {
		e := edgeIt.Edge()
		src, srcIndexed := docIDs[e.Src]
		dst, dstIndexed := docIDs[e.Dest]
		if !srcIndexed || !dstIndexed {
			continue
		}

		calc.AddEdge(src, dst)
	}

	if err := edgeIt.Error(); err != nil {
		_ = edgeIt.Close()

		return err
	}

	return edgeIt.Close()
}
