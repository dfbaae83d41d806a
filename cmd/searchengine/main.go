package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/crawler"
	"github.com/kasozi/searchengine/index"
	memindex "github.com/kasozi/searchengine/index/store/memory"
	pgindex "github.com/kasozi/searchengine/index/store/pg"
	"github.com/kasozi/searchengine/indexer"
	"github.com/kasozi/searchengine/linkgraph/graph"
	memgraph "github.com/kasozi/searchengine/linkgraph/store/memory"
	pggraph "github.com/kasozi/searchengine/linkgraph/store/pg"
	"github.com/kasozi/searchengine/metrics"
	"github.com/kasozi/searchengine/query"
	"github.com/kasozi/searchengine/service"
	metricssvc "github.com/kasozi/searchengine/service/metrics"
	pageranksvc "github.com/kasozi/searchengine/service/pagerank"
	"github.com/kasozi/searchengine/service/rest"
)

const appName = "searchengine"

func main() {
	host, _ := os.Hostname()
	// Instantiate a root logger that will be passed to all services.
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"host": host,
	})

	svcGroup, err := configureServices(logger)
	if err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		return
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Launch a separate process to listen and respond to os signals
	// and trigger a graceful shutdown.
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if err := svcGroup.Execute(ctx); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")

		return
	}

	logger.Info("shutdown complete")
}

func configureServices(logger *logrus.Entry) (service.Group, error) {
	listenAddr := flag.String(
		"rest-listen-addr", ":8080",
		"Address to listen on for incoming API requests",
	)
	resultsPerPage := flag.Int(
		"search-results-per-page", 10,
		"Number of search results returned per page",
	)
	fetchWorkers := flag.Int(
		"crawler-fetch-workers", runtime.NumCPU(),
		"Number of workers for fetching pages during re-index passes",
	)
	pageRankInterval := flag.Duration(
		"pagerank-update-interval", time.Hour,
		"Time between subsequent page rank score updates",
	)
	pageRankIterations := flag.Int(
		"pagerank-iterations", 100,
		"Number of power iterations per page rank pass",
	)
	metricsInterval := flag.Duration(
		"metrics-update-interval", 30*time.Minute,
		"Time between subsequent corpus metrics passes",
	)
	indexStoreURI := flag.String(
		"index-store-uri", "in-memory://",
		"URI for connecting to the index data store."+
			" [supported URI's: in-memory://, postgresql://user@host:5432/searchindex?sslmode=disable]",
	)
	linkGraphURI := flag.String(
		"link-graph-uri", "in-memory://",
		"URI for connecting to the link-graph data store."+
			" [supported URI's: in-memory://, postgresql://user@host:5432/linkgraph?sslmode=disable]",
	)

	flag.Parse()

	indexStore, err := getIndexStore(*indexStoreURI, logger)
	if err != nil {
		return nil, err
	}

	linkGraph, err := getLinkGraph(*linkGraphURI, logger)
	if err != nil {
		return nil, err
	}

	queryEngine, err := query.NewEngine(query.Config{
		IndexStore: indexStore,
		Logger:     logger.WithField("service", "query-engine"),
	})
	if err != nil {
		return nil, err
	}

	idx, err := indexer.New(indexer.Config{
		IndexStore: indexStore,
		Cache:      queryEngine,
		Logger:     logger.WithField("service", "indexer"),
	})
	if err != nil {
		return nil, err
	}

	pageCrawler, err := crawler.New(crawler.Config{
		GraphAPI:       linkGraph,
		IndexAPI:       idx,
		DocumentSource: indexStore,
		FetchWorkers:   *fetchWorkers,
		Logger:         logger.WithField("service", "crawler"),
	})
	if err != nil {
		return nil, err
	}

	metricsComputer, err := metrics.New(metrics.Config{
		IndexStore: indexStore,
		Logger:     logger.WithField("service", "metrics"),
	})
	if err != nil {
		return nil, err
	}

	var svc service.Service
	var svcGroup service.Group

	// The query engine doubles as a service so its result cache gets
	// swept periodically.
	svcGroup = append(svcGroup, queryEngine)

	if svc, err = pageranksvc.New(pageranksvc.Config{
		GraphAPI:       linkGraph,
		IndexAPI:       indexStore,
		Iterations:     *pageRankIterations,
		UpdateInterval: *pageRankInterval,
		Logger:         logger.WithField("service", "page-rank"),
	}); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	if svc, err = metricssvc.New(metricssvc.Config{
		MetricsAPI:     metricsComputer,
		UpdateInterval: *metricsInterval,
		Logger:         logger.WithField("service", "metrics"),
	}); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	if svc, err = rest.New(rest.Config{
		SearchAPI:      queryEngine,
		IndexAPI:       pageCrawler,
		MetricsAPI:     metricsComputer,
		StatsAPI:       indexStore,
		ListenAddr:     *listenAddr,
		ResultsPerPage: *resultsPerPage,
		Logger:         logger.WithField("service", "rest"),
	}); err == nil {
		svcGroup = append(svcGroup, svc)
	} else {
		return nil, err
	}

	return svcGroup, nil
}

func getIndexStore(indexStoreURI string, logger *logrus.Entry) (index.Store, error) {
	if indexStoreURI == "" {
		return nil, fmt.Errorf("index store URI must be specified with --index-store-uri")
	}

	parsed, err := url.Parse(indexStoreURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index store URI: %w", err)
	}

	switch parsed.Scheme {
	case "in-memory":
		logger.Info("using in-memory index store")

		return memindex.NewInMemoryStore(), nil
	case "postgresql":
		logger.Info("using PostgreSQL index store")

		return pgindex.NewPostgresStore(indexStoreURI)
	default:
		return nil, fmt.Errorf("unsupported index store URI scheme: %q", parsed.Scheme)
	}
}

func getLinkGraph(linkGraphURI string, logger *logrus.Entry) (graph.Graph, error) {
	if linkGraphURI == "" {
		return nil, fmt.Errorf("link graph URI must be specified with --link-graph-uri")
	}

	parsed, err := url.Parse(linkGraphURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse link graph URI: %w", err)
	}

	switch parsed.Scheme {
	case "in-memory":
		logger.Info("using in-memory link graph store")

		return memgraph.NewInMemoryGraph(), nil
	case "postgresql":
		logger.Info("using PostgreSQL link graph store")

		return pggraph.NewPostgresGraph(linkGraphURI)
	default:
		return nil, fmt.Errorf("unsupported link graph URI scheme: %q", parsed.Scheme)
	}
}
