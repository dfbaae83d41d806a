package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kasozi/searchengine/query"
)

const (
	searchEndpoint  = "/api/search"
	reindexEndpoint = "/api/reindex"
	metricsEndpoint = "/api/metrics"
	statsEndpoint   = "/api/stats"
)

// Service exposes the search engine over HTTP as a JSON API. It
// satisfies the service.Service interface.
type Service struct {
	config Config
	router *chi.Mux
}

// New creates and returns a fully configured REST gateway instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("rest service: config validation failed: %w", err)
	}

	svc := &Service{
		config: config,
		router: chi.NewRouter(),
	}

	svc.router.Get(searchEndpoint, svc.handleSearch)
	svc.router.Post(reindexEndpoint, svc.handleReindex)
	svc.router.Post(metricsEndpoint, svc.handleMetrics)
	svc.router.Get(statsEndpoint, svc.handleStats)

	return svc, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "rest" }

// Handler returns the root http handler of the service for use in tests.
func (svc *Service) Handler() http.Handler { return svc.router }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:    svc.config.ListenAddr,
		Handler: svc.router,
	}

	go func() {
		<-ctx.Done()

		_ = srv.Close()
	}()

	svc.config.Logger.WithField("addr", svc.config.ListenAddr).Info(
		"started service",
	)

	if err = srv.Serve(l); err == http.ErrServerClosed {
		// Server closed gracefully.
		err = nil
	}

	return err
}

// searchResponse wraps one page of results with the echoed query and
// the session id assigned to the search.
type searchResponse struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
	*query.Results
}

func (svc *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	expression := params.Get("query")
	if expression == "" {
		svc.writeError(w, http.StatusBadRequest, "missing query parameter")
		return
	}

	page := intParam(params.Get("page"), 1)
	pageSize := intParam(params.Get("pageSize"), svc.config.ResultsPerPage)

	// Searches carry a session id so that paging requests can be
	// correlated in the logs. A fresh id is assigned when the client
	// does not provide one.
	sessionID := params.Get("sessionId")
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.New().String()
	}

	results, err := svc.config.SearchAPI.Search(r.Context(), expression, page, pageSize)
	if err != nil {
		if errors.Is(err, query.ErrBadQuery) {
			svc.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		svc.config.Logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err,
		}).Error("search failed")
		svc.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	svc.config.Logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"query":      expression,
		"page":       page,
		"results":    results.TotalResults,
	}).Info("search request served")

	svc.writeJSON(w, http.StatusOK, &searchResponse{
		Query:     expression,
		SessionID: sessionID,
		Results:   results,
	})
}

type reindexRequest struct {
	URLs []string `json:"urls"`
}

func (svc *Service) handleReindex(w http.ResponseWriter, r *http.Request) {
	var req reindexRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			svc.writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	// The rebuild runs in the background; the request only schedules it.
	go func() {
		if err := svc.config.IndexAPI.Reindex(context.Background(), req.URLs); err != nil {
			svc.config.Logger.WithField("error", err).Error("reindex pass failed")
		}
	}()

	svc.writeJSON(w, http.StatusAccepted, map[string]string{"status": "reindex scheduled"})
}

func (svc *Service) handleMetrics(w http.ResponseWriter, r *http.Request) {
	go func() {
		if err := svc.config.MetricsAPI.ComputeAndStore(context.Background()); err != nil {
			svc.config.Logger.WithField("error", err).Error("metrics pass failed")
		}
	}()

	svc.writeJSON(w, http.StatusAccepted, map[string]string{"status": "metrics pass scheduled"})
}

type statsResponse struct {
	WordCount     int64 `json:"wordCount"`
	DocumentCount int64 `json:"documentCount"`
}

func (svc *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	wordCount, err := svc.config.StatsAPI.TermCount()
	if err != nil {
		svc.config.Logger.WithField("error", err).Error("stats lookup failed")
		svc.writeError(w, http.StatusInternalServerError, "stats lookup failed")
		return
	}

	docCount, err := svc.config.StatsAPI.DocumentCount()
	if err != nil {
		svc.config.Logger.WithField("error", err).Error("stats lookup failed")
		svc.writeError(w, http.StatusInternalServerError, "stats lookup failed")
		return
	}

	svc.writeJSON(w, http.StatusOK, &statsResponse{
		WordCount:     wordCount,
		DocumentCount: docCount,
	})
}

func (svc *Service) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		svc.config.Logger.WithField("error", err).Error("response encoding failed")
	}
}

func (svc *Service) writeError(w http.ResponseWriter, status int, message string) {
	svc.writeJSON(w, status, map[string]string{"error": message})
}

func intParam(raw string, fallback int) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
