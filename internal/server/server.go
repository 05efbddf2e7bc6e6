package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/metrics"
	"feed_ingestor/internal/middleware"
	"feed_ingestor/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 16

// Runner executes one ingestion run.
type Runner interface {
	Run(ctx context.Context, req models.Request) (models.Result, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP handler dependencies.
type Server struct {
	runner   Runner
	db       Pinger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewServer creates a Server. gatherer backs /metrics; nil disables it.
func NewServer(runner Runner, db Pinger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	return &Server{runner: runner, db: db, metrics: m, gatherer: gatherer}
}

// Routes returns the router wrapped in the request ID and logging middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/fetch-articles", s.FetchArticles)
	mux.HandleFunc("GET /health", s.HealthCheck)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(s.metrics)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	return handler
}

// HealthCheck answers 200 OK if the database is reachable, 503 otherwise.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		http.Error(w, "DB unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("OK"))
}

// FetchArticles decodes {"timeFilter", "userId"}, runs ingestion and
// answers with the run result. Any failure is reported as 400 with
// {"error": message}.
func (s *Server) FetchArticles(w http.ResponseWriter, r *http.Request) {
	var req models.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "invalid request body: "+err.Error())
		return
	}

	res, err := s.runner.Run(r.Context(), req)
	if err != nil {
		logger.Log.WithFields(logger.Fields{
			"user_id":    req.UserID,
			"request_id": middleware.RequestID(r.Context()),
		}).WithError(err).Error("Ingestion run failed")
		writeError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}
