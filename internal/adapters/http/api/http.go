// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/model"
)

// DefaultMaxUploadBytes caps a POST /analyses body when no limit is configured.
const DefaultMaxUploadBytes = 64 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Submit queues an analysis; ErrBackpressure signals a full queue.
	Submit(ctx context.Context, sub service.Submission) (service.Ack, error)

	// Get returns a stored analysis.
	Get(ctx context.Context, id string) (*model.Analysis, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analysesHandler *AnalysesHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes caps the body size of POST /analyses.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.analysesHandler.maxUpload = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		analysesHandler: NewAnalysesHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	a := s.analysesHandler
	mux.HandleFunc("POST /analyses", MetricsMiddleware(a.HandleSubmit, "analyses_submit"))
	mux.HandleFunc("GET /analyses/{id}", MetricsMiddleware(a.HandleGet, "analyses_get"))
	mux.HandleFunc("GET /analyses/{id}/days", MetricsMiddleware(a.HandleDays, "analyses_days"))
	mux.HandleFunc("GET /analyses/{id}/correlations", MetricsMiddleware(a.HandleCorrelations, "analyses_correlations"))
	mux.HandleFunc("GET /analyses/{id}/apps", MetricsMiddleware(a.HandleApps, "analyses_apps"))
	mux.HandleFunc("GET /analyses/{id}/heatmap", MetricsMiddleware(a.HandleHeatmap, "analyses_heatmap"))
	mux.HandleFunc("GET /analyses/{id}/export.xlsx", MetricsMiddleware(a.HandleExport, "analyses_export"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service error kinds to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrEmptyUpload):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
