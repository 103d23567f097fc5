// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/plumescan/plumescan/internal/adapters/plume"
	"github.com/plumescan/plumescan/internal/domain/model"
	"github.com/plumescan/plumescan/internal/pipeline"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// StreamTopEarners starts a pipeline run and returns its progress stream.
	StreamTopEarners(ctx context.Context) *pipeline.Stream

	// TopEarners runs a pipeline to completion and returns only the result.
	TopEarners(ctx context.Context) ([]model.GainRecord, error)

	// NetworkStats scans the whole active population.
	NetworkStats(ctx context.Context) (plume.NetworkStats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	streamHandler       *StreamHandler
	topEarnersHandler   *TopEarnersHandler
	networkStatsHandler *NetworkStatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		streamHandler:       NewStreamHandler(deps),
		topEarnersHandler:   NewTopEarnersHandler(deps),
		networkStatsHandler: NewNetworkStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/top-earners/stream", MetricsMiddleware(s.streamHandler.HandleStream, "top_earners_stream"))
	mux.HandleFunc("/api/top-earners", MetricsMiddleware(s.topEarnersHandler.HandleGetTopEarners, "top_earners"))
	mux.HandleFunc("/api/network-stats", MetricsMiddleware(s.networkStatsHandler.HandleGetNetworkStats, "network_stats"))
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
