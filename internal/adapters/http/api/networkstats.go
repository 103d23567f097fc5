// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/plumescan/plumescan/internal/adapters/plume"
)

// NetworkStatsDependencies defines the interface for the population scan.
type NetworkStatsDependencies interface {
	NetworkStats(ctx context.Context) (plume.NetworkStats, error)
}

// NetworkStatsHandler handles network-stats requests.
type NetworkStatsHandler struct {
	deps NetworkStatsDependencies
}

// NewNetworkStatsHandler creates a new network-stats handler.
func NewNetworkStatsHandler(deps NetworkStatsDependencies) *NetworkStatsHandler {
	return &NetworkStatsHandler{deps: deps}
}

// HandleGetNetworkStats handles GET /api/network-stats requests.
func (h *NetworkStatsHandler) HandleGetNetworkStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	stats, err := h.deps.NetworkStats(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
