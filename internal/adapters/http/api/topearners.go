// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/plumescan/plumescan/internal/domain/model"
	"github.com/plumescan/plumescan/internal/pipeline"
)

// TopEarnersDependencies defines the interface for synchronous runs.
type TopEarnersDependencies interface {
	TopEarners(ctx context.Context) ([]model.GainRecord, error)
}

// TopEarnersHandler handles synchronous top-earner requests.
type TopEarnersHandler struct {
	deps TopEarnersDependencies
}

// NewTopEarnersHandler creates a new top-earners handler.
func NewTopEarnersHandler(deps TopEarnersDependencies) *TopEarnersHandler {
	return &TopEarnersHandler{deps: deps}
}

// HandleGetTopEarners handles GET /api/top-earners?limit=N requests. The
// optional limit trims the configured top-K; it can never widen it.
func (h *TopEarnersHandler) HandleGetTopEarners(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		limit = n
	}

	records, err := h.deps.TopEarners(r.Context())
	if err != nil {
		if errors.Is(err, pipeline.ErrRunFailed) {
			writeError(w, http.StatusBadGateway, "upstream_failed", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	writeJSON(w, http.StatusOK, records)
}
