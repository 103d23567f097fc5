// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/plumescan/plumescan/pkg/metrics"
)

// StreamHandler handles server-sent-event requests.
type StreamHandler struct {
	deps Dependencies
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps Dependencies) *StreamHandler {
	return &StreamHandler{deps: deps}
}

// HandleStream handles GET /api/top-earners/stream requests. It starts one
// pipeline run and relays every progress event as an SSE data frame until
// the terminal event. A client disconnect cancels the relay; the run itself
// keeps going until its own context ends.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", ErrStreamingUnsupported)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disable proxy buffering so progress frames reach the client promptly.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	stream := h.deps.StreamTopEarners(r.Context())
	for {
		event, ok := stream.Next(r.Context())
		if !ok {
			// Consumer context ended before the terminal event.
			metrics.RecordStreamDropped()
			return
		}

		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			metrics.RecordStreamDropped()
			return
		}
		flusher.Flush()

		if event.Terminal() {
			return
		}
	}
}
