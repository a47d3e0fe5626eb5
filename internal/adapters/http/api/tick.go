// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/runtogether/pacer/internal/adapters/artifact"
	service "github.com/runtogether/pacer/internal/app"
)

// TickHandler handles sample ingestion and recommendation requests.
type TickHandler struct {
	deps Dependencies
}

// NewTickHandler creates a new tick handler.
func NewTickHandler(deps Dependencies) *TickHandler {
	return &TickHandler{deps: deps}
}

// HandleTick handles POST /tick requests.
func (h *TickHandler) HandleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	req.applyDefaults()
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.deps.Tick(r.Context(), req.SessionID, req.RunnerLevel, req.Samples)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		case errors.Is(err, artifact.ErrUnavailable):
			writeError(w, http.StatusInternalServerError, "artifacts_unavailable", err)
		case errors.Is(err, artifact.ErrTransform):
			writeError(w, http.StatusInternalServerError, "transform_failed", err)
		default:
			writeError(w, http.StatusInternalServerError, "engine_error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, tickResponse{
		SessionID:             result.SessionID,
		DisplayRecommendation: result.Display,
		Result:                result.Result,
		ServerTime:            float64(time.Now().UnixNano()) / 1e9,
	})
}
