// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/runtogether/pacer/internal/domain/model"
	"github.com/runtogether/pacer/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Tick processes one batch of samples for a session.
	Tick(ctx context.Context, sessionID string, runnerLevel int, samples []model.RawSample) (types.TickResult, error)

	// Health reports artifact availability.
	Health(ctx context.Context) types.Health
}

// Server wires HTTP routes for the business API.
type Server struct {
	tickHandler    *TickHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	metricsHandler *MetricsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		tickHandler:    NewTickHandler(deps),
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		metricsHandler: NewMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/tick", MetricsMiddleware(s.tickHandler.HandleTick, "tick"))
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/metrics", s.metricsHandler.HandleMetrics)
}

// tickRequest mirrors the wire schema for POST /tick.
type tickRequest struct {
	SessionID   string            `json:"session_id"`
	RunnerLevel int               `json:"runner_level"`
	Samples     []model.RawSample `json:"samples"`
}

func (t *tickRequest) validate() error {
	switch {
	case strings.TrimSpace(t.SessionID) == "":
		return errors.New("missing session_id")
	case len(t.Samples) == 0:
		return errors.New("no samples provided")
	}
	return nil
}

// applyDefaults fills fields the client may omit.
func (t *tickRequest) applyDefaults() {
	if t.RunnerLevel == 0 {
		t.RunnerLevel = 2
	}
}

// tickResponse mirrors the wire schema returned by POST /tick.
type tickResponse struct {
	SessionID             string               `json:"session_id"`
	DisplayRecommendation bool                 `json:"display_recommendation"`
	Result                types.Recommendation `json:"result"`
	ServerTime            float64              `json:"server_time"`
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
