// ABOUTME: HTTP host surface exposing fleet health, readiness, and agent snapshots.
// ABOUTME: A thin shell over registry lookups; no supervision logic lives here.

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wardenhq/warden/internal/registry"
	"github.com/wardenhq/warden/internal/store"
	"github.com/wardenhq/warden/internal/supervisor"
)

// defaultEventLimit caps journal listings when no limit query is given.
const defaultEventLimit = 50

// Server serves the warden HTTP API. The journal store is optional; event
// endpoints return 404 when no store is configured.
type Server struct {
	registry *registry.Registry
	journal  store.Store
	logger   *slog.Logger
}

// New creates an API server over the given registry. Pass nil journal to
// disable the event endpoints.
func New(reg *registry.Registry, journal store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		registry: reg,
		journal:  journal,
		logger:   logger.With("component", "httpapi"),
	}
}

// RegisterRoutes attaches all API routes to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /agents", s.handleAgents)
	mux.HandleFunc("GET /agents/{id}", s.handleAgent)
	mux.HandleFunc("GET /agents/{id}/events", s.handleAgentEvents)
	mux.HandleFunc("GET /events", s.handleEvents)
}

// agentSummary is the per-agent line in the health response.
type agentSummary struct {
	ID     string                  `json:"id"`
	State  supervisor.State        `json:"state"`
	Health supervisor.HealthStatus `json:"health"`
}

type healthResponse struct {
	Status string         `json:"status"` // ok or degraded
	Agents []agentSummary `json:"agents"`
}

// handleHealth reports aggregate fleet health. Agents in the error state or
// reporting unhealthy degrade the response to 503 instead of crashing
// anything; degraded agents are visible data, not failures.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	infos := s.registry.GetAll()

	resp := healthResponse{Status: "ok", Agents: make([]agentSummary, 0, len(infos))}
	for _, info := range infos {
		if info.State == supervisor.StateError || info.Health.Status == supervisor.HealthUnhealthy {
			resp.Status = "degraded"
		}
		resp.Agents = append(resp.Agents, agentSummary{
			ID:     info.ID,
			State:  info.State,
			Health: info.Health.Status,
		})
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

type readyResponse struct {
	Ready bool `json:"ready"`
}

// handleReady reports 200 once every registered agent is running.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := true
	for _, info := range s.registry.GetAll() {
		if info.State != supervisor.StateRunning {
			ready = false
			break
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, readyResponse{Ready: ready})
}

// handleAgents returns Info snapshots for every registered agent.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.GetAll())
}

// handleAgent returns the Info snapshot for one agent.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	agent, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, agent.Info())
}

// handleEvents returns the most recent journal events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "event journal not configured", http.StatusNotFound)
		return
	}

	events, err := s.journal.ListEvents(r.Context(), eventLimit(r))
	if err != nil {
		s.logger.Error("listing events failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

// handleAgentEvents returns the most recent journal events for one agent.
func (s *Server) handleAgentEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "event journal not configured", http.StatusNotFound)
		return
	}

	id := r.PathValue("id")
	if _, ok := s.registry.Get(id); !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}

	events, err := s.journal.ListAgentEvents(r.Context(), id, eventLimit(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "agent not found", http.StatusNotFound)
			return
		}
		s.logger.Error("listing agent events failed", "agent_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

// eventLimit parses the limit query parameter, falling back to the default.
func eventLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultEventLimit
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}
