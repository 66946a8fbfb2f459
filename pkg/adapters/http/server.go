// Package http exposes a read-only JSON view of a running simulation.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/cellfate/pkg/domain"
)

// Simulation is the subset of the simulation facade the API reads from.
type Simulation interface {
	CellIDs() []string
	Snapshot(id string) (domain.CellSnapshot, error)
	Summaries(ctx context.Context) ([]domain.StepSummary, error)
	Topology() domain.Topology
}

// Server holds the handlers' dependencies.
type Server struct {
	sim     Simulation
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts a metrics handler (typically promhttp) at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// CellSummary is one entry of GET /cells.
type CellSummary struct {
	ID        string           `json:"id"`
	Step      int              `json:"step"`
	Phenotype domain.Phenotype `json:"phenotype"`
}

// NewHandler creates the HTTP handler for a simulation.
func NewHandler(sim Simulation, opts ...Option) http.Handler {
	s := &Server{
		sim:    sim,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/cells", s.ListCells)
	r.Get("/cells/{id}", s.GetCell)
	r.Get("/summary", s.GetSummary)
	r.Get("/summaries", s.ListSummaries)
	r.Get("/network", s.GetNetwork)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListCells handles GET /cells.
func (s *Server) ListCells(w http.ResponseWriter, r *http.Request) {
	ids := s.sim.CellIDs()
	out := make([]CellSummary, 0, len(ids))
	for _, id := range ids {
		snap, err := s.sim.Snapshot(id)
		if err != nil {
			// Died between the two calls
			continue
		}
		out = append(out, CellSummary{ID: id, Step: snap.Step, Phenotype: snap.Phenotype})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetCell handles GET /cells/{id}.
func (s *Server) GetCell(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.sim.Snapshot(id)
	if err != nil {
		if errors.Is(err, domain.ErrCellNotFound) {
			http.Error(w, "cell not found", http.StatusNotFound)
			return
		}
		s.fail(w, "GetCell", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// GetSummary handles GET /summary: the latest step summary.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	history, err := s.sim.Summaries(r.Context())
	if err != nil {
		s.fail(w, "GetSummary", err)
		return
	}
	if len(history) == 0 {
		http.Error(w, "no step has completed yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, history[len(history)-1])
}

// ListSummaries handles GET /summaries.
func (s *Server) ListSummaries(w http.ResponseWriter, r *http.Request) {
	history, err := s.sim.Summaries(r.Context())
	if err != nil {
		s.fail(w, "ListSummaries", err)
		return
	}
	if history == nil {
		history = []domain.StepSummary{}
	}
	s.writeJSON(w, http.StatusOK, history)
}

// GetNetwork handles GET /network.
func (s *Server) GetNetwork(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sim.Topology())
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}
