package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/richard-senior/gwodds/internal/logger"
	"github.com/richard-senior/gwodds/pkg/gwodds"
)

// Server exposes an assembled batch to the dashboard collaborator as JSON.
// The batch is computed before the server starts and never mutated, so the
// handlers need no locking.
type Server struct {
	gameweeks []*gwodds.Gameweek
	skipped   []*gwodds.SkippedFixture
}

// NewServer creates a server over one batch run's output
func NewServer(gameweeks []*gwodds.Gameweek, skipped []*gwodds.SkippedFixture) *Server {
	return &Server{gameweeks: gameweeks, skipped: skipped}
}

// SetupRoutes configures the HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/gameweeks", s.handleGameweeks).Methods("GET")
	r.HandleFunc("/gameweeks/{label}", s.handleGameweek).Methods("GET")
	r.HandleFunc("/gameweeks/{label}/ranked", s.handleRankedGameweek).Methods("GET")
	r.HandleFunc("/diagnostics", s.handleDiagnostics).Methods("GET")

	return r
}

// ListenAndServe starts serving on the given address until the process exits
func (s *Server) ListenAndServe(addr string) error {
	logger.Info("Serving gameweek odds on", addr)
	return http.ListenAndServe(addr, s.SetupRoutes())
}

func (s *Server) handleGameweeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.gameweeks)
}

func (s *Server) handleGameweek(w http.ResponseWriter, r *http.Request) {
	gw := s.findGameweek(mux.Vars(r)["label"])
	if gw == nil {
		http.Error(w, "no such gameweek", http.StatusNotFound)
		return
	}
	writeJSON(w, gw)
}

func (s *Server) handleRankedGameweek(w http.ResponseWriter, r *http.Request) {
	gw := s.findGameweek(mux.Vars(r)["label"])
	if gw == nil {
		http.Error(w, "no such gameweek", http.StatusNotFound)
		return
	}
	writeJSON(w, gw.RankedByFavorability())
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	type diagnostic struct {
		Fixture *gwodds.Fixture `json:"fixture"`
		Reason  string          `json:"reason"`
	}
	diagnostics := make([]diagnostic, 0, len(s.skipped))
	for _, sk := range s.skipped {
		diagnostics = append(diagnostics, diagnostic{Fixture: sk.Fixture, Reason: sk.Reason})
	}
	writeJSON(w, diagnostics)
}

func (s *Server) findGameweek(label string) *gwodds.Gameweek {
	for _, gw := range s.gameweeks {
		if gw.Label == label {
			return gw
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", err)
	}
}
