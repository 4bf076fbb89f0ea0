package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/craftops/panelsim/kernel/control"
	"github.com/craftops/panelsim/kernel/fault"
	"github.com/craftops/panelsim/kernel/model"
)

// Server exposes the control surface over HTTP for test tooling. The caller
// decides whether to mount it at all; simulation-mode gating belongs to the
// embedding process, not the engine.
type Server struct {
	surface *control.Surface
	router  *mux.Router
}

func NewServer(surface *control.Surface) *Server {
	s := &Server{
		surface: surface,
		router:  mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) setupRoutes() {
	sim := s.router.PathPrefix("/sim").Subrouter()
	sim.Use(loggingMiddleware)

	sim.HandleFunc("/state", s.handleGetState).Methods("GET")
	sim.HandleFunc("/state", s.handlePatchState).Methods("PATCH", "POST")
	sim.HandleFunc("/state/query", s.handleQueryState).Methods("GET")
	sim.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	sim.HandleFunc("/scenario", s.handleCurrentScenario).Methods("GET")
	sim.HandleFunc("/scenario/{name}", s.handleApplyScenario).Methods("POST")
	sim.HandleFunc("/faults", s.handleGetFaults).Methods("GET")
	sim.HandleFunc("/faults", s.handleInjectFault).Methods("POST")
	sim.HandleFunc("/faults", s.handleClearAllFaults).Methods("DELETE")
	sim.HandleFunc("/faults/{operation}", s.handleClearFault).Methods("DELETE")
	sim.HandleFunc("/latency", s.handleSetLatency).Methods("PUT")
	sim.HandleFunc("/reset", s.handleReset).Methods("POST")
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.surface.State())
}

func (s *Server) handlePatchState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.surface.PatchState(body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.surface.State())
}

func (s *Server) handleQueryState(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("path")
	if expr == "" {
		writeError(w, http.StatusBadRequest, errors.New("path parameter is required"))
		return
	}
	res, err := s.surface.QueryState(expr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"path": expr, "result": res})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.surface.Scenarios())
}

func (s *Server) handleCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario": s.surface.CurrentScenario()})
}

func (s *Server) handleApplyScenario(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.surface.ApplyScenario(name); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrUnknownScenario) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"scenario": name})
}

func (s *Server) handleGetFaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.surface.FaultConfig())
}

func (s *Server) handleInjectFault(w http.ResponseWriter, r *http.Request) {
	var req fault.Injection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.surface.InjectFault(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.surface.FaultConfig())
}

func (s *Server) handleClearFault(w http.ResponseWriter, r *http.Request) {
	if err := s.surface.ClearFault(mux.Vars(r)["operation"]); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.surface.FaultConfig())
}

func (s *Server) handleClearAllFaults(w http.ResponseWriter, r *http.Request) {
	s.surface.ClearAllFaults()
	writeJSON(w, http.StatusOK, s.surface.FaultConfig())
}

func (s *Server) handleSetLatency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GlobalLatencyMs *int64 `json:"globalLatencyMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.surface.SetGlobalLatency(req.GlobalLatencyMs)
	writeJSON(w, http.StatusOK, s.surface.FaultConfig())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.surface.Reset()
	writeJSON(w, http.StatusOK, s.surface.State())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("sim request")
	})
}
