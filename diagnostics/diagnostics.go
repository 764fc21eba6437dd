// Package diagnostics exposes a container over HTTP: health, readiness,
// registered keys and the dependency graph.
package diagnostics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danpasecinic/anvil"
)

type checkReport struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

type checkResponse struct {
	Status string        `json:"status"`
	Checks []checkReport `json:"checks"`
}

// Handler serves:
//
//	GET /health     every HealthChecker, 503 when one is down
//	GET /ready      every ReadinessChecker, 503 when one is down
//	GET /keys       registered keys in registration order
//	GET /graph      the dependency graph as JSON
//	GET /graph.dot  the dependency graph in Graphviz DOT
func Handler(c *anvil.Container) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeChecks(w, c.Health(req.Context()))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		writeChecks(w, c.Readiness(req.Context()))
	})
	r.Get("/keys", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, c.Keys())
	})
	r.Get("/graph", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, c.Graph())
	})
	r.Get("/graph.dot", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		c.FprintGraphDOT(w)
	})

	return r
}

// NewServer wraps Handler in an http.Server listening on addr.
func NewServer(addr string, c *anvil.Container) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Handler(c),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeChecks(w http.ResponseWriter, reports []anvil.HealthReport) {
	resp := checkResponse{
		Status: string(anvil.HealthStatusUp),
		Checks: make([]checkReport, 0, len(reports)),
	}
	code := http.StatusOK

	for _, r := range reports {
		report := checkReport{
			Name:    r.Name,
			Status:  string(r.Status),
			Latency: r.Latency.String(),
		}
		if r.Error != nil {
			report.Error = r.Error.Error()
		}
		if r.Status == anvil.HealthStatusDown {
			resp.Status = string(anvil.HealthStatusDown)
			code = http.StatusServiceUnavailable
		}
		resp.Checks = append(resp.Checks, report)
	}

	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
