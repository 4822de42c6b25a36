// internal/api/health.go

// Package api serves the admin HTTP surface: readiness, status, and the
// Prometheus scrape endpoint.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"conflictradar-processing/internal/common/logger"
)

// ReadinessProbe reports whether a collaborator can accept work.
type ReadinessProbe func(ctx context.Context) bool

// Server exposes the processing service's admin endpoints.
type Server struct {
	serviceName    string
	taggerReady    ReadinessProbe
	gazetteerReady ReadinessProbe
	logger         logger.Logger

	httpServer *http.Server
}

func NewServer(addr, serviceName string, taggerReady, gazetteerReady ReadinessProbe, log logger.Logger) *Server {
	s := &Server{
		serviceName:    serviceName,
		taggerReady:    taggerReady,
		gazetteerReady: gazetteerReady,
		logger:         log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/processing/health", s.handleHealth)
	mux.HandleFunc("/api/v1/processing/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Admin HTTP server listening", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	taggerUp := s.taggerReady(ctx)
	gazetteerUp := s.gazetteerReady(ctx)
	healthy := taggerUp && gazetteerUp

	status := "UP"
	code := http.StatusOK
	if !healthy {
		status = "DOWN"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"service":   s.serviceName,
		"timestamp": time.Now().Format(time.RFC3339),
		"processing": map[string]interface{}{
			"taggerReady":    taggerUp,
			"gazetteerReady": gazetteerUp,
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Processing service is running",
		"capabilities": map[string]interface{}{
			"entityExtraction":     "HTTP tagger",
			"sentimentAnalysis":    "Rule-based",
			"geographicResolution": "GeoNames API",
			"documentIndexing":     "Elasticsearch",
			"eventStreaming":       "Redis Streams",
		},
	})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
