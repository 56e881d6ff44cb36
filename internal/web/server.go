// Package web exposes the JSON HTTP API consumed by the chart frontend.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"learnlog/internal/importer"
	"learnlog/internal/ports"
	"learnlog/internal/records"
	"learnlog/internal/trends"
)

type Server struct {
	store          ports.Store
	records        *records.Service
	trends         *trends.Builder
	importer       *importer.Importer
	metricsEnabled bool
	timeout        time.Duration
}

func NewServer(store ports.Store, svc *records.Service, builder *trends.Builder, imp *importer.Importer) *Server {
	return &Server{
		store:    store,
		records:  svc,
		trends:   builder,
		importer: imp,
		timeout:  30 * time.Second,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetTimeout overrides the per-request timeout.
func (s *Server) SetTimeout(d time.Duration) { s.timeout = d }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleCreateUser)

		r.Get("/trends", s.handleTrends)
		r.Get("/categories", s.handleCategories)

		r.Get("/stages", s.handleListStages)
		r.Post("/stages", s.handleCreateStage)
		r.Delete("/stages/{id}", s.handleDeleteStage)
		r.Post("/stages/{id}/recompute", s.handleRecomputeStage)

		r.Post("/logs", s.handleCreateLog)
		r.Put("/logs/{id}", s.handleUpdateLog)
		r.Delete("/logs/{id}", s.handleDeleteLog)

		r.Post("/import", s.handleImport)
	})

	return r
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("Starting server at http://%s\n", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}
