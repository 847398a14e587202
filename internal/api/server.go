// Package api provides the Wellspring HTTP server: account, points, badge,
// recommendation, and notification endpoints on a chi router.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wellspring-health/wellspring/internal/app/badge"
	"github.com/wellspring-health/wellspring/internal/app/ledger"
	"github.com/wellspring-health/wellspring/internal/app/notify"
	"github.com/wellspring-health/wellspring/internal/app/recommend"
	"github.com/wellspring-health/wellspring/internal/domain"
)

// Server is the Wellspring HTTP API server.
type Server struct {
	ledger         *ledger.Service
	badges         *badge.Engine
	scorer         *recommend.Scorer
	profiles       *recommend.ProfileBuilder
	notifications  *notify.Service
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(l *ledger.Service, b *badge.Engine, s *recommend.Scorer, p *recommend.ProfileBuilder, n *notify.Service) *Server {
	return &Server{
		ledger:        l,
		badges:        b,
		scorer:        s,
		profiles:      p,
		notifications: n,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts", s.handleCreateAccount)
		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Post("/points", s.handleAwardPoints)
			r.Get("/summary", s.handleSummary)
			r.Get("/badges", s.handleAccountBadges)
			r.Get("/profile", s.handleProfile)
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/notifications", s.handleNotifications)
		})
		r.Get("/badges", s.handleBadgeCatalog)
		r.Post("/notifications/{id}/shown", s.handleNotificationShown)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidActivityType),
		errors.Is(err, domain.ErrMalformedMetadata):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccountExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConcurrentUpdate):
		// Surfaces only after the ledger's bounded retries are exhausted.
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
