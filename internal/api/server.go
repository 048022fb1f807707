// Package api serves the AHSS engines over HTTP/JSON.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nyxdynamics/ahss/internal/config"
	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// Records is the persistence the API needs. A nil Records disables the
// history endpoints and saving.
type Records interface {
	SaveScreening(clientID string, responses screening.ResponseSet, in screening.Interpretation) (*records.Screening, error)
	GetScreening(id string) (*records.Screening, error)
	ListScreenings(clientID string, limit int) ([]records.Screening, error)
	SaveSimulation(sim records.Simulation) (*records.Simulation, error)
	ListSimulations(clientID string, limit int) ([]records.Simulation, error)
}

// Server represents the HTTP API server
type Server struct {
	config  config.Config
	router  *chi.Mux
	catalog screening.Catalog
	model   *trajectory.Model
	records Records
	logger  *slog.Logger
}

// NewServer creates a new API server. rec may be nil.
func NewServer(cfg config.Config, cat screening.Catalog, model *trajectory.Model, rec Records, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:  cfg,
		catalog: cat,
		model:   model,
		records: rec,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Screening
		r.Get("/items", s.handleListItems)
		r.Get("/form", s.handleForm)
		r.Post("/score", s.handleScore)
		r.Post("/interpret", s.handleInterpret)

		// Trajectories
		r.Post("/simulate", s.handleSimulate)
		r.Post("/compare", s.handleCompare)

		// History
		r.Get("/screenings/{id}", s.handleGetScreening)
		r.Get("/screenings/{id}/report", s.handleScreeningReport)
		r.Route("/clients/{clientID}", func(r chi.Router) {
			r.Get("/screenings", s.handleListScreenings)
			r.Get("/simulations", s.handleListSimulations)
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
