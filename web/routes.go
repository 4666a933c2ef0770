/* routes.go
 * Contains the router of the HTTP API. Kept apart from Start so the handlers can be tested with httptest.
 * Authors: Zachary Bower
 */

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewServer creates the server described by cfg
func NewServer(cfg Config) *Server {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		secret = randomSecret()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		api:      cfg.API,
		cache:    cfg.Cache,
		metrics:  cfg.Metrics,
		gatherer: gatherer,
		origins:  origins,
		secret:   secret,
		now:      time.Now,
	}
}

// Routes returns the handler serving every endpoint
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/brackets/{cycle}", s.handleBracket)
		r.Get("/teams", s.handleTeams)
		r.Get("/stats", s.handleStats)
		r.Post("/login", s.handleLogin)
		r.Post("/matches/{id}/result", s.handleResult)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}
