// Package api provides the HTTP API server and handlers for Fritter.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/validation"
)

// APIVersion is reported in the OpenAPI document.
const APIVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     store.Store
	services  *Services
	validator *validation.Validator
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg config.ServerConfig, st store.Store, services *Services, logger *slog.Logger) *Server {
	s := &Server{
		store:     st,
		services:  services,
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	// chi rejects middleware added after the first route, and humachi.New
	// registers the OpenAPI routes.
	s.setupMiddleware(cfg)

	humaConfig := huma.DefaultConfig("Fritter API", APIVersion)
	humaConfig.Info.Description = "Tags, flags, and filtered feeds over freets."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerFreetRoutes()
	s.registerTagRoutes()
	s.registerFlagRoutes()
	s.registerFeedRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}
