package rest

import (
	"net/http"

	"pessoas-backend/application/services"
	"pessoas-backend/infrastructure/config"
	"pessoas-backend/interfaces/http/rest/handlers"
	"pessoas-backend/interfaces/http/rest/middleware"
	"pessoas-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	service   *services.PersonService
	collector *observability.Collector // nil disables /metrics
	config    *config.Config
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	service *services.PersonService,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		service:   service,
		collector: collector,
		config:    cfg,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(middleware.Metrics(rt.collector))
	}

	// CORS configuration
	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Location", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	// Person endpoints
	personHandler := handlers.NewPersonHandler(rt.service, rt.logger)
	router.Route("/pessoas", func(r chi.Router) {
		r.Post("/", personHandler.CreatePerson)
		r.Get("/", personHandler.SearchPersons)
		r.Get("/{personID}", personHandler.GetPerson)
	})
	router.Get("/contagem-pessoas", personHandler.CountPersons)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
