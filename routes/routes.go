package routes

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upb/llm-datagen/app"
	"github.com/upb/llm-datagen/handlers"
	"github.com/upb/llm-datagen/middleware"
	"github.com/upb/llm-datagen/utils"
)

const defaultRequestTimeout = 60 * time.Second

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	timeout := cfg.Server.WriteTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))

	// CORS middleware
	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderAPIKey},
		ExposedHeaders: []string{"Content-Disposition", middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	auth := deps.APIKeyMiddleware
	if auth == nil {
		auth = middleware.NewAPIKeyMiddleware(cfg.Usage.AdminAPIKey, deps.Logger)
	}

	health := newHealthHandler(deps)
	generatorHandler := handlers.NewGeneratorHandler(deps.Generator, deps.Logger, cfg.Generator.PreviewRows, cfg.Generator.RequestTimeout)
	templateHandler := handlers.NewTemplateHandler(deps.Resolver, deps.Logger)
	usageHandler := handlers.NewUsageHandler(deps.Counters, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/status", health.HandleStatus)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePrincipal)

			r.Route("/generator", func(r chi.Router) {
				r.Post("/generate-excel", generatorHandler.HandleGenerateExcel)
				r.Post("/generate-coherent-survey", generatorHandler.HandleGenerateSurvey)
				r.Post("/preview", generatorHandler.HandlePreview)
			})

			r.Route("/prompt-templates", func(r chi.Router) {
				r.Get("/", templateHandler.HandleListTemplates)
				r.Get("/{id}", templateHandler.HandleGetTemplate)
			})

			// Usage reporting (require admin key)
			r.Route("/usage", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Get("/stats", usageHandler.HandleStats)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}

// newHealthHandler passes only initialized infrastructure so nil checks see untyped nils
func newHealthHandler(deps *app.Dependencies) *handlers.HealthHandler {
	var (
		db          *sql.DB
		redisPinger handlers.RedisPinger
		providers   handlers.ProviderLister
	)
	if deps.DB != nil {
		db = deps.DB.DB
	}
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	if deps.Orchestrator != nil {
		providers = deps.Orchestrator
	}
	return handlers.NewHealthHandler(db, redisPinger, providers, deps.Config.Environment, deps.Logger)
}
