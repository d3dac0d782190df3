// Package api implements the HTTP layer of the exit readiness calculator.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nyashahama/exit-valuation-backend/internal/questionnaire"
	"github.com/nyashahama/exit-valuation-backend/internal/schema"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
	"github.com/nyashahama/exit-valuation-backend/internal/worker"
)

// Config holds the HTTP-facing subset of the process configuration.
type Config struct {
	// Env is "production" or anything else.
	Env string

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string

	// AdminToken enables the /api/admin routes when non-empty.
	AdminToken string

	// SubmitRatePerMinute and SubmitBurst bound submissions per client IP.
	// A rate <= 0 disables limiting.
	SubmitRatePerMinute int
	SubmitBurst         int
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	// repo persists results and leads.
	repo store.Repository

	// docs serves the questionnaire configuration documents.
	docs questionnaire.Provider

	// validate checks payloads at the boundary.
	validate *schema.Validator

	// worker enqueues lead notifications after a submission is stored.
	worker worker.Enqueuer

	limiter *ipLimiter
	cfg     Config
	logger  *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to an http.Server.
func NewServer(
	repo store.Repository,
	docs questionnaire.Provider,
	validator *schema.Validator,
	enqueuer worker.Enqueuer,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		repo:     repo,
		docs:     docs,
		validate: validator,
		worker:   enqueuer,
		limiter:  newIPLimiter(cfg.SubmitRatePerMinute, cfg.SubmitBurst),
		cfg:      cfg,
		logger:   logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Token", "X-Request-ID"},
		MaxAge:         86400,
	}))
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health and metrics ────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {

		// Standard questionnaire.
		r.Get("/questionnaire", s.handleGetQuestionnaire)
		r.Post("/calculate", s.handleCalculate)
		r.Post("/questionnaire/calculate", s.handleCalculate)
		r.With(s.rateLimit).Post("/questionnaire/submit", s.handleSubmit)
		r.Get("/result/{id}", s.handleGetResult)
		r.Get("/questionnaire/result/{id}", s.handleGetResult)

		// Expert calculator.
		r.Route("/experto", func(r chi.Router) {
			r.Get("/questionnaire", s.handleGetExpertQuestionnaire)
			r.Post("/calculate", s.handleExpertCalculate)
			r.With(s.rateLimit).Post("/submit", s.handleExpertSubmit)
			r.Get("/result/{id}", s.handleGetExpertResult)
		})

		// Lead administration, only when a token is configured.
		if s.cfg.AdminToken != "" {
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdminToken)
				r.Get("/leads", s.handleListLeads)
				r.Get("/leads/{id}", s.handleGetLead)
				r.Post("/leads/{id}/contacted", s.handleMarkContacted)
			})
		}
	})

	return r
}
