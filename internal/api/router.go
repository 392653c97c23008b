package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/realitycheck-api/internal/analytics"
	apiMiddleware "github.com/phrazzld/realitycheck-api/internal/api/middleware"
	"github.com/phrazzld/realitycheck-api/internal/service"
	"github.com/phrazzld/realitycheck-api/internal/service/auth"
)

// RouterDeps are the dependencies of the HTTP router.
type RouterDeps struct {
	Logger        *slog.Logger
	Decisions     service.DecisionService
	Groups        service.GroupService
	Analytics     service.AnalyticsService
	Authenticator Authenticator
	JWTService    auth.JWTService
	Clock         analytics.Clock
	SimilarLimit  int

	// Optional.
	DB              Pinger
	RequestObserver apiMiddleware.RequestObserver
	MetricsHandler  http.Handler
	TokenLimiter    *apiMiddleware.RateLimiter
}

// NewRouter builds the chi router serving the whole API.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(deps.Logger))
	if deps.RequestObserver != nil {
		r.Use(apiMiddleware.Metrics(deps.RequestObserver))
	}
	r.Use(chimw.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.JWTService)
	authHandler := NewAuthHandler(deps.Authenticator)
	decisionHandler := NewDecisionHandler(deps.Decisions, deps.Analytics, deps.Clock, deps.SimilarLimit, deps.Logger)
	groupHandler := NewGroupHandler(deps.Groups, deps.Logger)
	analyticsHandler := NewAnalyticsHandler(deps.Analytics)

	limiter := deps.TokenLimiter
	if limiter == nil {
		limiter = apiMiddleware.NewRateLimiter(10, 5, time.Hour)
	}

	r.Route("/api", func(r chi.Router) {
		// Public
		r.With(limiter.Handler).Post("/auth/token", authHandler.IssueToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/decisions", func(r chi.Router) {
				r.Get("/", decisionHandler.ListDecisions)
				r.Post("/", decisionHandler.CreateDecision)
				r.Get("/{id}", decisionHandler.GetDecision)
				r.Put("/{id}", decisionHandler.UpdateDecision)
				r.Delete("/{id}", decisionHandler.DeleteDecision)
				r.Post("/{id}/outcome", decisionHandler.RecordOutcome)
				r.Get("/{id}/similar", decisionHandler.SimilarDecisions)
			})

			r.Get("/categories", decisionHandler.ListCategories)
			r.Get("/tags", decisionHandler.ListTags)
			r.Get("/templates", ListTemplates)
			r.Get("/templates/{id}", GetTemplate)

			r.Get("/groups", groupHandler.ListGroups)
			r.Post("/groups", groupHandler.CreateGroup)
			r.Put("/groups/{id}", groupHandler.UpdateGroup)
			r.Delete("/groups/{id}", groupHandler.DeleteGroup)

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/summary", analyticsHandler.Summary)
				r.Get("/dashboard", analyticsHandler.Dashboard)
				r.Get("/regret-buckets", analyticsHandler.RegretBuckets)
				r.Get("/categories", analyticsHandler.Categories)
				r.Get("/trends", analyticsHandler.Trends)
				r.Get("/streak", analyticsHandler.Streak)
				r.Get("/overconfidence", analyticsHandler.Overconfidence)
				r.Get("/blind-spots", analyticsHandler.BlindSpots)
				r.Get("/insights", analyticsHandler.Insights)
				r.Post("/suggestion", analyticsHandler.Suggestion)
			})
		})
	})

	r.Get("/health", HealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}
