package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/promptarena/promptarena/internal/analysis"
	"github.com/promptarena/promptarena/internal/api/handlers"
	"github.com/promptarena/promptarena/internal/api/middleware"
	"github.com/promptarena/promptarena/internal/auth"
	"github.com/promptarena/promptarena/internal/cache"
	"github.com/promptarena/promptarena/internal/config"
	"github.com/promptarena/promptarena/internal/evaluation"
	"github.com/promptarena/promptarena/internal/execution"
	"github.com/promptarena/promptarena/internal/group"
	"github.com/promptarena/promptarena/internal/llm"
	"github.com/promptarena/promptarena/internal/ratelimit"
	"github.com/promptarena/promptarena/internal/template"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORS.Origins))

	// Health and metrics (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Stores and services
	users := auth.NewUserStore(rt.db)
	keys := auth.NewAPIKeyStore(rt.db)
	tokens := auth.NewTokenIssuer(rt.cfg.Auth.JWTSecret, rt.cfg.Auth.TokenTTL)
	redisCache := cache.NewCache(rt.redis)
	limiter := ratelimit.NewLimiter(redisCache)
	authMw := auth.NewMiddleware(tokens, users, keys, limiter, rt.cfg.Auth.APIKeyHeader)

	templates := template.NewStore(rt.db).WithCache(redisCache)
	groups := group.NewStore(rt.db)
	executions := execution.NewStore(rt.db)
	recorder := execution.NewRecorder(executions, rt.llmGW)
	judge := evaluation.NewJudge(rt.llmGW)
	evaluations := evaluation.NewStore(rt.db)
	evalSvc := evaluation.NewService(evaluations, executions, templates, recorder, judge)
	tasks := analysis.NewStore(rt.db)
	analysisSvc := analysis.NewService(tasks, groups, templates, recorder)

	authH := handlers.NewAuthHandler(users, tokens)
	templateH := handlers.NewTemplateHandler(templates)
	executionH := handlers.NewExecutionHandler(executions, recorder, templates)
	evaluationH := handlers.NewEvaluationHandler(evalSvc, evaluations)
	groupH := handlers.NewGroupHandler(groups)
	analysisH := handlers.NewAnalysisHandler(analysisSvc, tasks)
	apiKeyH := handlers.NewAPIKeyHandler(keys)
	promptLibH := handlers.NewPromptLibraryHandler(rt.llmGW)
	integrationH := handlers.NewIntegrationHandler(rt.llmGW, groups, analysisSvc)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMw.Authenticate)

			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", authH.Me)
				r.Post("/change-password", authH.ChangePassword)
				r.Post("/logout", authH.Logout)
				r.With(authMw.RequireSuperuser).Post("/users", authH.CreateUser)
			})

			r.Route("/templates", func(r chi.Router) {
				r.Post("/", templateH.Create)
				r.Get("/", templateH.List)
				r.Post("/variants", templateH.Variants)
				r.Get("/{id}", templateH.Get)
				r.Put("/{id}", templateH.Update)
				r.Delete("/{id}", templateH.Delete)
			})

			r.Route("/prompts", func(r chi.Router) {
				r.Post("/execute", executionH.Execute)
				r.Get("/executions", executionH.List)
				r.Get("/executions/{id}", executionH.Get)
				r.Get("/builtin", promptLibH.Builtin)
				r.Post("/generate", promptLibH.Generate)
			})

			r.Route("/evaluations", func(r chi.Router) {
				r.Post("/", evaluationH.Create)
				r.Get("/", evaluationH.List)
				r.Post("/compare", evaluationH.Compare)
				r.Get("/{id}", evaluationH.Get)
				r.Post("/{id}/score", evaluationH.Score)
				r.Delete("/{id}", evaluationH.Delete)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", groupH.Create)
				r.Get("/", groupH.List)
				r.Get("/types", groupH.Types)
				r.Get("/{id}", groupH.Get)
				r.Put("/{id}", groupH.Update)
				r.Delete("/{id}", groupH.Delete)
				r.Get("/{id}/analyses", analysisH.ListByGroup)
			})

			r.Route("/analyses", func(r chi.Router) {
				r.Post("/", analysisH.Run)
				r.Get("/{id}", analysisH.Get)
			})

			r.Route("/api-keys", func(r chi.Router) {
				r.Use(authMw.RequireSuperuser)
				r.Post("/", apiKeyH.Create)
				r.Get("/", apiKeyH.List)
				r.Post("/validate", apiKeyH.Validate)
				r.Get("/{id}", apiKeyH.Get)
				r.Put("/{id}", apiKeyH.Update)
				r.Delete("/{id}", apiKeyH.Revoke)
			})

			r.Route("/integrations", func(r chi.Router) {
				r.Post("/browser-llm/analyze", integrationH.BrowserLLMAnalyze)
				r.Get("/browser-llm/task-types", integrationH.BrowserLLMTaskTypes)
				r.Post("/chatlog/analyze", integrationH.ChatlogAnalyze)
			})
		})
	})

	return r
}
