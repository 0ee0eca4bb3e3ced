package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/phrazzld/wordpath-api/internal/api"
	apiMiddleware "github.com/phrazzld/wordpath-api/internal/api/middleware"
	"github.com/phrazzld/wordpath-api/internal/api/shared"
	"github.com/phrazzld/wordpath-api/internal/config"
	"github.com/phrazzld/wordpath-api/internal/metrics"
)

// routerDeps is everything newRouter needs. It is separate from application
// so the routing table can be tested with stub services.
type routerDeps struct {
	config  *config.Config
	logger  *slog.Logger
	health  func(ctx context.Context) error
	learner *api.LearnerHandler
	mastery *api.MasteryHandler
	content *api.ContentHandler
	video   *api.VideoHandler
}

// setupRouter builds the HTTP handler for the application's services.
func (app *application) setupRouter() http.Handler {
	return newRouter(routerDeps{
		config:  app.config,
		logger:  app.logger,
		health:  app.health,
		learner: api.NewLearnerHandler(app.learnerService, app.logger),
		mastery: api.NewMasteryHandler(app.masteryService, app.logger),
		content: api.NewContentHandler(app.contentService, app.logger),
		video:   api.NewVideoHandler(app.videoService, app.recommendDefaults(), app.logger),
	})
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(deps.logger))
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", apiMiddleware.TraceHeader},
		ExposedHeaders: []string{apiMiddleware.TraceHeader},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(deps.health, deps.logger))
	r.Handle("/metrics", metrics.Handler())

	timeout := time.Duration(deps.config.Server.RequestTimeoutSeconds) * time.Second
	limitWrites := httprate.LimitByIP(deps.config.RateLimit.RequestsPerMinute, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.With(limitWrites).Post("/learners", deps.learner.Register)
		r.With(limitWrites).Post("/learners/login", deps.learner.Login)

		r.Route("/learners/{learnerID}", func(r chi.Router) {
			r.With(limitWrites).Post("/quiz", deps.mastery.SubmitQuiz)
			r.Get("/words", deps.mastery.MasteredWords)
			r.With(limitWrites).Patch("/words/{wordID}", deps.mastery.SetMastery)

			r.Get("/known-words", deps.content.ListKnownWords)
			r.With(limitWrites).Post("/known-words", deps.content.AddKnownWords)

			r.Get("/recommendations/content", deps.content.RecommendByCoverage)
			r.Get("/recommendations/videos", deps.video.Recommend)
			r.Get("/videos/{videoID}/comprehension", deps.video.Comprehension)
		})

		r.Get("/recommendations/content", deps.content.RecommendByLevel)
		r.With(limitWrites).Post("/content", deps.content.Ingest)

		r.With(limitWrites).Post("/videos", deps.video.ImportVideo)
		r.Get("/videos/{videoID}/transcript", deps.video.Transcript)
		r.Get("/videos/{videoID}/tokens", deps.video.Tokens)
	})

	return r
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string `json:"status"`
}

func healthHandler(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.Error("health check failed", slog.String("error", err.Error()))
				shared.RespondWithJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
	}
}
