package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds and returns the chi router with all routes configured.
// Report and scoreboard endpoints are public (identity is an unverified
// email string); only the incident listing requires the admin bearer token.
// Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, adminToken string, db dbPinger, redisClient redisPinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/v1/airquality", handlers.GetAirQuality)

	r.Get("/api/v1/actions", handlers.GetActions)
	r.Post("/api/v1/scores", handlers.SubmitScore)
	r.Patch("/api/v1/scores/name", handlers.CorrectName)
	r.Get("/api/v1/scores/history", handlers.GetHistory)
	r.Get("/api/v1/leaderboard", handlers.GetLeaderboard)

	r.Post("/api/v1/incidents", handlers.CreateIncident)
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(adminToken))
		r.Get("/api/v1/incidents", handlers.ListIncidents)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
