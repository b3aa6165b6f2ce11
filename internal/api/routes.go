package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/churchyear/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/days/today
//	GET    /api/v1/days/{date}
//	GET    /api/v1/days?start=&end=
//	GET    /api/v1/feasts/upcoming?from=&count=
//	GET    /api/v1/easter?start=&end=
//	GET    /api/v1/years/{year}/holy-days
//	GET    /api/v1/years/{year}/moveable-feasts
//	GET    /api/v1/calendar.ics?start=&end=&feasts_only=
//	GET    /api/v1/years/{year}/snapshot
//	GET    /api/v1/sanctoral
//	GET    /api/v1/sanctoral/{id}
//	POST   /api/v1/sanctoral                 (admin)
//	DELETE /api/v1/sanctoral/{id}            (admin)
//	POST   /api/v1/years/{year}/snapshot     (admin)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(logger),
		LoggingMiddleware(),
		CORSMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/days/today", handlers.GetToday)
		r.Get("/days/{date}", handlers.GetDay)
		r.Get("/days", handlers.GetDays)
		r.Get("/feasts/upcoming", handlers.GetUpcomingFeasts)
		r.Get("/easter", handlers.GetEaster)
		r.Get("/years/{year}/holy-days", handlers.GetHolyDays)
		r.Get("/years/{year}/moveable-feasts", handlers.GetMoveableFeasts)
		r.Get("/calendar.ics", handlers.GetCalendarICS)
		r.Get("/years/{year}/snapshot", handlers.GetSnapshot)
		r.Get("/sanctoral", handlers.ListSanctoral)
		r.Get("/sanctoral/{id}", handlers.GetSanctoral)

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		r.Group(func(r chi.Router) {
			r.Use(AdminOnlyMiddleware(cfg, logger))
			r.Post("/sanctoral", handlers.CreateSanctoral)
			r.Delete("/sanctoral/{id}", handlers.DeleteSanctoral)
			r.Post("/years/{year}/snapshot", handlers.CreateSnapshot)
		})
	})

	return r
}
