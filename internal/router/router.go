package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"djajbladi-console/internal/config"
	"djajbladi-console/internal/handler"
	"djajbladi-console/internal/middleware"
)

func New(
	cfg *config.Config,
	guard *middleware.Guard,
	authHandler *handler.AuthHandler,
	sessionHandler *handler.SessionHandler,
	adminHandler *handler.AdminHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		// The watch stream is long-lived SSE; http.TimeoutHandler would both
		// cut it off and hide the Flusher, so it stays outside the timeout.
		api.Get("/session/watch", sessionHandler.Watch)

		api.Group(func(timed chi.Router) {
			timed.Use(middleware.Timeout(cfg.RequestTimeout))

			timed.Route("/auth", func(auth chi.Router) {
				auth.Post("/login", authHandler.Login)
				auth.Post("/register", authHandler.Register)
				auth.Post("/refresh", authHandler.Refresh)
				auth.Post("/logout", authHandler.Logout)
			})

			timed.Get("/session", sessionHandler.Current)

			timed.Route("/admin", func(admin chi.Router) {
				admin.Use(guard.RequireAdmin())

				admin.Get("/buildings", adminHandler.ListBuildings)
				admin.Post("/buildings", adminHandler.CreateBuilding)
				admin.Get("/buildings/{id}", adminHandler.GetBuilding)
				admin.Get("/batches", adminHandler.ListBatches)
				admin.Post("/batches", adminHandler.CreateBatch)
				admin.Get("/stock", adminHandler.ListStock)
				admin.Post("/stock", adminHandler.CreateStockItem)
				admin.Get("/stock/{id}", adminHandler.GetStockItem)
				admin.Get("/users", adminHandler.ListUsers)
				admin.Post("/users", adminHandler.CreateUser)
			})
		})
	})

	return r
}
