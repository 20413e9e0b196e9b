package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/marcelovidal/padel-v1-sub001/handlers"
	"github.com/marcelovidal/padel-v1-sub001/middleware"
	"github.com/marcelovidal/padel-v1-sub001/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	matchHandler *handlers.MatchHandler,
	clubHandler *handlers.ClubHandler,
	adminHandler *handlers.AdminHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.List)
		r.Get("/{id}", playerHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", playerHandler.RegisterSelf)
			r.Post("/guest", playerHandler.RegisterGuest)
			r.Post("/{id}/claim", playerHandler.Claim)
			r.Post("/{id}/avatar", playerHandler.UploadAvatar)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.List)
		r.Get("/{id}", matchHandler.GetByID)
		r.Get("/{id}/result", matchHandler.GetResult)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", matchHandler.Create)
			r.Put("/{id}", matchHandler.Update)
			r.Delete("/{id}", matchHandler.Cancel)
			r.Post("/{id}/result", matchHandler.SubmitResult)
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.List)
		r.Get("/{id}", clubHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", clubHandler.Create)
			r.Post("/{id}/logo", clubHandler.UploadLogo)
			r.Post("/{id}/claim", clubHandler.RequestClaim)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Get("/users", adminHandler.ListUsers)
		r.Get("/claims", adminHandler.ListPendingClaims)
		r.Post("/claims/{id}", adminHandler.ResolveClaim)
	})

	router.Get("/dashboard", dashboardHandler.GetStats)

	router.Get("/ws/clubs/{id}", webSocketHandler.ServeClub)
	router.Get("/ws/matches", webSocketHandler.ServeMatches)
}
