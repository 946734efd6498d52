package api

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rngapp/rng-api/internal/api/handlers"
	"github.com/rngapp/rng-api/internal/auth"
	"github.com/rngapp/rng-api/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	db *sql.DB,
	userService services.UserServiceProvider,
	numberService services.NumberServiceProvider,
	bindingService services.BindingServiceProvider,
	lucraService services.LucraServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Open CORS: every client platform talks to this API directly.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", auth.HeaderUserID},
		MaxAge:         300,
	}))

	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	numberHandler := handlers.NewNumberHandler(numberService, lucraService)
	bindingHandler := handlers.NewBindingHandler(bindingService)
	lucraHandler := handlers.NewLucraHandler(lucraService, bindingService)
	healthHandler := handlers.NewHealthHandler(db)

	requireUser := auth.RequireUser(userService)

	r.Get("/health", healthHandler.Check)
	r.Post("/login", authHandler.Login)
	r.Post("/signup", authHandler.Signup)

	// Routes resolved from the rng-user-id header
	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/rng", numberHandler.Generate)
		r.Get("/stats", numberHandler.Stats)
		r.Get("/numbers", numberHandler.History)
		r.Post("/update-profile", userHandler.UpdateProfile)

		r.Put("/bindings", bindingHandler.Upsert)
		r.Get("/bindings", bindingHandler.List)
		r.Delete("/bindings/{type}", bindingHandler.Delete)

		r.Get("/lucra/user", lucraHandler.GetUserBinding)
		r.Put("/lucra/user", lucraHandler.UpsertUserBinding)
	})

	// Webhook surface: called by Lucra, not by end users.
	r.Post("/lucra/webhook", lucraHandler.CreateWebhookConfig)
	r.Post("/lucra/matchup-event", lucraHandler.MatchupEvent)
	r.Post("/lucra/matchup", lucraHandler.CreateMatchup)

	return r
}
