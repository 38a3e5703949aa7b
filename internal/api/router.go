package api

import (
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/updoot/updoot-be/internal/api/handlers"
	"github.com/updoot/updoot-be/internal/auth"
	"github.com/updoot/updoot-be/internal/services"
	"github.com/updoot/updoot-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	hub *websocket.Hub,
	sessions *scs.SessionManager,
	userService services.UserServiceProvider,
	postService services.PostServiceProvider,
	voteService services.VoteServiceProvider,
	corsOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, sessions)
	postHandler := handlers.NewPostHandler(postService, voteService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r.Route("/api/v1", func(r chi.Router) {
		// Board event feed. Kept outside the session middleware: the
		// buffered session writer cannot hijack the connection for the
		// websocket upgrade.
		r.Get("/ws", wsHandler.Serve)

		// Sessions wrap the JSON API; WithUser lifts the session user
		// id into the request context for handlers and RequireAuth.
		r.Group(func(r chi.Router) {
			r.Use(sessions.LoadAndSave)
			r.Use(auth.WithUser(sessions))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", userHandler.Register)
				r.Post("/login", userHandler.Login)
				r.Post("/logout", userHandler.Logout)
				r.Get("/me", userHandler.Me)
				r.Post("/forgot-password", userHandler.ForgotPassword)
				r.Post("/change-password", userHandler.ChangePassword)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", postHandler.List)
				r.With(auth.RequireAuth).Post("/", postHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", postHandler.Get)
					r.With(auth.RequireAuth).Put("/", postHandler.Update)
					r.With(auth.RequireAuth).Delete("/", postHandler.Delete)
					r.With(auth.RequireAuth).Post("/vote", postHandler.Vote)
				})
			})
		})
	})

	return r
}
