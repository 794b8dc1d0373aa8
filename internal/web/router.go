package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tmaziere/taskboard/internal/services"
	"github.com/tmaziere/taskboard/internal/session"
	"github.com/tmaziere/taskboard/internal/web/handlers"
	"github.com/tmaziere/taskboard/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	sessions session.Manager,
	users session.UserChecker,
	hub *websocket.Hub,
	authService services.AuthServiceProvider,
	taskService services.TaskServiceProvider,
	eventService services.EventServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessions)
	taskHandler := handlers.NewTaskHandler(taskService)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Public pages
	r.Get("/", authHandler.Index)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)
	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/logout", authHandler.Logout)

	// Session-gated pages
	r.Group(func(r chi.Router) {
		r.Use(session.RequireUser(sessions, users))

		r.Get("/dashboard", taskHandler.Dashboard)
		r.Post("/dashboard", taskHandler.CreateTask)
		r.Get("/delete/{taskID}", taskHandler.DeleteTask)
		r.Get("/edit/{taskID}", taskHandler.EditForm)
		r.Post("/edit/{taskID}", taskHandler.UpdateTask)

		// Live task-event feed for the dashboard
		r.Get("/ws", wsHandler.Serve)

		// JSON activity feed, CORS-enabled so an external dashboard can
		// poll it.
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   []string{"http://localhost:3000"},
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Get("/events", eventHandler.GetRecent)
		})
	})

	return r
}
