package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.logger.Std(slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", s.HelloWorldHandler)

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/user/login", s.loginHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/user", s.meHandler)
			r.With(s.requireAdmin).Post("/user/register", s.registerHandler)

			r.Get("/weather", s.weatherHandler)

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/export.ics", s.exportCalendarHandler)
				r.Get("/{month}/{year}", s.resolveCalendarHandler)
				r.Post("/events", s.createEventHandler)
				r.Get("/events/{eventId}", s.getEventHandler)
				r.Post("/events/{eventId}", s.updateEventHandler)
				r.Delete("/events/{eventId}", s.deleteEventHandler)
			})

			r.Route("/todo", func(r chi.Router) {
				r.Get("/", s.getListsHandler)
				r.Post("/", s.createListHandler)
				r.Get("/{listId}", s.getListHandler)
				r.Post("/{listId}", s.updateListHandler)
				r.Delete("/{listId}", s.deleteListHandler)
				r.Post("/{listId}/items", s.createItemHandler)
				r.Get("/{listId}/items/{itemId}", s.getItemHandler)
				r.Post("/{listId}/items/{itemId}", s.updateItemHandler)
				r.Delete("/{listId}/items/{itemId}", s.deleteItemHandler)
			})
		})
	})

	return r
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	respondWithData(w, http.StatusOK, map[string]string{"message": "Hello World from Dashboard Backend!"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
