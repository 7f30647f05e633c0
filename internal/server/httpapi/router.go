package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const apiVersion = "1.0.0"

// Handler builds the full route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.accessLog)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.apiIndex)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/", s.listPublicImages)
			r.Get("/{id}", s.getImage)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/upload", s.uploadImage)
				r.Get("/my-images", s.listMyImages)
				r.Delete("/", s.deleteMyImages)
				r.Delete("/{id}", s.deleteImage)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", s.getPublicUser)
			r.Get("/profile/{id}", s.getPublicProfile)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.getMe)
				r.Get("/me/images", s.listMyImages)
				r.Put("/me", s.updateMe)
				r.Delete("/me", s.deactivateMe)
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) apiIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Images Gallery Backend API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"health":  "/health",
			"metrics": "/metrics",
			"auth":    "/api/auth",
			"users":   "/api/users",
			"images":  "/api/images",
		},
	})
}
