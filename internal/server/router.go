package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/storeline/storeadmin/internal/middleware"
)

// NewRouter assembles the REST surface: request logging outermost, CORS,
// then principal extraction guarding every /api route.
func NewRouter(handler *Handler, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Principal())

		r.Get("/tenants", handler.ListTenants)
		r.Route("/tenants/{tenantID}/{entityType}", func(r chi.Router) {
			r.Get("/", handler.List)
			r.Post("/", handler.Create)
			r.Delete("/", handler.Destroy)
			r.Get("/export", handler.Export)
			r.Put("/{id}", handler.Update)
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	return corsHandler.Handler(r)
}
