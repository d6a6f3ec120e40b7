package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"livedocs/internal/api"
)

func New(h *api.Handlers, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/api/v1/healthz", h.Health)
	r.Get("/api/v1/documents/{id}/participants", h.GetParticipants)

	r.Get("/ws/documents/{id}", h.DocumentWS)

	return r
}
