// Package server exposes the dictionary over a JSON HTTP API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/at-ishikawa/stardict/internal/config"
	"github.com/at-ishikawa/stardict/internal/speech"
)

const requestTimeout = 30 * time.Second

// NewRouter wires the API routes behind the shared middleware stack.
func NewRouter(dictionary Dictionary, synthesizer speech.Synthesizer, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	handler := NewHandler(dictionary, synthesizer, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(NewStructuredLogger(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         3600,
	}).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", handler.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/words/{word}", handler.GetWord)
		r.Get("/suggestions", handler.GetSuggestions)
		r.Get("/history", handler.GetHistory)
		r.Delete("/history", handler.DeleteHistory)
		r.Get("/speech/{word}", handler.GetSpeech)
	})
	return r
}
