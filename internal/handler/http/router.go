package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/sitecrew/workforce-backend-go/internal/config"
	"github.com/sitecrew/workforce-backend-go/internal/handler/http/response"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/logging"
)

func NewRouter(cfg config.AppConfig, logger *slog.Logger, summaryHandler SummaryHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Schema: logging.Schema,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/monthly-summaries", func(r chi.Router) {
			r.Get("/", summaryHandler.List)
			r.Post("/generate", summaryHandler.Generate)
			r.Post("/batch", summaryHandler.GenerateBatch)
			r.Get("/export", summaryHandler.Export)
			r.Get("/export/filed", summaryHandler.ExportFiled)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", summaryHandler.GetByID)
				r.Get("/invoice", summaryHandler.Invoice)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
