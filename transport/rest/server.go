package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/gridtoe/pkg/handlers"
)

// NewRouter - REST routes of the match API. ready backs the readiness probe.
func NewRouter(logger *slog.Logger, gameUseCase gameUseCase, ready func(ctx context.Context) error) http.Handler {
	h := NewHandlers(logger, gameUseCase)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/ping", handlers.PingHandler)
	r.Get("/ready", handlers.ReadyHandler(ready))

	r.Route("/matches", func(r chi.Router) {
		r.Post("/", h.NewMatch)
		r.Get("/{matchID}", h.GetMatch)
		r.Post("/{matchID}/turns", h.MakeTurn)
	})

	return r
}

func Start(port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		// the computer's move is searched inside the request
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// requestLogger - access log through slog instead of chi's default logger.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("component", "rest")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"requestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}
