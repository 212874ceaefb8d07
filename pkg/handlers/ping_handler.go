package handlers

import (
	"context"
	"io"
	"net/http"
)

// PingHandler - liveness probe.
func PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "pong")
}

// ReadyHandler - readiness probe; answers 503 while check fails.
func ReadyHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if err := check(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, err.Error())
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ready")
	}
}
