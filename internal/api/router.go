// Package api wires the HTTP surface: the transcription endpoint, a
// health check, and a minimal embedded front end.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"reelscribe.dev/reel-to-text/internal/api/handlers"
)

//go:embed index.html
var indexHTML []byte

func NewRouter(th *handlers.TranscribeHandler) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogging)

	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/transcribe", th.Transcribe).Methods(http.MethodPost)
	r.HandleFunc("/", index).Methods(http.MethodGet)

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
