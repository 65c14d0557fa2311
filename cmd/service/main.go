package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"reelscribe.dev/reel-to-text/internal/api"
	"reelscribe.dev/reel-to-text/internal/api/handlers"
	"reelscribe.dev/reel-to-text/internal/config"
	"reelscribe.dev/reel-to-text/internal/downloader"
	"reelscribe.dev/reel-to-text/internal/pipeline"
	"reelscribe.dev/reel-to-text/internal/transcoder"
	"reelscribe.dev/reel-to-text/internal/transcriber"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Temp dir creation happens once, before the listener starts, so the
	// pipeline never has to check it per request.
	if err := os.MkdirAll(cfg.Pipeline.TempDir, 0o755); err != nil {
		slog.Error("failed to create temp directory", "dir", cfg.Pipeline.TempDir, "error", err)
		os.Exit(1)
	}

	var client pipeline.Transcriber
	switch cfg.Engine {
	case config.EngineOpenAI:
		client = transcriber.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.WhisperModel, cfg.OpenAI.ChatModel)
	default:
		client = transcriber.NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	}

	p := pipeline.New(
		downloader.New(cfg.Pipeline.YtDlpPath),
		transcoder.New(cfg.Pipeline.FFmpegPath),
		client,
		cfg.Pipeline.TempDir,
		pipeline.Timeouts{
			Download:  cfg.Pipeline.DownloadTimeout,
			Transcode: cfg.Pipeline.TranscodeTimeout,
			Inference: cfg.Pipeline.InferenceTimeout,
		},
		logger,
	)

	router := api.NewRouter(handlers.NewTranscribeHandler(p, logger))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// The response is held open for the whole pipeline, so the write
		// timeout must outlast the combined stage timeouts.
		WriteTimeout: cfg.Pipeline.DownloadTimeout + cfg.Pipeline.TranscodeTimeout + cfg.Pipeline.InferenceTimeout + time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.Addr(), "engine", cfg.Engine)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
