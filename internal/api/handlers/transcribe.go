package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"reelscribe.dev/reel-to-text/internal/pipeline"
)

const (
	msgURLRequired    = "Instagram Reel URL is required."
	msgDownloadFailed = "Content could not be downloaded. The URL may be invalid, private, or the content is unavailable."
	msgInternalError  = "An internal server error occurred."
)

// Pipeline is the slice of the transcription pipeline the handler needs.
type Pipeline interface {
	Run(ctx context.Context, sourceURL string) (*pipeline.Result, error)
}

type TranscribeRequest struct {
	URL string `json:"url"`
}

type TranscribeResponse struct {
	SourceURL          string `json:"sourceUrl"`
	LanguageDetected   string `json:"language_detected"`
	OriginalTranscript string `json:"original_transcript"`
	EnglishTranslation string `json:"english_translation"`
}

type TranscribeHandler struct {
	pipeline Pipeline
	logger   *slog.Logger
}

func NewTranscribeHandler(p Pipeline, logger *slog.Logger) *TranscribeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscribeHandler{pipeline: p, logger: logger}
}

// Transcribe validates the request, runs the pipeline, and maps failure
// kinds to HTTP responses. Only download failures get a user-facing
// explanation; everything else collapses to a generic 500 and the raw
// model output never leaves the server.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": msgURLRequired})
		return
	}

	result, err := h.pipeline.Run(r.Context(), req.URL)
	if err != nil {
		kind, _ := pipeline.KindOf(err)
		h.logger.Error("pipeline failed", "url", req.URL, "kind", string(kind), "error", err)
		if kind == pipeline.ErrKindDownload {
			WriteJSON(w, http.StatusBadRequest, map[string]string{"error": msgDownloadFailed})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   msgInternalError,
			"details": err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, TranscribeResponse{
		SourceURL:          req.URL,
		LanguageDetected:   result.LanguageDetected,
		OriginalTranscript: result.OriginalTranscript,
		EnglishTranslation: result.EnglishTranslation,
	})
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
