// Package pipeline orchestrates the download, transcode, and transcribe
// stages for one request and guarantees temp-file cleanup on every exit
// path.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Result is the structured transcript produced by an inference backend and
// returned to the HTTP layer unchanged.
type Result struct {
	LanguageDetected   string `json:"language_detected"`
	OriginalTranscript string `json:"original_transcript"`
	EnglishTranslation string `json:"english_translation"`
}

// Downloader fetches the best audio stream for a URL into destDir, naming
// the file after jobID, and returns the downloaded file's path.
type Downloader interface {
	Download(ctx context.Context, url, destDir, jobID string) (string, error)
}

// Transcoder converts an arbitrary media file into a mono 16 kHz WAV.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// Transcriber submits a waveform file to an AI model and returns the
// structured transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// Timeouts bounds each stage. A zero value disables the bound for that
// stage; the external tools can otherwise hang indefinitely.
type Timeouts struct {
	Download  time.Duration
	Transcode time.Duration
	Inference time.Duration
}

// Pipeline runs one job per call. It holds no per-request state, so a
// single instance serves concurrent requests; jobs are namespaced by UUID.
type Pipeline struct {
	downloader  Downloader
	transcoder  Transcoder
	transcriber Transcriber
	tempDir     string
	timeouts    Timeouts
	logger      *slog.Logger
}

func New(d Downloader, t Transcoder, tr Transcriber, tempDir string, timeouts Timeouts, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		downloader:  d,
		transcoder:  t,
		transcriber: tr,
		tempDir:     tempDir,
		timeouts:    timeouts,
		logger:      logger,
	}
}

// job owns the two temporary file paths for one request.
type job struct {
	id        string
	rawPath   string
	audioPath string
}

// Run executes download → transcode → transcribe strictly in sequence.
// Whatever the outcome, both temp files are removed before Run returns.
func (p *Pipeline) Run(ctx context.Context, sourceURL string) (result *Result, err error) {
	j := &job{id: uuid.NewString()}
	j.audioPath = filepath.Join(p.tempDir, j.id+".wav")
	defer p.cleanup(j)

	log := p.logger.With("job_id", j.id)

	log.Info("downloading", "url", sourceURL)
	stageCtx, cancel := withTimeout(ctx, p.timeouts.Download)
	rawPath, err := p.downloader.Download(stageCtx, sourceURL, p.tempDir, j.id)
	cancel()
	if err != nil {
		log.Error("download failed", "error", err)
		return nil, err
	}
	j.rawPath = rawPath

	log.Info("transcoding", "input", j.rawPath)
	stageCtx, cancel = withTimeout(ctx, p.timeouts.Transcode)
	err = p.transcoder.Transcode(stageCtx, j.rawPath, j.audioPath)
	cancel()
	if err != nil {
		log.Error("transcode failed", "error", err)
		return nil, err
	}

	log.Info("transcribing")
	stageCtx, cancel = withTimeout(ctx, p.timeouts.Inference)
	result, err = p.transcriber.Transcribe(stageCtx, j.audioPath)
	cancel()
	if err != nil {
		log.Error("transcription failed", "error", err)
		var pe *Error
		if errors.As(err, &pe) && pe.Raw != "" {
			log.Debug("raw model reply", "raw", pe.Raw)
		}
		return nil, err
	}

	log.Info("job complete", "language", result.LanguageDetected)
	return result, nil
}

// cleanup removes whichever temp files exist. Removal errors are logged
// and swallowed; they must never mask the primary outcome.
func (p *Pipeline) cleanup(j *job) {
	for _, path := range []string{j.rawPath, j.audioPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("temp file cleanup failed", "job_id", j.id, "path", path, "error", err)
		}
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
