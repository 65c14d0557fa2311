// Package transcoder wraps ffmpeg for normalizing downloaded media into
// the waveform format the inference backends expect.
package transcoder

import (
	"context"
	"fmt"
	"os"

	"reelscribe.dev/reel-to-text/internal/cmdrun"
	"reelscribe.dev/reel-to-text/internal/pipeline"
)

// FFmpeg converts arbitrary input media to mono 16 kHz PCM WAV.
type FFmpeg struct {
	binPath string
	runner  cmdrun.Runner
}

func New(binPath string) *FFmpeg {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpeg{binPath: binPath, runner: cmdrun.ExecRunner{}}
}

// NewWithRunner injects a runner for tests.
func NewWithRunner(binPath string, r cmdrun.Runner) *FFmpeg {
	t := New(binPath)
	t.runner = r
	return t
}

// Transcode writes a mono 16 kHz WAV at outputPath from inputPath. The
// input file is left in place; the caller owns its lifecycle.
func (t *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath string) error {
	args := buildArgs(inputPath, outputPath)
	res, runErr := t.runner.Run(ctx, t.binPath, args...)
	if runErr != nil {
		return pipeline.NewError(pipeline.ErrKindTranscode,
			fmt.Errorf("ffmpeg: %w (%s)", runErr, cmdrun.Tail(res.Stderr, 3)))
	}
	if _, err := os.Stat(outputPath); err != nil {
		return pipeline.NewError(pipeline.ErrKindTranscode,
			fmt.Errorf("ffmpeg completed but output file is missing: %w", err))
	}
	return nil
}

func buildArgs(inputPath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outputPath,
	}
}
