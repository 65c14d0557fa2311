// Package downloader wraps yt-dlp for fetching the best audio stream of a
// social-media video URL.
package downloader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelscribe.dev/reel-to-text/internal/cmdrun"
	"reelscribe.dev/reel-to-text/internal/pipeline"
)

const destinationMarker = "Destination: "

// YtDlp invokes the yt-dlp binary and resolves the path of the file it
// produced by parsing its destination announcements.
type YtDlp struct {
	binPath string
	runner  cmdrun.Runner
}

func New(binPath string) *YtDlp {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &YtDlp{binPath: binPath, runner: cmdrun.ExecRunner{}}
}

// NewWithRunner injects a runner for tests.
func NewWithRunner(binPath string, r cmdrun.Runner) *YtDlp {
	d := New(binPath)
	d.runner = r
	return d
}

// Download runs yt-dlp against url with an output template keyed by jobID
// and returns the path of the downloaded media file. Any subprocess
// failure, a missing destination announcement, or an announced file that
// does not exist on disk all surface as a download failure; the caller
// cannot distinguish them and should not try.
func (d *YtDlp) Download(ctx context.Context, url, destDir, jobID string) (string, error) {
	outTemplate := filepath.Join(destDir, jobID+".%(ext)s")
	args := []string{
		"--no-playlist",
		"--newline",
		"-f", "bestaudio/best",
		"-o", outTemplate,
		url,
	}

	res, runErr := d.runner.Run(ctx, d.binPath, args...)
	if runErr != nil {
		return "", pipeline.NewError(pipeline.ErrKindDownload,
			fmt.Errorf("yt-dlp: %w (%s)", runErr, cmdrun.Tail(res.Stderr, 3)))
	}

	dest := lastDestination(res.Stdout)
	if dest == "" {
		return "", pipeline.NewError(pipeline.ErrKindDownload,
			fmt.Errorf("yt-dlp exited without announcing a destination"))
	}
	if _, err := os.Stat(dest); err != nil {
		return "", pipeline.NewError(pipeline.ErrKindDownload,
			fmt.Errorf("announced file missing: %w", err))
	}
	return dest, nil
}

// lastDestination scans yt-dlp output for destination announcements, e.g.
//
//	[download] Destination: tmp/abc.m4a
//	[ExtractAudio] Destination: tmp/abc.mp3
//
// Post-processing steps announce again, so the last announcement wins.
func lastDestination(output string) string {
	var dest string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, destinationMarker)
		if idx < 0 {
			continue
		}
		if path := strings.TrimSpace(line[idx+len(destinationMarker):]); path != "" {
			dest = path
		}
	}
	return dest
}
