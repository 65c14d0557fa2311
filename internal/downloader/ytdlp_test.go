package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelscribe.dev/reel-to-text/internal/cmdrun"
	"reelscribe.dev/reel-to-text/internal/pipeline"
)

type fakeRunner struct {
	run func(ctx context.Context, name string, args ...string) (cmdrun.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (cmdrun.Result, error) {
	return f.run(ctx, name, args...)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func wantDownloadKind(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	kind, ok := pipeline.KindOf(err)
	if !ok || kind != pipeline.ErrKindDownload {
		t.Fatalf("error kind = %v (tagged=%v), want %v", kind, ok, pipeline.ErrKindDownload)
	}
}

func TestDownloadResolvesAnnouncedDestination(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "job1.m4a")
	mustWriteFile(t, mediaPath, "media")

	var gotArgs []string
	d := NewWithRunner("yt-dlp", &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (cmdrun.Result, error) {
			gotArgs = append([]string{}, args...)
			return cmdrun.Result{Stdout: "[download] Destination: " + mediaPath + "\n"}, nil
		},
	})

	got, err := d.Download(context.Background(), "https://example.com/reel", dir, "job1")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != mediaPath {
		t.Fatalf("path = %q, want %q", got, mediaPath)
	}

	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "https://example.com/reel") {
		t.Fatalf("args missing url: %v", gotArgs)
	}
	if !strings.Contains(joined, filepath.Join(dir, "job1.%(ext)s")) {
		t.Fatalf("args missing output template: %v", gotArgs)
	}
	if !strings.Contains(joined, "bestaudio") {
		t.Fatalf("args missing audio format selector: %v", gotArgs)
	}
}

func TestDownloadLastAnnouncementWins(t *testing.T) {
	dir := t.TempDir()
	finalPath := filepath.Join(dir, "job2.mp3")
	mustWriteFile(t, finalPath, "audio")

	// Post-processing announces a second destination; the first file may
	// no longer exist by then.
	stdout := "[download] Destination: " + filepath.Join(dir, "job2.m4a") + "\n" +
		"[download] 100% of 1.00MiB\n" +
		"[ExtractAudio] Destination: " + finalPath + "\n"

	d := NewWithRunner("yt-dlp", &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (cmdrun.Result, error) {
			return cmdrun.Result{Stdout: stdout}, nil
		},
	})

	got, err := d.Download(context.Background(), "https://example.com/reel", dir, "job2")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if got != finalPath {
		t.Fatalf("path = %q, want %q", got, finalPath)
	}
}

func TestDownloadNoAnnouncementFails(t *testing.T) {
	d := NewWithRunner("yt-dlp", &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (cmdrun.Result, error) {
			return cmdrun.Result{Stdout: "[youtube] extracting info\n"}, nil
		},
	})

	_, err := d.Download(context.Background(), "https://example.com/reel", t.TempDir(), "job3")
	wantDownloadKind(t, err)
}

func TestDownloadAnnouncedFileMissingFails(t *testing.T) {
	dir := t.TempDir()
	d := NewWithRunner("yt-dlp", &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (cmdrun.Result, error) {
			return cmdrun.Result{Stdout: "[download] Destination: " + filepath.Join(dir, "ghost.m4a") + "\n"}, nil
		},
	})

	_, err := d.Download(context.Background(), "https://example.com/reel", dir, "job4")
	wantDownloadKind(t, err)
}

func TestDownloadProcessErrorFails(t *testing.T) {
	d := NewWithRunner("yt-dlp", &fakeRunner{
		run: func(ctx context.Context, name string, args ...string) (cmdrun.Result, error) {
			return cmdrun.Result{Stderr: "ERROR: private video", ExitCode: 1}, errors.New("exit status 1")
		},
	})

	_, err := d.Download(context.Background(), "https://example.com/reel", t.TempDir(), "job5")
	wantDownloadKind(t, err)
}

func TestLastDestinationParsing(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"none", "no announcements here\n", ""},
		{"single", "[download] Destination: tmp/a.m4a\n", "tmp/a.m4a"},
		{"last wins", "[download] Destination: tmp/a.m4a\n[ExtractAudio] Destination: tmp/a.mp3\n", "tmp/a.mp3"},
		{"empty path ignored", "[download] Destination: \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastDestination(tt.output); got != tt.want {
				t.Fatalf("lastDestination() = %q, want %q", got, tt.want)
			}
		})
	}
}
