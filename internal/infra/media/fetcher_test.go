package media

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"
	"time"

	"clipscribe/internal/pkg/config"
)

type stubRunner struct {
	out  string
	err  error
	name string
	args []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	s.name = name
	s.args = args
	return s.out, s.err
}

func testCfg() config.MediaConfig {
	return config.MediaConfig{
		YtdlpPath:       "yt-dlp",
		FFmpegLocation:  "/usr/bin/ffmpeg",
		MediaRoot:       "media",
		TitleTimeout:    time.Second,
		DownloadTimeout: time.Second,
	}
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestResolveTitle(t *testing.T) {
	runner := &stubRunner{out: "My Talk\n"}
	f := NewFetcher(testCfg(), runner, discard())

	title, err := f.ResolveTitle(context.Background(), "https://youtube.com/watch?v=x")
	if err != nil {
		t.Fatalf("ResolveTitle: %v", err)
	}
	if title != "My Talk" {
		t.Errorf("title = %q, want %q", title, "My Talk")
	}
	if runner.name != "yt-dlp" {
		t.Errorf("binary = %q, want yt-dlp", runner.name)
	}
	if !slices.Contains(runner.args, "--no-playlist") || !slices.Contains(runner.args, "--skip-download") {
		t.Errorf("missing expected flags in %v", runner.args)
	}
}

func TestResolveTitleFailure(t *testing.T) {
	tests := []struct {
		name   string
		runner *stubRunner
	}{
		{"command error", &stubRunner{err: errors.New("yt-dlp failed: video unavailable")}},
		{"empty title", &stubRunner{out: "  \n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(testCfg(), tt.runner, discard())
			_, err := f.ResolveTitle(context.Background(), "https://youtube.com/watch?v=x")
			if !errors.Is(err, ErrSourceUnavailable) {
				t.Errorf("error = %v, want ErrSourceUnavailable", err)
			}
		})
	}
}

func TestFetchAudio(t *testing.T) {
	root := t.TempDir()
	cfg := testCfg()
	cfg.MediaRoot = root

	runner := &stubRunner{out: "[download] progress\n" + root + "/My_Talk.mp3\n"}
	f := NewFetcher(cfg, runner, discard())

	path, err := f.FetchAudio(context.Background(), "https://youtube.com/watch?v=x")
	if err != nil {
		t.Fatalf("FetchAudio: %v", err)
	}
	if path != root+"/My_Talk.mp3" {
		t.Errorf("path = %q, want %q", path, root+"/My_Talk.mp3")
	}
	for _, flag := range []string{"--extract-audio", "--ffmpeg-location", "--restrict-filenames"} {
		if !slices.Contains(runner.args, flag) {
			t.Errorf("missing flag %s in %v", flag, runner.args)
		}
	}
}

func TestFetchAudioFailure(t *testing.T) {
	tests := []struct {
		name   string
		runner *stubRunner
	}{
		{"command error", &stubRunner{err: errors.New("yt-dlp failed: postprocessing error")}},
		{"no path reported", &stubRunner{out: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testCfg()
			cfg.MediaRoot = t.TempDir()
			f := NewFetcher(cfg, tt.runner, discard())
			_, err := f.FetchAudio(context.Background(), "https://youtube.com/watch?v=x")
			if !errors.Is(err, ErrDownloadFailed) {
				t.Errorf("error = %v, want ErrDownloadFailed", err)
			}
		})
	}
}
