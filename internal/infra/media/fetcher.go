package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"clipscribe/internal/pkg/config"
	"clipscribe/internal/resilience/circuitbreaker"
)

var (
	// ErrSourceUnavailable indicates the link does not resolve to a
	// downloadable video (bad URL, private or removed video).
	ErrSourceUnavailable = errors.New("media source unavailable")

	// ErrDownloadFailed indicates the video exists but audio extraction
	// did not complete.
	ErrDownloadFailed = errors.New("audio download failed")
)

// Fetcher shells out to yt-dlp to resolve video titles and extract
// audio tracks as mp3 files under the configured media root.
type Fetcher struct {
	cfg    config.MediaConfig
	runner CommandRunner
	cb     *circuitbreaker.CircuitBreaker
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. A nil runner defaults to ExecRunner.
func NewFetcher(cfg config.MediaConfig, runner CommandRunner, logger *slog.Logger) *Fetcher {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Fetcher{
		cfg:    cfg,
		runner: runner,
		cb:     circuitbreaker.New(circuitbreaker.MediaFetchConfig()),
		logger: logger,
	}
}

// ResolveTitle returns the video title for url without downloading
// anything. An empty or failed lookup maps to ErrSourceUnavailable.
func (f *Fetcher) ResolveTitle(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.TitleTimeout)
	defer cancel()

	out, err := f.cb.Execute(func() (any, error) {
		return f.runner.Run(ctx, f.cfg.YtdlpPath,
			"--no-playlist",
			"--no-warnings",
			"--skip-download",
			"--print", "%(title)s",
			url,
		)
	})
	if err != nil {
		f.logger.Warn("title lookup failed", slog.String("url", url), slog.String("error", err.Error()))
		return "", fmt.Errorf("ResolveTitle: %w: %w", ErrSourceUnavailable, err)
	}

	title := strings.TrimSpace(out.(string))
	if title == "" {
		return "", fmt.Errorf("ResolveTitle: %w: empty title", ErrSourceUnavailable)
	}
	return title, nil
}

// FetchAudio downloads the best audio stream for url and converts it to
// mp3 under the media root. It returns the path of the converted file.
func (f *Fetcher) FetchAudio(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(f.cfg.MediaRoot, 0o755); err != nil {
		return "", fmt.Errorf("FetchAudio: %w: %w", ErrDownloadFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.DownloadTimeout)
	defer cancel()

	out, err := f.cb.Execute(func() (any, error) {
		return f.runner.Run(ctx, f.cfg.YtdlpPath,
			"--no-playlist",
			"--no-warnings",
			"--ffmpeg-location", f.cfg.FFmpegLocation,
			"-f", "bestaudio/best",
			"--extract-audio",
			"--audio-format", "mp3",
			"--audio-quality", "192K",
			"--restrict-filenames",
			"-o", f.cfg.MediaRoot+"/%(title)s.%(ext)s",
			"--print", "after_move:filepath",
			"--no-simulate",
			url,
		)
	})
	if err != nil {
		f.logger.Warn("audio download failed", slog.String("url", url), slog.String("error", err.Error()))
		return "", fmt.Errorf("FetchAudio: %w: %w", ErrDownloadFailed, err)
	}

	// yt-dlp prints one filepath per downloaded entry; --no-playlist
	// guarantees a single entry but the output may carry progress noise
	// on some versions, so take the last non-empty line.
	path := lastLine(out.(string))
	if path == "" {
		return "", fmt.Errorf("FetchAudio: %w: no output path reported", ErrDownloadFailed)
	}
	return path, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
