package transcriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"clipscribe/internal/pkg/config"
	"clipscribe/internal/resilience/circuitbreaker"
	"clipscribe/internal/resilience/retry"
)

// Whisper implements the Transcriber interface using the OpenAI audio
// transcription endpoint. A custom BaseURL points it at any
// Whisper-compatible server (for example a local whisper.cpp instance).
type Whisper struct {
	client          *openai.Client
	cfg             config.TranscriberConfig
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	metricsRecorder TranscriptionMetricsRecorder
}

// NewWhisper creates a Whisper transcriber with circuit breaker and
// retry logic configured.
func NewWhisper(cfg config.TranscriberConfig) *Whisper {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized Whisper transcriber",
		slog.String("base_url", clientCfg.BaseURL))

	return &Whisper{
		client:          openai.NewClientWithConfig(clientCfg),
		cfg:             cfg,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.TranscriptionAPIConfig()),
		retryConfig:     retry.TranscriptionConfig(),
		metricsRecorder: NewPrometheusTranscriptionMetrics(),
	}
}

// Transcribe sends the audio file to the transcription endpoint and
// returns the recognized text.
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, w.retryConfig, func() error {
		cbResult, err := w.circuitBreaker.Execute(func() (any, error) {
			return w.doTranscribe(ctx, audioPath)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("whisper circuit breaker open, request rejected",
					slog.String("service", "whisper-api"),
					slog.String("state", w.circuitBreaker.State().String()))
				return fmt.Errorf("whisper api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		w.metricsRecorder.RecordFailure("whisper")
		return "", fmt.Errorf("Transcribe: %w: %w", ErrTranscriptionFailed, retryErr)
	}

	return result, nil
}

func (w *Whisper) doTranscribe(ctx context.Context, audioPath string) (string, error) {
	start := time.Now()

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "whisper transcription failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("whisper api error: %w", err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("whisper returned empty text")
	}

	w.metricsRecorder.RecordDuration("whisper", duration)

	slog.InfoContext(ctx, "transcription completed",
		slog.Int("text_length", len(resp.Text)),
		slog.Duration("duration", duration))

	return resp.Text, nil
}
