package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"clipscribe/internal/pkg/config"
	"clipscribe/internal/resilience/circuitbreaker"
	"clipscribe/internal/resilience/retry"
)

// Claude implements the Synthesizer interface using Anthropic's Claude
// API.
type Claude struct {
	client          anthropic.Client
	cfg             config.SynthesizerConfig
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	deduper         Deduper
	metricsRecorder SynthesisMetricsRecorder
}

// NewClaude creates a Claude synthesizer with circuit breaker, retry
// logic, and sentence dedup configured.
func NewClaude(cfg config.SynthesizerConfig) *Claude {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("Initialized Claude synthesizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &Claude{
		client:          anthropic.NewClient(opts...),
		cfg:             cfg,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.SynthesisAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		deduper:         SentenceDeduper{},
		metricsRecorder: NewPrometheusSynthesisMetrics(),
	}
}

// Synthesize generates an HTML blog article from the transcript using
// Claude.
func (c *Claude) Synthesize(ctx context.Context, title, transcript string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (any, error) {
			return c.doSynthesize(ctx, title, transcript)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("synthesis api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("synthesis api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		c.metricsRecorder.RecordFailure("anthropic")
		return "", fmt.Errorf("Synthesize: %w: %w", ErrSynthesisFailed, retryErr)
	}

	return ensureTitleHeader(c.deduper.Dedup(result), title), nil
}

func (c *Claude) doSynthesize(ctx context.Context, title, transcript string) (string, error) {
	prompt := buildPrompt(title, transcript)

	slog.InfoContext(ctx, "Starting article synthesis",
		slog.String("title", title),
		slog.Int("transcript_length", len(transcript)))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Article synthesis failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	content := textBlock.Text
	if content == "" {
		return "", fmt.Errorf("claude api returned empty content")
	}

	c.metricsRecorder.RecordLength("anthropic", len(content))
	c.metricsRecorder.RecordDuration("anthropic", duration)

	slog.InfoContext(ctx, "Article synthesis completed",
		slog.Int("content_length", len(content)),
		slog.Duration("duration", duration))

	return content, nil
}
