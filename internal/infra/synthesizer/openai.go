package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"clipscribe/internal/pkg/config"
	"clipscribe/internal/resilience/circuitbreaker"
	"clipscribe/internal/resilience/retry"
)

// OpenAI implements the Synthesizer interface against any
// OpenAI-compatible chat completion endpoint. With a custom BaseURL it
// also serves instruction-tuned open models hosted behind compatible
// gateways (Hugging Face router, vLLM, Together).
type OpenAI struct {
	client          *openai.Client
	cfg             config.SynthesizerConfig
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	deduper         Deduper
	metricsRecorder SynthesisMetricsRecorder
}

// NewOpenAI creates an OpenAI synthesizer with circuit breaker, retry
// logic, and sentence dedup configured.
func NewOpenAI(cfg config.SynthesizerConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized OpenAI synthesizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens))

	return &OpenAI{
		client:          openai.NewClientWithConfig(clientCfg),
		cfg:             cfg,
		circuitBreaker:  circuitbreaker.New(circuitbreaker.SynthesisAPIConfig()),
		retryConfig:     retry.AIAPIConfig(),
		deduper:         SentenceDeduper{},
		metricsRecorder: NewPrometheusSynthesisMetrics(),
	}
}

// Synthesize generates an HTML blog article from the transcript. The
// raw model output is run through sentence dedup and the title header
// check before being returned.
func (o *OpenAI) Synthesize(ctx context.Context, title, transcript string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (any, error) {
			return o.doSynthesize(ctx, title, transcript)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("synthesis api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("synthesis api unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		o.metricsRecorder.RecordFailure("openai")
		return "", fmt.Errorf("Synthesize: %w: %w", ErrSynthesisFailed, retryErr)
	}

	return ensureTitleHeader(o.deduper.Dedup(result), title), nil
}

func (o *OpenAI) doSynthesize(ctx context.Context, title, transcript string) (string, error) {
	prompt := buildPrompt(title, transcript)

	slog.InfoContext(ctx, "Starting article synthesis",
		slog.String("title", title),
		slog.Int("transcript_length", len(transcript)))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens: o.cfg.MaxTokens,
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Article synthesis failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("openai api returned empty response")
	}

	content := resp.Choices[0].Message.Content

	o.metricsRecorder.RecordLength("openai", len(content))
	o.metricsRecorder.RecordDuration("openai", duration)

	slog.InfoContext(ctx, "Article synthesis completed",
		slog.Int("content_length", len(content)),
		slog.Duration("duration", duration))

	return content, nil
}
