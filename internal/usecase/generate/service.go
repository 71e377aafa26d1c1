// Package generate orchestrates the article generation pipeline:
// resolve the video title, download the audio, transcribe it, synthesize
// an HTML article, and persist the result for the requesting user.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"clipscribe/internal/domain/entity"
	"clipscribe/internal/infra/synthesizer"
	"clipscribe/internal/infra/transcriber"
	"clipscribe/internal/observability/tracing"
	"clipscribe/internal/repository"
)

// MediaFetcher resolves video metadata and downloads audio.
type MediaFetcher interface {
	ResolveTitle(ctx context.Context, url string) (string, error)
	FetchAudio(ctx context.Context, url string) (string, error)
}

// Service runs the generation pipeline. Each request blocks through the
// whole chain; any stage failure aborts the request and nothing is
// persisted.
type Service struct {
	fetcher     MediaFetcher
	transcriber transcriber.Transcriber
	synthesizer synthesizer.Synthesizer
	articles    repository.ArticleRepository
	metrics     PipelineMetricsRecorder
}

// NewService creates a generation service.
func NewService(
	fetcher MediaFetcher,
	trans transcriber.Transcriber,
	synth synthesizer.Synthesizer,
	articles repository.ArticleRepository,
) *Service {
	return &Service{
		fetcher:     fetcher,
		transcriber: trans,
		synthesizer: synth,
		articles:    articles,
		metrics:     NewPrometheusPipelineMetrics(),
	}
}

// Generate runs the full pipeline for the given link on behalf of
// userID and returns the persisted article. Failures are terminal: no
// retries at this level, no partial article rows.
func (s *Service) Generate(ctx context.Context, userID int64, link string) (*entity.Article, error) {
	if err := entity.ValidateLink(link); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	ctx, span := tracing.GetTracer().Start(ctx, "generate.pipeline",
		trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	start := time.Now()

	title, err := s.stage(ctx, "resolve_title", func(ctx context.Context) (string, error) {
		return s.fetcher.ResolveTitle(ctx, link)
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	audioPath, err := s.stage(ctx, "fetch_audio", func(ctx context.Context) (string, error) {
		return s.fetcher.FetchAudio(ctx, link)
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	transcript, err := s.stage(ctx, "transcribe", func(ctx context.Context) (string, error) {
		return s.transcriber.Transcribe(ctx, audioPath)
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	content, err := s.stage(ctx, "synthesize", func(ctx context.Context) (string, error) {
		return s.synthesizer.Synthesize(ctx, title, transcript)
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	article := &entity.Article{
		UserID:      userID,
		SourceTitle: title,
		SourceLink:  link,
		Content:     content,
	}
	if _, err := s.stage(ctx, "persist", func(ctx context.Context) (string, error) {
		return "", s.articles.Create(ctx, article)
	}); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	s.metrics.RecordPipelineDuration(time.Since(start))

	slog.InfoContext(ctx, "article generated",
		slog.Int64("user_id", userID),
		slog.Int64("article_id", article.ID),
		slog.String("title", title),
		slog.Duration("duration", time.Since(start)))

	return article, nil
}

// stage runs one pipeline step under its own span and records its
// duration and outcome.
func (s *Service) stage(ctx context.Context, name string, fn func(context.Context) (string, error)) (string, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "generate."+name)
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	duration := time.Since(start)

	s.metrics.RecordStageDuration(name, duration)

	if err != nil {
		s.metrics.RecordStageFailure(name)
		span.RecordError(err)
		slog.WarnContext(ctx, "pipeline stage failed",
			slog.String("stage", name),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", err
	}

	return out, nil
}
