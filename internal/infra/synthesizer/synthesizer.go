// Package synthesizer provides AI-powered blog article generation from
// video transcripts. It includes adapters for OpenAI-compatible and
// Claude (Anthropic) APIs with reliability patterns, sentence-level
// repetition cleanup, and HTML post-processing.
package synthesizer

import (
	"context"
	"errors"
	"fmt"

	"clipscribe/internal/pkg/config"
)

// ErrSynthesisFailed indicates the generation service returned no
// usable content.
var ErrSynthesisFailed = errors.New("article synthesis failed")

// Synthesizer turns a video title and transcript into an HTML blog
// article.
type Synthesizer interface {
	Synthesize(ctx context.Context, title, transcript string) (string, error)
}

// New creates a Synthesizer for the configured provider.
func New(cfg config.SynthesizerConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg), nil
	case "anthropic":
		return NewClaude(cfg), nil
	default:
		return nil, fmt.Errorf("unknown synthesizer provider: %s", cfg.Provider)
	}
}
