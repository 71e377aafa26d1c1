// Package transcriber provides speech-to-text implementations.
// It includes adapters for the AssemblyAI REST API and Whisper-compatible
// endpoints, with circuit breaker and retry logic for reliability.
package transcriber

import (
	"context"
	"errors"
	"fmt"

	"clipscribe/internal/pkg/config"
)

// ErrTranscriptionFailed indicates the audio file could not be converted
// to text, whether from an upload failure, a rejected job, or a timeout.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Transcriber converts an audio file on disk into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// New creates a Transcriber for the configured provider.
func New(cfg config.TranscriberConfig) (Transcriber, error) {
	switch cfg.Provider {
	case "assemblyai":
		return NewAssemblyAI(cfg), nil
	case "whisper":
		return NewWhisper(cfg), nil
	default:
		return nil, fmt.Errorf("unknown transcriber provider: %s", cfg.Provider)
	}
}
