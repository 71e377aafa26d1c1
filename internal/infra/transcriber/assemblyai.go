package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"clipscribe/internal/pkg/config"
	"clipscribe/internal/resilience/circuitbreaker"
	"clipscribe/internal/resilience/retry"
)

const defaultAssemblyAIBaseURL = "https://api.assemblyai.com"

// AssemblyAI implements the Transcriber interface against the AssemblyAI
// REST API: upload the audio file, create a transcript job, then poll
// until the job completes.
type AssemblyAI struct {
	cfg             config.TranscriberConfig
	baseURL         string
	httpClient      *http.Client
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	metricsRecorder TranscriptionMetricsRecorder
}

// NewAssemblyAI creates an AssemblyAI transcriber with circuit breaker
// and retry logic configured.
func NewAssemblyAI(cfg config.TranscriberConfig) *AssemblyAI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAssemblyAIBaseURL
	}

	slog.Info("Initialized AssemblyAI transcriber",
		slog.String("base_url", baseURL),
		slog.Duration("poll_interval", cfg.PollInterval))

	return &AssemblyAI{
		cfg:             cfg,
		baseURL:         baseURL,
		httpClient:      &http.Client{Timeout: 2 * time.Minute},
		circuitBreaker:  circuitbreaker.New(circuitbreaker.TranscriptionAPIConfig()),
		retryConfig:     retry.TranscriptionConfig(),
		metricsRecorder: NewPrometheusTranscriptionMetrics(),
	}
}

// Transcribe uploads the audio file and polls the transcript job until
// it completes. The whole job runs under the configured timeout.
func (a *AssemblyAI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		cbResult, err := a.circuitBreaker.Execute(func() (any, error) {
			return a.doTranscribe(ctx, audioPath)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("assemblyai circuit breaker open, request rejected",
					slog.String("service", "assemblyai-api"),
					slog.String("state", a.circuitBreaker.State().String()))
				return fmt.Errorf("assemblyai unavailable: circuit breaker open")
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		a.metricsRecorder.RecordFailure("assemblyai")
		return "", fmt.Errorf("Transcribe: %w: %w", ErrTranscriptionFailed, retryErr)
	}

	return result, nil
}

func (a *AssemblyAI) doTranscribe(ctx context.Context, audioPath string) (string, error) {
	start := time.Now()

	audioURL, err := a.upload(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}

	jobID, err := a.createJob(ctx, audioURL)
	if err != nil {
		return "", fmt.Errorf("create transcript job: %w", err)
	}

	slog.InfoContext(ctx, "transcript job created",
		slog.String("job_id", jobID),
		slog.String("audio_path", audioPath))

	text, err := a.poll(ctx, jobID)
	if err != nil {
		return "", err
	}

	duration := time.Since(start)
	a.metricsRecorder.RecordDuration("assemblyai", duration)

	slog.InfoContext(ctx, "transcription completed",
		slog.String("job_id", jobID),
		slog.Int("text_length", len(text)),
		slog.Duration("duration", duration))

	return text, nil
}

// upload streams the local file to the upload endpoint and returns the
// temporary URL that transcript jobs can reference.
func (a *AssemblyAI) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var body struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &body); err != nil {
		return "", err
	}
	if body.UploadURL == "" {
		return "", fmt.Errorf("upload response missing upload_url")
	}
	return body.UploadURL, nil
}

func (a *AssemblyAI) createJob(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(map[string]string{"audio_url": audioURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		ID string `json:"id"`
	}
	if err := a.do(req, &body); err != nil {
		return "", err
	}
	if body.ID == "" {
		return "", fmt.Errorf("transcript response missing id")
	}
	return body.ID, nil
}

// poll checks the job status on the configured interval until the job
// completes, errors, or the context expires.
func (a *AssemblyAI) poll(ctx context.Context, jobID string) (string, error) {
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v2/transcript/"+jobID, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", a.cfg.APIKey)

		var body struct {
			Status string `json:"status"`
			Text   string `json:"text"`
			Error  string `json:"error"`
		}
		if err := a.do(req, &body); err != nil {
			return "", fmt.Errorf("poll transcript %s: %w", jobID, err)
		}

		switch body.Status {
		case "completed":
			if strings.TrimSpace(body.Text) == "" {
				return "", fmt.Errorf("transcript job %s returned empty text", jobID)
			}
			return body.Text, nil
		case "error":
			return "", fmt.Errorf("transcript job %s failed: %s", jobID, body.Error)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("poll transcript %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (a *AssemblyAI) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(msg)}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
