package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"clipscribe/internal/pkg/config"
)

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.mp3")
	if err := os.WriteFile(path, []byte("fake mp3 bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func assemblyCfg(baseURL string) config.TranscriberConfig {
	return config.TranscriberConfig{
		Provider:     "assemblyai",
		APIKey:       "test-key",
		BaseURL:      baseURL,
		PollInterval: 10 * time.Millisecond,
		Timeout:      5 * time.Second,
	}
}

func TestAssemblyAITranscribe(t *testing.T) {
	var polls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization = %q, want test-key", got)
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["audio_url"] != "https://cdn.example/audio" {
				t.Errorf("audio_url = %q", body["audio_url"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "t1"})
		case r.Method == http.MethodGet && r.URL.Path == "/v2/transcript/t1":
			if polls.Add(1) < 3 {
				json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"status": "completed", "text": "hello world"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	a := NewAssemblyAI(assemblyCfg(srv.URL))

	text, err := a.Transcribe(context.Background(), writeAudioFixture(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}
	if polls.Load() < 3 {
		t.Errorf("polls = %d, want at least 3", polls.Load())
	}
}

func TestAssemblyAITranscribeJobError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			json.NewEncoder(w).Encode(map[string]string{"id": "t2"})
		default:
			json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": "unsupported codec"})
		}
	}))
	defer srv.Close()

	a := NewAssemblyAI(assemblyCfg(srv.URL))

	_, err := a.Transcribe(context.Background(), writeAudioFixture(t))
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("error = %v, want ErrTranscriptionFailed", err)
	}
}

func TestAssemblyAITranscribeEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example/audio"})
		case r.Method == http.MethodPost && r.URL.Path == "/v2/transcript":
			json.NewEncoder(w).Encode(map[string]string{"id": "t3"})
		default:
			// Silent audio: the job completes but carries no text.
			json.NewEncoder(w).Encode(map[string]string{"status": "completed", "text": ""})
		}
	}))
	defer srv.Close()

	a := NewAssemblyAI(assemblyCfg(srv.URL))

	text, err := a.Transcribe(context.Background(), writeAudioFixture(t))
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("error = %v, want ErrTranscriptionFailed", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestAssemblyAITranscribeMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when audio file is missing")
	}))
	defer srv.Close()

	a := NewAssemblyAI(assemblyCfg(srv.URL))

	_, err := a.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if !errors.Is(err, ErrTranscriptionFailed) {
		t.Errorf("error = %v, want ErrTranscriptionFailed", err)
	}
}

func TestNewByProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
	}{
		{"assemblyai", false},
		{"whisper", false},
		{"deepgram", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := assemblyCfg("")
			cfg.Provider = tt.provider
			_, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%s) error = %v, wantErr %v", tt.provider, err, tt.wantErr)
			}
		})
	}
}
