// Package config loads the process-wide application configuration.
//
// Configuration is assembled once at startup from an optional YAML file plus
// environment variable overrides, and handed to components by injection.
// Collaborator credentials and external binary locations are never read from
// ambient globals at call time.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "clipscribe/pkg/config"
)

// AppConfig is the root configuration object for the service.
type AppConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Media       MediaConfig       `yaml:"media"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Synthesizer SynthesizerConfig `yaml:"synthesizer"`
	Auth        AuthConfig        `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address. Default ":8080".
	Addr string `yaml:"addr"`
	// ReadHeaderTimeout guards against Slowloris attacks. Default 10s.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// MediaConfig holds settings for the video/audio fetch component.
type MediaConfig struct {
	// YtdlpPath is the yt-dlp binary location. Default "yt-dlp" (resolved via PATH).
	YtdlpPath string `yaml:"ytdlp_path"`
	// FFmpegLocation is the directory or binary path handed to yt-dlp's
	// --ffmpeg-location flag. Default "/usr/bin/ffmpeg".
	FFmpegLocation string `yaml:"ffmpeg_location"`
	// MediaRoot is the shared directory audio files are written to. Default "media".
	MediaRoot string `yaml:"media_root"`
	// TitleTimeout bounds the metadata-only title lookup. Default 30s.
	TitleTimeout time.Duration `yaml:"title_timeout"`
	// DownloadTimeout bounds the full download and transcode. Default 10m.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// TranscriberConfig holds settings for the speech-to-text collaborator.
type TranscriberConfig struct {
	// Provider selects the backend: "assemblyai" or "whisper". Default "assemblyai".
	Provider string `yaml:"provider"`
	// APIKey authenticates against the transcription service.
	APIKey string `yaml:"api_key"`
	// BaseURL overrides the service endpoint. Empty means the provider default.
	BaseURL string `yaml:"base_url"`
	// PollInterval is the delay between transcript status polls (assemblyai). Default 3s.
	PollInterval time.Duration `yaml:"poll_interval"`
	// Timeout bounds a single transcription end to end. Default 15m.
	Timeout time.Duration `yaml:"timeout"`
}

// SynthesizerConfig holds settings for the text-generation collaborator.
type SynthesizerConfig struct {
	// Provider selects the backend: "openai" or "anthropic". Default "openai".
	Provider string `yaml:"provider"`
	// APIKey authenticates against the generation service.
	APIKey string `yaml:"api_key"`
	// BaseURL overrides the OpenAI-compatible endpoint. Empty means the provider default.
	BaseURL string `yaml:"base_url"`
	// Model is the instruction-tuned model identifier.
	// Default "meta-llama/Meta-Llama-3-8B-Instruct".
	Model string `yaml:"model"`
	// MaxTokens is the fixed output token budget. Default 1000.
	MaxTokens int `yaml:"max_tokens"`
	// Timeout bounds a single generation call. Default 2m.
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig holds session and credential settings.
type AuthConfig struct {
	// SessionSecret signs session cookies (HS256). Required, min 32 bytes.
	SessionSecret string `yaml:"session_secret"`
	// SessionTTL is the session lifetime. Default 24h.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// BcryptCost is the password hashing cost. Default 12.
	BcryptCost int `yaml:"bcrypt_cost"`
	// PurgeSchedule is the cron expression for expired-session cleanup.
	// Default "30 4 * * *".
	PurgeSchedule string `yaml:"purge_schedule"`
}

// Load builds the AppConfig. If CONFIG_FILE points at a YAML file it is read
// first; environment variables then override individual values. Returns an
// error if the resulting configuration is invalid (fail-closed behavior).
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- operator-controlled path
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
		},
		Media: MediaConfig{
			YtdlpPath:       "yt-dlp",
			FFmpegLocation:  "/usr/bin/ffmpeg",
			MediaRoot:       "media",
			TitleTimeout:    30 * time.Second,
			DownloadTimeout: 10 * time.Minute,
		},
		Transcriber: TranscriberConfig{
			Provider:     "assemblyai",
			PollInterval: 3 * time.Second,
			Timeout:      15 * time.Minute,
		},
		Synthesizer: SynthesizerConfig{
			Provider:  "openai",
			Model:     "meta-llama/Meta-Llama-3-8B-Instruct",
			MaxTokens: 1000,
			Timeout:   2 * time.Minute,
		},
		Auth: AuthConfig{
			SessionTTL:    24 * time.Hour,
			BcryptCost:    12,
			PurgeSchedule: "30 4 * * *",
		},
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	cfg.Server.Addr = pkgconfig.GetEnvString("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.ReadHeaderTimeout = pkgconfig.GetEnvDuration("SERVER_READ_HEADER_TIMEOUT", cfg.Server.ReadHeaderTimeout)

	cfg.Media.YtdlpPath = pkgconfig.GetEnvString("YTDLP_PATH", cfg.Media.YtdlpPath)
	cfg.Media.FFmpegLocation = pkgconfig.GetEnvString("FFMPEG_LOCATION", cfg.Media.FFmpegLocation)
	cfg.Media.MediaRoot = pkgconfig.GetEnvString("MEDIA_ROOT", cfg.Media.MediaRoot)
	cfg.Media.TitleTimeout = pkgconfig.GetEnvDuration("MEDIA_TITLE_TIMEOUT", cfg.Media.TitleTimeout)
	cfg.Media.DownloadTimeout = pkgconfig.GetEnvDuration("MEDIA_DOWNLOAD_TIMEOUT", cfg.Media.DownloadTimeout)

	cfg.Transcriber.Provider = pkgconfig.GetEnvString("TRANSCRIBER_PROVIDER", cfg.Transcriber.Provider)
	cfg.Transcriber.APIKey = pkgconfig.GetEnvString("TRANSCRIBER_API_KEY", cfg.Transcriber.APIKey)
	cfg.Transcriber.BaseURL = pkgconfig.GetEnvString("TRANSCRIBER_BASE_URL", cfg.Transcriber.BaseURL)
	cfg.Transcriber.PollInterval = pkgconfig.GetEnvDuration("TRANSCRIBER_POLL_INTERVAL", cfg.Transcriber.PollInterval)
	cfg.Transcriber.Timeout = pkgconfig.GetEnvDuration("TRANSCRIBER_TIMEOUT", cfg.Transcriber.Timeout)

	cfg.Synthesizer.Provider = pkgconfig.GetEnvString("SYNTHESIZER_PROVIDER", cfg.Synthesizer.Provider)
	cfg.Synthesizer.APIKey = pkgconfig.GetEnvString("SYNTHESIZER_API_KEY", cfg.Synthesizer.APIKey)
	cfg.Synthesizer.BaseURL = pkgconfig.GetEnvString("SYNTHESIZER_BASE_URL", cfg.Synthesizer.BaseURL)
	cfg.Synthesizer.Model = pkgconfig.GetEnvString("SYNTHESIZER_MODEL", cfg.Synthesizer.Model)
	cfg.Synthesizer.MaxTokens = pkgconfig.GetEnvInt("SYNTHESIZER_MAX_TOKENS", cfg.Synthesizer.MaxTokens)
	cfg.Synthesizer.Timeout = pkgconfig.GetEnvDuration("SYNTHESIZER_TIMEOUT", cfg.Synthesizer.Timeout)

	cfg.Auth.SessionSecret = pkgconfig.GetEnvString("SESSION_SECRET", cfg.Auth.SessionSecret)
	cfg.Auth.SessionTTL = pkgconfig.GetEnvDuration("SESSION_TTL", cfg.Auth.SessionTTL)
	cfg.Auth.BcryptCost = pkgconfig.GetEnvInt("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Auth.PurgeSchedule = pkgconfig.GetEnvString("SESSION_PURGE_SCHEDULE", cfg.Auth.PurgeSchedule)
}

// Validate checks the configuration for values the service cannot start without.
func (c *AppConfig) Validate() error {
	if c.Media.YtdlpPath == "" {
		return fmt.Errorf("media: yt-dlp path cannot be empty")
	}
	if c.Media.MediaRoot == "" {
		return fmt.Errorf("media: media root cannot be empty")
	}
	switch c.Transcriber.Provider {
	case "assemblyai", "whisper":
	default:
		return fmt.Errorf("transcriber: unknown provider %q", c.Transcriber.Provider)
	}
	if c.Transcriber.APIKey == "" {
		return fmt.Errorf("transcriber: api key must be set")
	}
	switch c.Synthesizer.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("synthesizer: unknown provider %q", c.Synthesizer.Provider)
	}
	if c.Synthesizer.APIKey == "" {
		return fmt.Errorf("synthesizer: api key must be set")
	}
	if c.Synthesizer.MaxTokens <= 0 {
		return fmt.Errorf("synthesizer: max tokens must be positive, got %d", c.Synthesizer.MaxTokens)
	}
	if len(c.Auth.SessionSecret) < 32 {
		return fmt.Errorf("auth: session secret must be at least 32 characters (256 bits)")
	}
	for _, weak := range []string{"secret", "password", "test", "admin", "default"} {
		if c.Auth.SessionSecret == weak || c.Auth.SessionSecret == weak+"123" {
			return fmt.Errorf("auth: session secret must not be a common weak value")
		}
	}
	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > 16 {
		return fmt.Errorf("auth: bcrypt cost %d out of range [10,16]", c.Auth.BcryptCost)
	}
	return nil
}
