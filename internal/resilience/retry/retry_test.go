package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   10 * time.Millisecond,
		MaxDelay:       100 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff_Success(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return &HTTPError{StatusCode: 500, Message: "Server Error"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_MaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	testErr := &HTTPError{StatusCode: 503, Message: "Service Unavailable"}
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return testErr
	})

	if err == nil {
		t.Fatal("expected error after max attempts")
	}
	if !errors.Is(err, testErr) {
		t.Errorf("expected wrapped original error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	testErr := &HTTPError{StatusCode: 401, Message: "Unauthorized"}
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		attempts++
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("expected original error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := WithBackoff(ctx, fastConfig(), func() error {
		attempts++
		cancel()
		return &HTTPError{StatusCode: 500, Message: "Server Error"}
	})

	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"http 500", &HTTPError{StatusCode: 500}, true},
		{"http 503", &HTTPError{StatusCode: 503}, true},
		{"http 429", &HTTPError{StatusCode: 429}, true},
		{"http 408", &HTTPError{StatusCode: 408}, true},
		{"http 400", &HTTPError{StatusCode: 400}, false},
		{"http 401", &HTTPError{StatusCode: 401}, false},
		{"http 404", &HTTPError{StatusCode: 404}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		maxAttempts int
	}{
		{"default", DefaultConfig(), 3},
		{"ai api", AIAPIConfig(), 3},
		{"transcription", TranscriptionConfig(), 2},
		{"db", DBConfig(), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.MaxAttempts != tt.maxAttempts {
				t.Errorf("MaxAttempts = %d, want %d", tt.cfg.MaxAttempts, tt.maxAttempts)
			}
			if tt.cfg.InitialDelay <= 0 || tt.cfg.MaxDelay < tt.cfg.InitialDelay {
				t.Errorf("inconsistent delays: initial %v, max %v", tt.cfg.InitialDelay, tt.cfg.MaxDelay)
			}
		})
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{StatusCode: 502, Message: "Bad Gateway"}
	want := "HTTP 502: Bad Gateway"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for range 20 {
		got := addJitter(base, 0.5)
		if got < base || got > base+base/2 {
			t.Errorf("jitter out of range: %v", got)
		}
	}

	if got := addJitter(base, 0); got != base {
		t.Errorf("zero fraction changed duration: %v", got)
	}
}
