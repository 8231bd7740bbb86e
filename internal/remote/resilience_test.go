package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != 200*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 200ms", cfg.InitialBackoff)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %f, want 2.0", cfg.BackoffMultiplier)
	}
	if len(cfg.RetryableStatusCodes) == 0 {
		t.Error("RetryableStatusCodes should not be empty")
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        300 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}

	if got := cfg.backoff(1); got != 100*time.Millisecond {
		t.Errorf("backoff(1) = %v, want 100ms", got)
	}
	if got := cfg.backoff(2); got != 200*time.Millisecond {
		t.Errorf("backoff(2) = %v, want 200ms", got)
	}
	if got := cfg.backoff(5); got != 300*time.Millisecond {
		t.Errorf("backoff(5) = %v, want capped 300ms", got)
	}
}

func TestRetryConfig_BackoffJitterBounds(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff:    100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.5,
	}

	for i := 0; i < 50; i++ {
		got := cfg.backoff(1)
		if got < 50*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("backoff(1) = %v, want within [50ms, 150ms]", got)
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryConfig_Retryable(t *testing.T) {
	cfg := DefaultRetryConfig()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"503", &TransportError{StatusCode: http.StatusServiceUnavailable, Err: errors.New("x")}, true},
		{"404", &TransportError{StatusCode: http.StatusNotFound, Err: errors.New("x")}, false},
		{"timeout", &TransportError{Err: timeoutErr{}}, true},
		{"refused", &TransportError{Err: errors.New("connection refused")}, false},
		{"api error", &APIError{Message: "nope"}, false},
		{"canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.retryable(tt.err); got != tt.want {
				t.Errorf("retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRetryConfig_WaitCanceled(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Hour, BackoffMultiplier: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cfg.wait(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("wait() = %v, want context.Canceled", err)
	}
}
