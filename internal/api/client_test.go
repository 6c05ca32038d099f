package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dl-alexandre/gdm/internal/types"
	"google.golang.org/api/googleapi"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &googleapi.Error{Code: 429}, true},
		{"internal error", &googleapi.Error{Code: 500}, true},
		{"bad gateway", &googleapi.Error{Code: 502}, true},
		{"unavailable", &googleapi.Error{Code: 503}, true},
		{"gateway timeout", &googleapi.Error{Code: 504}, true},
		{"not found", &googleapi.Error{Code: 404}, false},
		{"forbidden", &googleapi.Error{Code: 403}, false},
		{"bad request", &googleapi.Error{Code: 400}, false},
		{"non-API error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := time.Second

	t.Run("grows with attempts", func(t *testing.T) {
		err := &googleapi.Error{Code: 503}
		// Jitter is at most a quarter of the delay either way, so the
		// ranges for consecutive attempts do not overlap.
		first := calculateBackoff(base, 0, err)
		if first < 750*time.Millisecond || first > 1250*time.Millisecond {
			t.Errorf("attempt 0 backoff = %v, want ~1s", first)
		}
		third := calculateBackoff(base, 2, err)
		if third < 3*time.Second || third > 5*time.Second {
			t.Errorf("attempt 2 backoff = %v, want ~4s", third)
		}
	})

	t.Run("caps at max delay", func(t *testing.T) {
		err := &googleapi.Error{Code: 503}
		got := calculateBackoff(base, 20, err)
		if got > 40*time.Second {
			t.Errorf("backoff = %v, want capped near 32s", got)
		}
	})

	t.Run("honors Retry-After header", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "7")
		err := &googleapi.Error{Code: 429, Header: header}
		got := calculateBackoff(base, 0, err)
		if got != 7*time.Second {
			t.Errorf("backoff = %v, want 7s from Retry-After", got)
		}
	})

	t.Run("caps Retry-After at max delay", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "600")
		err := &googleapi.Error{Code: 429, Header: header}
		got := calculateBackoff(base, 0, err)
		if got != 32*time.Second {
			t.Errorf("backoff = %v, want 32s cap", got)
		}
	})
}

func TestExecuteWithRetry(t *testing.T) {
	client := NewClient(nil, 2, 1, nil)
	reqCtx := NewRequestContext("default", "", types.RequestTypeGet)

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		got, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
			calls++
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("ExecuteWithRetry() error = %v", err)
		}
		if got != "ok" || calls != 1 {
			t.Errorf("got %q after %d calls, want ok after 1", got, calls)
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		got, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
			calls++
			if calls < 3 {
				return "", &googleapi.Error{Code: 503}
			}
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("ExecuteWithRetry() error = %v", err)
		}
		if got != "ok" || calls != 3 {
			t.Errorf("got %q after %d calls, want ok after 3", got, calls)
		}
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
			calls++
			return "", &googleapi.Error{Code: 404}
		})
		if err == nil {
			t.Fatal("ExecuteWithRetry() error = nil, want error")
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := ExecuteWithRetry(context.Background(), client, reqCtx, func() (string, error) {
			calls++
			return "", &googleapi.Error{Code: 503}
		})
		if err == nil {
			t.Fatal("ExecuteWithRetry() error = nil, want error")
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
		}
	})
}

func TestNewRequestContext(t *testing.T) {
	reqCtx := NewRequestContext("work", "drive-1", types.RequestTypeMutation)

	if reqCtx.Profile != "work" || reqCtx.DriveID != "drive-1" {
		t.Errorf("RequestContext = %+v", reqCtx)
	}
	if reqCtx.RequestType != types.RequestTypeMutation {
		t.Errorf("RequestType = %v, want mutation", reqCtx.RequestType)
	}
	if reqCtx.TraceID == "" {
		t.Error("TraceID is empty")
	}

	other := NewRequestContext("work", "drive-1", types.RequestTypeMutation)
	if other.TraceID == reqCtx.TraceID {
		t.Error("TraceID not unique per request context")
	}
}
