package httpx

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"429", &StatusError{Service: "openai", StatusCode: 429}, true},
		{"503 wrapped", fmt.Errorf("call: %w", &StatusError{StatusCode: 503}), true},
		{"400", &StatusError{StatusCode: 400}, false},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestIsRateLimited(t *testing.T) {
	if !IsRateLimited(fmt.Errorf("x: %w", &StatusError{StatusCode: http.StatusTooManyRequests})) {
		t.Fatalf("wrapped 429 should be rate limited")
	}
	if IsRateLimited(&StatusError{StatusCode: 500}) {
		t.Fatalf("500 should not be rate limited")
	}
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 3*time.Second {
		t.Fatalf("Retry-After: want=3s got=%s", got)
	}
	resp.Header.Set("Retry-After", "60")
	if got := RetryAfterDuration(resp, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("capped: want=10s got=%s", got)
	}
	if got := RetryAfterDuration(nil, 2*time.Second, 0); got != 2*time.Second {
		t.Fatalf("fallback: want=2s got=%s", got)
	}
}

func TestJitterSleepBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := JitterSleep(10 * time.Second)
		if d < 8*time.Second || d > 12*time.Second {
			t.Fatalf("jitter out of bounds: %s", d)
		}
	}
	if JitterSleep(0) != 0 {
		t.Fatalf("JitterSleep(0) should be 0")
	}
}
