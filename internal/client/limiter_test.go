package client

import (
	"net/http"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

func TestRateLimiter_BlockFor(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewRateLimiterWithClock(rate.Inf, 1, clock)

	if limiter.Blocked() {
		t.Fatalf("new limiter must not be blocked")
	}

	limiter.BlockFor(time.Minute)
	if !limiter.Blocked() {
		t.Fatalf("limiter must be blocked after BlockFor")
	}

	clock.Advance(30 * time.Second)
	// повторный 429 продлевает блокировку
	limiter.BlockFor(time.Minute)
	clock.Advance(45 * time.Second)
	if !limiter.Blocked() {
		t.Fatalf("limiter must stay blocked until the last Retry-After expires")
	}

	clock.Advance(15 * time.Second)
	deadline := time.Now().Add(time.Second)
	for limiter.Blocked() {
		if time.Now().After(deadline) {
			t.Fatalf("limiter was not unblocked")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestParseRetryAfter(t *testing.T) {
	testCases := []struct {
		Name     string
		Value    string
		Expected time.Duration
	}{
		{Name: "Seconds #1", Value: "5", Expected: 5 * time.Second},
		{Name: "Empty #2", Value: "", Expected: time.Minute},
		{Name: "Garbage #3", Value: "soon", Expected: time.Minute},
	}
	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			headers := make(http.Header)
			if tc.Value != "" {
				headers.Set("Retry-After", tc.Value)
			}
			if got := ParseRetryAfter(headers); got != tc.Expected {
				t.Errorf("Expected %v, got %v", tc.Expected, got)
			}
		})
	}
}
