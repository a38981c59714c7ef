package client

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// RateLimiter - ограничитель исходящих REST запросов.
// После ответа 429 блокирует запросы на время Retry-After.
type RateLimiter struct {
	limiter *rate.Limiter
	clock   clockwork.Clock
	normal  rate.Limit
	mu      sync.Mutex
	unblock clockwork.Timer
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return NewRateLimiterWithClock(limit, burst, clockwork.NewRealClock())
}

func NewRateLimiterWithClock(limit rate.Limit, burst int, clock clockwork.Clock) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		clock:   clock,
		normal:  limit,
	}
}

func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// Blocked - запросы сейчас заблокированы после 429
func (rl *RateLimiter) Blocked() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.unblock != nil
}

func (rl *RateLimiter) BlockFor(duration time.Duration) {
	if duration <= 0 {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.limiter.SetLimit(0)
	if rl.unblock != nil {
		rl.unblock.Stop()
	}
	var timer clockwork.Timer
	timer = rl.clock.AfterFunc(duration, func() {
		rl.mu.Lock()
		defer rl.mu.Unlock()
		// повторная блокировка могла заменить таймер
		if rl.unblock != timer {
			return
		}
		rl.limiter.SetLimit(rl.normal)
		rl.unblock = nil
	})
	rl.unblock = timer
}

func ParseRetryAfter(headers http.Header) time.Duration {
	retryAfter := headers.Get("Retry-After")
	if retryAfter == "" {
		return time.Minute // default
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		return time.Until(t)
	}

	return time.Minute // fallback
}
