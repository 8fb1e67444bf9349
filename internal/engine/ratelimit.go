package engine

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket refilled continuously at a per-minute rate.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	windowSeconds     float64

	tokens     float64
	lastUpdate time.Time

	totalConsumed int64
	totalWaited   time.Duration
}

// RateLimiterStatus reports current limiter state.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	Utilization     float64       `json:"utilization"`
	TimeUntilToken  time.Duration `json:"time_until_token"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
}

// NewRateLimiter creates a limiter allowing requestsPerMinute calls per
// minute, starting full.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 120
	}
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		windowSeconds:     60.0,
		tokens:            float64(requestsPerMinute),
		lastUpdate:        time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		r.refill()

		if r.tokens >= 1.0 {
			r.tokens--
			r.totalConsumed++
			r.mu.Unlock()
			return nil
		}

		waitTime := r.timeUntilToken()
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			r.mu.Lock()
			r.totalWaited += waitTime
			r.mu.Unlock()
		}
	}
}

// TryConsume takes a token without blocking and reports whether it did.
func (r *RateLimiter) TryConsume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1.0 {
		r.tokens--
		r.totalConsumed++
		return true
	}
	return false
}

// Status returns current limiter status.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	utilization := max(0, 1.0-(r.tokens/float64(r.requestsPerMinute)))

	var untilToken time.Duration
	if r.tokens < 1.0 {
		untilToken = r.timeUntilToken()
	}
	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		TokensLimit:     r.requestsPerMinute,
		Utilization:     utilization,
		TimeUntilToken:  untilToken,
		TotalConsumed:   r.totalConsumed,
		TotalWaited:     r.totalWaited,
	}
}

// timeUntilToken must be called with the lock held.
func (r *RateLimiter) timeUntilToken() time.Duration {
	refillRate := float64(r.requestsPerMinute) / r.windowSeconds
	return time.Duration((1.0-r.tokens)/refillRate*1000) * time.Millisecond
}

// refill must be called with the lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	r.lastUpdate = now

	refillRate := float64(r.requestsPerMinute) / r.windowSeconds
	r.tokens = min(r.tokens+elapsed*refillRate, float64(r.requestsPerMinute))
}

// Limited wraps an engine so every call first waits on a rate limiter.
type Limited struct {
	Engine
	limiter *RateLimiter
}

// WithRateLimit wraps e with a limiter of requestsPerMinute.
func WithRateLimit(e Engine, requestsPerMinute int) *Limited {
	return &Limited{Engine: e, limiter: NewRateLimiter(requestsPerMinute)}
}

// Recognize waits for a token, then delegates.
func (l *Limited) Recognize(ctx context.Context, image []byte, lang string, s Settings) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.Engine.Recognize(ctx, image, lang, s)
}

// Status exposes the limiter state.
func (l *Limited) Status() RateLimiterStatus {
	return l.limiter.Status()
}
