package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/evidentbank/router/internal/interceptors"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RateLimiter throttles routing requests per conversation session. A local
// token bucket per session absorbs bursts without a Redis round trip;
// Redis remains the authority once a session spreads across instances.
type RateLimiter struct {
	redis  *redis.Client
	logger *zap.Logger
	// Default limits (can be overridden per session)
	defaultRequestsPerMinute int
	defaultBurstSize         int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		redis:                    redis,
		logger:                   logger,
		defaultRequestsPerMinute: 60, // 60 requests per minute default
		defaultBurstSize:         10, // Allow burst of 10 requests
		limiters:                 make(map[string]*rate.Limiter),
	}
}

// localLimiter returns the per-session token bucket, creating one on first
// use. requestsPerMinute spread evenly gives the bucket's refill rate.
func (rl *RateLimiter) localLimiter(sessionID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limiters[sessionID]
	if !ok {
		perSecond := float64(rl.defaultRequestsPerMinute) / 60.0
		lim = rate.NewLimiter(rate.Limit(perSecond), rl.defaultBurstSize)
		rl.limiters[sessionID] = lim
	}
	return lim
}

// Middleware returns the HTTP middleware function
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sessionID, _ := ctx.Value(interceptors.SessionIDKey).(string)
		if sessionID == "" {
			sessionID = r.Header.Get("X-Session-ID")
		}
		if sessionID == "" {
			// No session to key on; rate limiting can't apply before the
			// handler assigns one, so let the request through.
			next.ServeHTTP(w, r)
			return
		}

		if !rl.localLimiter(sessionID).Allow() {
			rl.logger.Warn("local burst limit exceeded",
				zap.String("session_id", sessionID),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			rl.sendRateLimitError(w)
			return
		}

		key := fmt.Sprintf("ratelimit:session:%s", sessionID)

		allowed, remaining, resetAt := rl.checkRateLimit(ctx, key)

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.defaultRequestsPerMinute))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))

		if !allowed {
			rl.logger.Warn("rate limit exceeded",
				zap.String("session_id", sessionID),
				zap.String("path", r.URL.Path),
			)

			w.Header().Set("Retry-After", fmt.Sprintf("%d", resetAt.Unix()-time.Now().Unix()))
			rl.sendRateLimitError(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// checkRateLimit checks if the request is allowed under rate limits
func (rl *RateLimiter) checkRateLimit(ctx context.Context, key string) (allowed bool, remaining int, resetAt time.Time) {
	now := time.Now()
	window := now.Truncate(time.Minute) // 1-minute window
	windowKey := fmt.Sprintf("%s:%d", key, window.Unix())

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, time.Minute+time.Second) // Expire after window + buffer
	_, err := pipe.Exec(ctx)

	if err != nil {
		rl.logger.Error("rate limit check failed", zap.Error(err))
		// On error, allow the request (fail open)
		return true, rl.defaultRequestsPerMinute, window.Add(time.Minute)
	}

	count := incr.Val()
	remaining = rl.defaultRequestsPerMinute - int(count)
	if remaining < 0 {
		remaining = 0
	}

	resetAt = window.Add(time.Minute)
	allowed = count <= int64(rl.defaultRequestsPerMinute)

	return allowed, remaining, resetAt
}

// sendRateLimitError sends a rate limit exceeded error response
func (rl *RateLimiter) sendRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	response := map[string]interface{}{
		"error":   "rate limit exceeded",
		"message": "too many requests, retry after the rate limit window resets",
	}

	json.NewEncoder(w).Encode(response)
}

// ServeHTTP implements http.Handler interface
func (rl *RateLimiter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rl.sendRateLimitError(w)
}
