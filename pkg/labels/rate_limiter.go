package labels

import (
	"context"
	"sync"
	"time"

	"github.com/google/go-github/v66/github"
)

// RateLimiter paces GitHub API calls using the rate limit reported by the API
type RateLimiter interface {
	// Wait blocks until it's safe to make an API call
	Wait(ctx context.Context) error

	// UpdateLimits records the rate limit reported by the last response
	UpdateLimits(remaining int, reset time.Time)

	// GetStats returns current rate limiter statistics
	GetStats() RateLimiterStats
}

// RateLimiterStats provides statistics about rate limiter usage
type RateLimiterStats struct {
	RemainingRequests int           `json:"remaining_requests"`
	ResetTime         time.Time     `json:"reset_time"`
	TotalWaits        int64         `json:"total_waits"`
	TotalDelayTime    time.Duration `json:"total_delay_time"`
}

// RateLimiterConfig configures the rate limiter behavior
type RateLimiterConfig struct {
	// BaseDelay is the minimum delay between requests
	BaseDelay time.Duration

	// MaxDelay is the maximum delay before a single request
	MaxDelay time.Duration

	// MinRemainingRequests is the threshold below which requests are spread
	// out over the time left until the limit resets
	MinRemainingRequests int
}

// DefaultRateLimiterConfig returns a default rate limiter configuration
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		BaseDelay:            0,
		MaxDelay:             time.Minute,
		MinRemainingRequests: 50,
	}
}

// rateLimiter implements the RateLimiter interface
type rateLimiter struct {
	config *RateLimiterConfig
	mu     sync.Mutex

	remaining int
	resetTime time.Time
	lastCall  time.Time

	stats RateLimiterStats
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config *RateLimiterConfig) RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}

	return &rateLimiter{
		config:    config,
		remaining: 5000, // GitHub's default rate limit
		resetTime: time.Now().Add(time.Hour),
		now:       time.Now,
	}
}

// Wait blocks until it's safe to make an API call
func (rl *rateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	delay := rl.calculateDelay()
	if delay > 0 {
		rl.stats.TotalWaits++
		rl.stats.TotalDelayTime += delay
	}
	rl.mu.Unlock()

	if err := sleepContext(ctx, delay); err != nil {
		return err
	}

	rl.mu.Lock()
	rl.lastCall = rl.now()
	rl.mu.Unlock()
	return nil
}

// UpdateLimits records the rate limit reported by the last response
func (rl *rateLimiter) UpdateLimits(remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.remaining = remaining
	rl.resetTime = reset
	rl.stats.RemainingRequests = remaining
	rl.stats.ResetTime = reset
}

// GetStats returns current rate limiter statistics
func (rl *rateLimiter) GetStats() RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.stats
}

// calculateDelay calculates the delay needed before the next API call
func (rl *rateLimiter) calculateDelay() time.Duration {
	now := rl.now()

	var totalDelay time.Duration
	if !rl.lastCall.IsZero() {
		if since := now.Sub(rl.lastCall); since < rl.config.BaseDelay {
			totalDelay = rl.config.BaseDelay - since
		}
	}

	// If rate limit has reset, only the base spacing applies
	if now.After(rl.resetTime) {
		return totalDelay
	}

	if rl.remaining <= 0 {
		totalDelay = rl.resetTime.Sub(now)
	} else if rl.remaining < rl.config.MinRemainingRequests {
		spread := rl.resetTime.Sub(now) / time.Duration(rl.remaining+1)
		if spread > totalDelay {
			totalDelay = spread
		}
	}

	if totalDelay > rl.config.MaxDelay {
		totalDelay = rl.config.MaxDelay
	}
	return totalDelay
}

// observeResponse feeds the rate limit headers of resp into limiter
func observeResponse(limiter RateLimiter, resp *github.Response) {
	if limiter == nil || resp == nil || resp.Rate.Limit == 0 {
		return
	}
	limiter.UpdateLimits(resp.Rate.Remaining, resp.Rate.Reset.Time)
}
