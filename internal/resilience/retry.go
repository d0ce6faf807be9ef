// Package resilience provides retry with exponential backoff and
// transient-error classification for database round-trips.
package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (including the first try).
	// A value of 1 means no retries. Default: 4.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration. Default: 5s.
	MaxBackoff time.Duration

	// Multiplier scales the backoff after each attempt. Default: 2.5.
	Multiplier float64

	// ShouldRetry decides whether an error is worth another attempt.
	// If nil, IsConnectionError is used.
	ShouldRetry func(err error) bool

	// OnRetry is called before each retry sleep with attempt number and error.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the retry schedule used by the write fan-out:
// three retries at 1s, 2.5s and 5s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.5,
	}
}

// Do executes fn, retrying on errors accepted by ShouldRetry. Context
// cancellation stops retries immediately and returns the last error.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	cfg = applyDefaults(cfg)

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsConnectionError
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return lastErr
		}

		if !shouldRetry(lastErr) {
			return lastErr
		}

		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

func applyDefaults(cfg RetryConfig) RetryConfig {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.5
	}
	return cfg
}

func backoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	return time.Duration(delay)
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(component, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("component", component),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
