package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.5,
		ShouldRetry:    func(error) bool { return true },
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("conn closed")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("conn closed")
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	cfg := fastConfig()
	cfg.ShouldRetry = nil // defaults to IsConnectionError
	calls := 0
	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		return errors.New("syntax error at or near")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, fastConfig(), func(context.Context) error {
		calls++
		cancel()
		return errors.New("conn closed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, _ error) {
		attempts = append(attempts, attempt)
	}
	_ = Do(context.Background(), cfg, func(context.Context) error {
		return errors.New("conn closed")
	})
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestBackoff_Schedule(t *testing.T) {
	cfg := applyDefaults(RetryConfig{})
	assert.Equal(t, time.Second, backoff(0, cfg))
	assert.Equal(t, 2500*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 5*time.Second, backoff(2, cfg)) // capped
}
