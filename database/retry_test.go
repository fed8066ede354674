package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		BaseDelay:     time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := fastRetry().Execute(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := fastRetry().Execute(context.Background(), func() error {
		calls++
		return &pq.Error{Code: "23505", Message: "duplicate key value"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := fastRetry().Execute(context.Background(), func() error {
		calls++
		return &pq.Error{Code: "40P01", Message: "deadlock detected"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 2 retries")
}

func TestExecuteHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry()
	cfg.BaseDelay = time.Hour
	cfg.MaxDelay = time.Hour

	err := cfg.Execute(ctx, func() error {
		cancel()
		return errors.New("i/o timeout")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(context.DeadlineExceeded))
	assert.True(t, IsRetryableError(&pq.Error{Code: "08006"}))
	assert.True(t, IsRetryableError(&pq.Error{Code: "40001"}))
	assert.False(t, IsRetryableError(&pq.Error{Code: "42P01"}))
	assert.True(t, IsRetryableError(errors.New("driver: bad connection")))
	assert.False(t, IsRetryableError(errors.New("syntax error")))
}
