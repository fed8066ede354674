package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// RetryConfig holds retry configuration for database operations
type RetryConfig struct {
	MaxRetries         int
	BaseDelay          time.Duration
	MaxDelay           time.Duration
	BackoffFactor      float64
	SlowQueryThreshold time.Duration
}

// DefaultRetryConfig is used by the Postgres repositories
var DefaultRetryConfig = RetryConfig{
	MaxRetries:         3,
	BaseDelay:          100 * time.Millisecond,
	MaxDelay:           2 * time.Second,
	BackoffFactor:      2.0,
	SlowQueryThreshold: 500 * time.Millisecond,
}

// ExecuteWithRetry runs a database operation with exponential backoff using the default configuration
func ExecuteWithRetry(ctx context.Context, operation func() error) error {
	return DefaultRetryConfig.Execute(ctx, operation)
}

// Execute runs operation until it succeeds, fails with a non-retryable error or retries are exhausted
func (cfg RetryConfig) Execute(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := cfg.backoff(attempt)

			logrus.WithFields(logrus.Fields{
				"component": "Database",
				"attempt":   attempt,
				"delay":     delay,
				"error":     lastErr,
			}).Warn("Retrying database operation")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		startTime := time.Now()
		err := operation()
		duration := time.Since(startTime)

		if cfg.SlowQueryThreshold > 0 && duration > cfg.SlowQueryThreshold {
			logrus.WithFields(logrus.Fields{
				"component": "Database",
				"duration":  duration,
				"attempt":   attempt,
			}).Warn("Slow database query detected")
		}

		if err == nil {
			if attempt > 0 {
				logrus.WithFields(logrus.Fields{
					"component": "Database",
					"attempt":   attempt,
				}).Info("Database operation succeeded after retry")
			}
			return nil
		}

		lastErr = err
		if !IsRetryableError(err) {
			return err
		}
	}

	return fmt.Errorf("database operation failed after %d retries: %w", cfg.MaxRetries, lastErr)
}

func (cfg RetryConfig) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(cfg.BaseDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1)))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// retryableMessages match driver errors that carry no SQLSTATE
var retryableMessages = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"temporary failure",
	"connection lost",
	"server shutdown",
	"bad connection",
}

// IsRetryableError reports whether a database error is transient
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			// connection exception, insufficient resources, operator intervention
			return true
		case "40":
			// serialization failure, deadlock
			return true
		}
		return false
	}

	message := strings.ToLower(err.Error())
	for _, retryable := range retryableMessages {
		if strings.Contains(message, retryable) {
			return true
		}
	}
	return false
}
