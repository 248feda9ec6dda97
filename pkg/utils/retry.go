// Package utils provides retry and log hygiene helpers shared by the seam backends.
package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig defines the configuration for retry logic using backoff/v4
type RetryConfig struct {
	MaxRetries   int           `json:"max_retries" validate:"gte=0,lte=10"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
	Jitter       bool          `json:"jitter"`
}

// DefaultRetryConfig returns the retry policy used for emergency backends.
// Delays are short because a person is waiting on the other end.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     3 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// NewExponentialBackOff creates a backoff.ExponentialBackOff from RetryConfig
func (rc RetryConfig) NewExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if rc.InitialDelay > 0 {
		b.InitialInterval = rc.InitialDelay
	}
	if rc.MaxDelay > 0 {
		b.MaxInterval = rc.MaxDelay
	}
	if rc.Multiplier > 0 {
		b.Multiplier = rc.Multiplier
	}
	if !rc.Jitter {
		b.RandomizationFactor = 0
	}
	b.MaxElapsedTime = 0
	return b
}

// Permanent marks err as not worth retrying. ExecuteWithRetryContext returns
// the wrapped error immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// ExecuteWithRetryContext runs operation until it succeeds, returns a
// Permanent error, the retry budget runs out, or ctx is done. onRetry, if
// non-nil, is called before each wait.
func ExecuteWithRetryContext(ctx context.Context, operation func() error, config RetryConfig, onRetry func(err error, next time.Duration)) error {
	maxRetries := config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(config.NewExponentialBackOff(), uint64(maxRetries)),
		ctx,
	)

	var stopErr error
	attempt := func() error {
		if err := ctx.Err(); err != nil {
			stopErr = err
			return backoff.Permanent(err)
		}
		err := operation()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			stopErr = perm.Err
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		if onRetry != nil {
			onRetry(err, next)
		}
	}

	if err := backoff.RetryNotify(attempt, b, notify); err != nil {
		if stopErr != nil {
			return stopErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("operation failed after %d retries: %w", maxRetries, err)
	}
	return nil
}

// IsRetryableError determines if an HTTP status code is retryable (429 or 5xx)
func IsRetryableError(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= 500 && statusCode <= 599)
}
