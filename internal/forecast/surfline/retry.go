package surfline

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errInvalidPolicy = errors.New("invalid retry policy")

// BackoffConfig controls exponential backoff between attempts.
type BackoffConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// RetryPolicy retries an operation while Retryable reports true, up to
// MaxAttempts attempts in total.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffConfig
	Retryable   func(error) bool
}

// DefaultRetryPolicy is three attempts with 500ms-5s exponential backoff,
// retrying transient errors only.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff: BackoffConfig{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Retryable: IsTransient,
	}
}

// Do runs op until it succeeds, returns a non-retryable error, the attempt
// ceiling is hit, or ctx is done. It returns the number of attempts made
// and the last error.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	if p.MaxAttempts < 1 || p.Backoff.InitialInterval <= 0 {
		return 0, errInvalidPolicy
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.Backoff.InitialInterval
	if p.Backoff.MaxInterval > 0 {
		eb.MaxInterval = p.Backoff.MaxInterval
	}
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.MaxAttempts-1)), ctx)

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
	return attempts, err
}
