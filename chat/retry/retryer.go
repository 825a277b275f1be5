package retry

import (
	"fmt"
	"time"
)

// Retryer guides how failed attempts of one logical operation are retried.
type Retryer interface {
	IsErrorRetryable(error) bool
	MaxAttempts() int
	RetryDelay(attempt int, opErr error) (time.Duration, error)
}

// NopRetryer never retries.
type NopRetryer struct{}

func (NopRetryer) IsErrorRetryable(error) bool { return false }

func (NopRetryer) MaxAttempts() int { return 0 }

func (NopRetryer) RetryDelay(int, error) (time.Duration, error) {
	return 0, fmt.Errorf("not retrying any attempt errors")
}
