package retry

import (
	"time"
)

// Standard is the Retryer used when a caller replaces retry behavior for a
// whole client rather than per operation. It applies one policy uniformly.
type Standard struct {
	policy Policy
}

func NewStandard(optFns ...func(*Policy)) *Standard {
	return &Standard{policy: NewPolicy(optFns...)}
}

func (s *Standard) MaxAttempts() int {
	return s.policy.MaxAttempts
}

func (s *Standard) IsErrorRetryable(err error) bool {
	if s.policy.ShouldRetry != nil {
		return s.policy.ShouldRetry(err)
	}
	return Retryable(err, s.policy.RetryOn429)
}

// RetryDelay returns the policy's fixed delay regardless of attempt number.
func (s *Standard) RetryDelay(attempt int, opErr error) (time.Duration, error) {
	return s.policy.Backoff, nil
}

func (s *Standard) Policy() Policy {
	return s.policy
}
