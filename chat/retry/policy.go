package retry

import (
	"time"
)

const (
	DefaultMaxAttempts int = 2

	DefaultBackoff time.Duration = 500 * time.Millisecond
)

// Policy is the immutable retry configuration of one logical operation.
// It is built once, by merging caller overrides over static defaults, and
// never mutated afterwards.
type Policy struct {
	// MaxAttempts is the number of retries allowed after the first attempt.
	// A hard ceiling: once an attempt number reaches it, the call fails with
	// the last classified error regardless of how it was classified.
	MaxAttempts int

	// Backoff is the fixed delay between attempts. No growth, no jitter;
	// different operations configure different fixed delays.
	Backoff time.Duration

	// RetryOn429 allows retrying HTTP 429 responses. Off by default;
	// only operations that tolerate the extra load opt in.
	RetryOn429 bool

	// HeaderOverwrites lists header names that must be re-read from the
	// current session state before every retry attempt, because a prior
	// attempt's response may have rotated them.
	HeaderOverwrites []string

	// ShouldRetry, when set, replaces the default error classification.
	ShouldRetry func(error) bool
}

// Decision is the verdict for one failed attempt.
type Decision struct {
	Retry bool

	// Delay to wait before the next attempt. Zero when Retry is false.
	Delay time.Duration

	// RefreshHeaders are the header names to re-read from session state
	// immediately before the next attempt is dispatched.
	RefreshHeaders []string
}

// NewPolicy builds a policy from defaults adjusted by optFns. Out-of-range
// values are corrected rather than rejected.
func NewPolicy(optFns ...func(*Policy)) Policy {
	p := Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
	}
	for _, fn := range optFns {
		fn(&p)
	}
	if p.MaxAttempts < 0 {
		p.MaxAttempts = 0
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	return p
}

// Evaluate decides whether the attempt numbered attempt (starting at 0)
// that failed with err should be retried under p. Pure; all mutation
// belongs to the dispatcher and the session store.
func (p Policy) Evaluate(attempt int, err error) Decision {
	if attempt >= p.MaxAttempts {
		return Decision{}
	}

	retryable := false
	if p.ShouldRetry != nil {
		retryable = p.ShouldRetry(err)
	} else {
		retryable = Retryable(err, p.RetryOn429)
	}
	if !retryable {
		return Decision{}
	}

	return Decision{
		Retry:          true,
		Delay:          p.Backoff,
		RefreshHeaders: p.HeaderOverwrites,
	}
}
