package usecase

import "time"

// BackoffFunc maps a delivery attempt number (1-based for the first
// redelivery) to the delay before that redelivery.
type BackoffFunc func(attempt int) time.Duration

// RetryPolicy bounds job redeliveries. A job is delivered at most MaxAttempts
// times; when the limit is exhausted it is buried on the dead-letter list.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffFunc
}

// FixedBackoff waits the same delay before every redelivery.
func FixedBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// ExponentialBackoff doubles the base delay per attempt, capped at 32x.
func ExponentialBackoff(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		shift := attempt - 1
		if shift < 0 {
			shift = 0
		}
		if shift > 5 {
			shift = 5
		}
		return base * time.Duration(1<<shift)
	}
}
