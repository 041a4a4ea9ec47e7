package repository

import "errors"

var (
	// ErrQueueEmpty is returned by Dequeue when no job arrived within the
	// poll timeout. A normal state, not a failure.
	ErrQueueEmpty = errors.New("job queue is empty")

	// ErrExtractTimeout is returned when a page did not render within the
	// configured extraction timeout. Retryable.
	ErrExtractTimeout = errors.New("extraction timed out")

	// ErrNavigationFailed is returned when the target URL could not be
	// reached or rendered at all. Retryable.
	ErrNavigationFailed = errors.New("navigation to target failed")
)
