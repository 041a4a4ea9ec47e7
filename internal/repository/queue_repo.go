package repository

import (
	"context"
	"time"

	"github.com/user/catalog-service/internal/entity"
)

// QueueRepository is a durable at-least-once job queue. Duplicate delivery is
// possible after a crash; consumers must be idempotent. No ordering guarantee
// across jobs beyond FIFO within the ready list.
type QueueRepository interface {
	// Enqueue pushes an envelope onto the ready list.
	Enqueue(ctx context.Context, env *entity.JobEnvelope) error
	// Dequeue blocks up to timeout for the next envelope and returns
	// ErrQueueEmpty when none arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*entity.JobEnvelope, error)
	// Requeue schedules a redelivery after delay, with env.Attempt already
	// incremented by the caller.
	Requeue(ctx context.Context, env *entity.JobEnvelope, delay time.Duration) error
	// PromoteDue moves delayed envelopes whose backoff has elapsed onto the
	// ready list and reports how many were promoted.
	PromoteDue(ctx context.Context) (int, error)
	// Bury moves an envelope to the dead-letter list, its terminal state.
	Bury(ctx context.Context, env *entity.JobEnvelope) error
	// Depth returns the current ready-list length.
	Depth(ctx context.Context) (int64, error)
}
