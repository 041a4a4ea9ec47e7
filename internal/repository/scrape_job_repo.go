package repository

import (
	"context"
	"time"

	"github.com/user/catalog-service/internal/entity"
)

// ScrapeJobRepository manages the per-dispatch audit rows. Rows are created
// once, mutated once at terminal time, and never deleted.
type ScrapeJobRepository interface {
	// Create inserts a new audit row with status=processing and fills job.ID.
	Create(ctx context.Context, job *entity.ScrapeJob) error
	// MarkCompleted records the successful terminal state.
	MarkCompleted(ctx context.Context, id string, finishedAt time.Time) error
	// MarkFailed records the failed terminal state with the last error.
	MarkFailed(ctx context.Context, id string, errorLog string, attempts int, finishedAt time.Time) error
	// Recent returns the newest audit rows for the history endpoint.
	Recent(ctx context.Context, limit int) ([]*entity.ScrapeJob, error)
}
