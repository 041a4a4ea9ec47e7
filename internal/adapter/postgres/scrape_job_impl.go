package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-service/internal/entity"
)

// ScrapeJobRepoImpl implements repository.ScrapeJobRepository on PostgreSQL.
// Rows are append-then-finalize only; nothing here deletes.
type ScrapeJobRepoImpl struct {
	db *pgxpool.Pool
}

func NewScrapeJobRepo(db *pgxpool.Pool) *ScrapeJobRepoImpl {
	return &ScrapeJobRepoImpl{db: db}
}

func (r *ScrapeJobRepoImpl) Create(ctx context.Context, job *entity.ScrapeJob) error {
	job.ID = uuid.NewString()
	query := `
		INSERT INTO scrape_jobs (id, target_url, target_type, status, started_at, attempts)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.db.Exec(ctx, query, job.ID, job.TargetURL, job.TargetType, job.Status, job.StartedAt, job.Attempts)
	return err
}

func (r *ScrapeJobRepoImpl) MarkCompleted(ctx context.Context, id string, finishedAt time.Time) error {
	query := `UPDATE scrape_jobs SET status = $2, finished_at = $3 WHERE id = $1;`
	_, err := r.db.Exec(ctx, query, id, entity.JobStatusCompleted, finishedAt)
	return err
}

func (r *ScrapeJobRepoImpl) MarkFailed(ctx context.Context, id string, errorLog string, attempts int, finishedAt time.Time) error {
	query := `UPDATE scrape_jobs SET status = $2, finished_at = $3, error_log = $4, attempts = $5 WHERE id = $1;`
	_, err := r.db.Exec(ctx, query, id, entity.JobStatusFailed, finishedAt, errorLog, attempts)
	return err
}

func (r *ScrapeJobRepoImpl) Recent(ctx context.Context, limit int) ([]*entity.ScrapeJob, error) {
	query := `
		SELECT id, target_url, target_type, status, started_at, finished_at, attempts, error_log
		FROM scrape_jobs
		ORDER BY started_at DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*entity.ScrapeJob
	for rows.Next() {
		var j entity.ScrapeJob
		if err := rows.Scan(&j.ID, &j.TargetURL, &j.TargetType, &j.Status, &j.StartedAt, &j.FinishedAt, &j.Attempts, &j.ErrorLog); err != nil {
			return nil, err
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}
