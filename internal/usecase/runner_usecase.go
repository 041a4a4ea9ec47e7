package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/repository"
	"github.com/user/catalog-service/pkg/metrics"
)

// Runner consumes scrape jobs, invokes the extractor, reconciles results into
// the store and records the per-dispatch audit trail. Workers run in
// parallel; duplicate deliveries are safe because every upsert is keyed on
// the record's natural key.
type Runner struct {
	queue       repository.QueueRepository
	jobs        repository.ScrapeJobRepository
	extractor   repository.ExtractorRepository
	navigations repository.NavigationRepository
	categories  repository.CategoryRepository
	products    repository.ProductRepository
	details     repository.DetailRepository
	cache       repository.CacheRepository
	policy      RetryPolicy
	workers     int
	pollTimeout time.Duration
	metrics     *metrics.Metrics
	now         Clock
	logger      *zap.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// RunnerDeps bundles the runner's collaborators to keep the constructor flat.
type RunnerDeps struct {
	Queue       repository.QueueRepository
	Jobs        repository.ScrapeJobRepository
	Extractor   repository.ExtractorRepository
	Navigations repository.NavigationRepository
	Categories  repository.CategoryRepository
	Products    repository.ProductRepository
	Details     repository.DetailRepository
	Cache       repository.CacheRepository
}

func NewRunner(deps RunnerDeps, policy RetryPolicy, workers int, pollTimeout time.Duration, m *metrics.Metrics, now Clock, logger *zap.Logger) *Runner {
	if now == nil {
		now = time.Now
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		queue:       deps.Queue,
		jobs:        deps.Jobs,
		extractor:   deps.Extractor,
		navigations: deps.Navigations,
		categories:  deps.Categories,
		products:    deps.Products,
		details:     deps.Details,
		cache:       deps.Cache,
		policy:      policy,
		workers:     workers,
		pollTimeout: pollTimeout,
		metrics:     m,
		now:         now,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the worker pool and the delayed-job promoter.
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	r.wg.Add(1)
	go r.promoter()
}

// Stop signals all goroutines and waits for in-flight jobs to finish.
func (r *Runner) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.stopChan:
			return
		default:
		}
		if err := r.ProcessNext(context.Background()); err != nil && !errors.Is(err, repository.ErrQueueEmpty) {
			r.logger.Error("job processing failed", zap.Error(err))
			// A dequeue failure (queue backend down) would fail fast and
			// spin this loop; wait out the poll interval before retrying.
			select {
			case <-r.stopChan:
				return
			case <-time.After(r.pollTimeout):
			}
		}
	}
}

// promoter periodically moves delayed redeliveries whose backoff has elapsed
// back onto the ready list, and keeps the queue-depth gauge current.
func (r *Runner) promoter() {
	defer r.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if n, err := r.queue.PromoteDue(ctx); err != nil {
				r.logger.Error("failed to promote delayed jobs", zap.Error(err))
			} else if n > 0 {
				r.logger.Debug("promoted delayed jobs", zap.Int("count", n))
			}
			if r.metrics != nil {
				if depth, err := r.queue.Depth(ctx); err == nil {
					r.metrics.JobsInQueue.Set(float64(depth))
				}
			}
			cancel()
		}
	}
}

// ProcessNext pulls a single envelope from the queue and processes it.
// Returns repository.ErrQueueEmpty when no job arrived within the poll
// timeout, which is a normal state.
func (r *Runner) ProcessNext(ctx context.Context) error {
	env, err := r.queue.Dequeue(ctx, r.pollTimeout)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return err
		}
		return fmt.Errorf("failed to dequeue job: %w", err)
	}
	return r.process(ctx, env)
}

func (r *Runner) process(ctx context.Context, env *entity.JobEnvelope) error {
	start := r.now()

	// One audit row per dispatch, created as processing. Terminal update
	// happens exactly once below.
	audit := &entity.ScrapeJob{
		TargetURL:  env.Payload.URL,
		TargetType: targetTypeFor(env.Type),
		Status:     entity.JobStatusProcessing,
		StartedAt:  start,
	}
	if err := r.jobs.Create(ctx, audit); err != nil {
		// Without an audit row there is nothing to mark; let the queue
		// redeliver the envelope.
		r.requeueOrBury(ctx, env)
		return fmt.Errorf("failed to create scrape job record: %w", err)
	}
	// Attempts is bumped from the value read at row-creation time, not
	// re-read at failure time. Under concurrent retries this can under-count.
	attemptsAtCreation := audit.Attempts

	r.logger.Info("processing scrape job",
		zap.String("job_id", env.ID),
		zap.String("type", env.Type),
		zap.Int("attempt", env.Attempt),
		zap.String("url", env.Payload.URL),
	)

	recErr := r.reconcile(ctx, env)

	finished := r.now()
	if r.metrics != nil {
		r.metrics.ScrapeDuration.WithLabelValues(env.Type).Observe(finished.Sub(start).Seconds())
	}

	if recErr == nil {
		if err := r.jobs.MarkCompleted(ctx, audit.ID, finished); err != nil {
			r.logger.Error("failed to mark scrape job completed", zap.String("job_id", env.ID), zap.Error(err))
		}
		if r.metrics != nil {
			r.metrics.ScrapeJobsTotal.WithLabelValues(env.Type, "completed").Inc()
		}
		r.logger.Info("scrape job completed",
			zap.String("job_id", env.ID),
			zap.String("type", env.Type),
			zap.Int64("duration_ms", finished.Sub(start).Milliseconds()),
		)
		return nil
	}

	if err := r.jobs.MarkFailed(ctx, audit.ID, recErr.Error(), attemptsAtCreation+1, finished); err != nil {
		r.logger.Error("failed to mark scrape job failed", zap.String("job_id", env.ID), zap.Error(err))
	}
	r.logger.Warn("scrape job failed",
		zap.String("job_id", env.ID),
		zap.String("type", env.Type),
		zap.Int("attempt", env.Attempt),
		zap.Error(recErr),
	)
	r.requeueOrBury(ctx, env)
	return recErr
}

// requeueOrBury applies the retry policy to a failed delivery.
func (r *Runner) requeueOrBury(ctx context.Context, env *entity.JobEnvelope) {
	if env.Attempt+1 < r.policy.MaxAttempts {
		next := *env
		next.Attempt = env.Attempt + 1
		delay := r.policy.Backoff(next.Attempt)
		if err := r.queue.Requeue(ctx, &next, delay); err != nil {
			r.logger.Error("failed to requeue job", zap.String("job_id", env.ID), zap.Error(err))
			return
		}
		if r.metrics != nil {
			r.metrics.ScrapeJobsTotal.WithLabelValues(env.Type, "failed").Inc()
		}
		return
	}

	if err := r.queue.Bury(ctx, env); err != nil {
		r.logger.Error("failed to bury job", zap.String("job_id", env.ID), zap.Error(err))
		return
	}
	if r.metrics != nil {
		r.metrics.ScrapeJobsTotal.WithLabelValues(env.Type, "buried").Inc()
	}
	r.logger.Error("job retries exhausted, moved to dead letter",
		zap.String("job_id", env.ID),
		zap.String("type", env.Type),
		zap.Int("attempts", env.Attempt+1),
	)
}

// reconcile dispatches on the envelope type, extracts and upserts. Empty
// batches reconcile as success: a page with zero matches is indistinguishable
// from a layout change here, and the audit trail is the only signal.
func (r *Runner) reconcile(ctx context.Context, env *entity.JobEnvelope) error {
	switch env.Type {
	case entity.JobScrapeNavigation:
		return r.reconcileNavigation(ctx, env.Payload)
	case entity.JobScrapeCategory:
		return r.reconcileCategories(ctx, env.Payload)
	case entity.JobScrapeProducts:
		return r.reconcileProducts(ctx, env.Payload)
	case entity.JobScrapeProductDetail:
		return r.reconcileProductDetail(ctx, env.Payload)
	default:
		return fmt.Errorf("unknown job type %q", env.Type)
	}
}

func (r *Runner) reconcileNavigation(ctx context.Context, p entity.JobPayload) error {
	items, err := r.extractor.ExtractNavigation(ctx, p.URL)
	if err != nil {
		return fmt.Errorf("navigation extraction failed: %w", err)
	}

	scrapedAt := r.now()
	for _, item := range items {
		if err := r.navigations.Upsert(ctx, item, scrapedAt); err != nil {
			return fmt.Errorf("failed to upsert navigation %q: %w", item.Slug, err)
		}
	}

	r.cache.InvalidatePattern(ctx, "navigation:*")
	r.logger.Info("navigation reconciled", zap.Int("count", len(items)))
	return nil
}

func (r *Runner) reconcileCategories(ctx context.Context, p entity.JobPayload) error {
	items, err := r.extractor.ExtractCategories(ctx, p.URL)
	if err != nil {
		return fmt.Errorf("category extraction failed: %w", err)
	}

	scrapedAt := r.now()
	for _, item := range items {
		if err := r.categories.Upsert(ctx, p.NavigationID, item, scrapedAt); err != nil {
			return fmt.Errorf("failed to upsert category %q: %w", item.Slug, err)
		}
	}

	r.cache.InvalidatePattern(ctx, "navigation:*")
	r.cache.InvalidatePattern(ctx, "category:*")
	r.logger.Info("categories reconciled", zap.String("navigation_id", p.NavigationID), zap.Int("count", len(items)))
	return nil
}

func (r *Runner) reconcileProducts(ctx context.Context, p entity.JobPayload) error {
	items, err := r.extractor.ExtractProducts(ctx, p.URL, p.Page, p.Limit)
	if err != nil {
		return fmt.Errorf("product extraction failed: %w", err)
	}

	scrapedAt := r.now()
	for _, item := range items {
		if err := r.products.Upsert(ctx, p.CategoryID, item, scrapedAt); err != nil {
			return fmt.Errorf("failed to upsert product %q: %w", item.SourceID, err)
		}
	}

	r.cache.InvalidatePattern(ctx, "category:*")
	r.cache.InvalidatePattern(ctx, "products:*")
	r.logger.Info("products reconciled", zap.String("category_id", p.CategoryID), zap.Int("count", len(items)))
	return nil
}

func (r *Runner) reconcileProductDetail(ctx context.Context, p entity.JobPayload) error {
	prod, err := r.products.FindByID(ctx, p.ProductID)
	if err != nil {
		return fmt.Errorf("product %s not found for detail scrape: %w", p.ProductID, err)
	}

	detail, err := r.extractor.ExtractProductDetail(ctx, prod.SourceURL)
	if err != nil {
		return fmt.Errorf("product detail extraction failed: %w", err)
	}

	if err := r.details.Reconcile(ctx, prod.ID, detail, r.now()); err != nil {
		return fmt.Errorf("failed to reconcile product detail: %w", err)
	}

	r.cache.InvalidatePattern(ctx, "product:"+prod.ID+"*")
	r.logger.Info("product detail reconciled",
		zap.String("product_id", prod.ID),
		zap.Int("reviews", len(detail.Reviews)),
	)
	return nil
}

func targetTypeFor(jobType string) string {
	switch jobType {
	case entity.JobScrapeNavigation:
		return entity.TargetNavigation
	case entity.JobScrapeCategory:
		return entity.TargetCategory
	case entity.JobScrapeProducts:
		return entity.TargetProduct
	case entity.JobScrapeProductDetail:
		return entity.TargetProductDetail
	default:
		return jobType
	}
}
