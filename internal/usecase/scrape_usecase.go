package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/repository"
)

// ScrapeDecision is the facade's answer to a refresh request: either the data
// was fresh and nothing happened, or exactly one job was queued.
type ScrapeDecision struct {
	Queued        bool       `json:"queued"`
	Skipped       bool       `json:"skipped"`
	ResourceID    string     `json:"resource_id,omitempty"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
}

// ScrapeService is the orchestration facade. It consults the freshness oracle
// and either answers immediately or enqueues one job; it never blocks on the
// job and only ever surfaces entity.ErrNotFound.
type ScrapeService struct {
	navigations repository.NavigationRepository
	categories  repository.CategoryRepository
	products    repository.ProductRepository
	queue       repository.QueueRepository
	cache       repository.CacheRepository
	fresh       *Freshness
	baseURL     string
	now         Clock
	logger      *zap.Logger
}

func NewScrapeService(
	navigations repository.NavigationRepository,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	queue repository.QueueRepository,
	cache repository.CacheRepository,
	fresh *Freshness,
	baseURL string,
	now Clock,
	logger *zap.Logger,
) *ScrapeService {
	if now == nil {
		now = time.Now
	}
	return &ScrapeService{
		navigations: navigations,
		categories:  categories,
		products:    products,
		queue:       queue,
		cache:       cache,
		fresh:       fresh,
		baseURL:     baseURL,
		now:         now,
		logger:      logger,
	}
}

// RefreshAll queues a full navigation scrape unconditionally. There is no
// single freshness timestamp covering every heading, so the gate is skipped.
func (s *ScrapeService) RefreshAll(ctx context.Context) (*ScrapeDecision, error) {
	if err := s.enqueue(ctx, entity.JobScrapeNavigation, entity.JobPayload{URL: s.baseURL}); err != nil {
		return nil, err
	}
	s.cache.InvalidatePattern(ctx, "navigation:*")
	return &ScrapeDecision{Queued: true}, nil
}

// RefreshNavigation refreshes the categories under one navigation heading.
func (s *ScrapeService) RefreshNavigation(ctx context.Context, slug string) (*ScrapeDecision, error) {
	nav, err := s.navigations.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.fresh.IsFresh(nav.LastScrapedAt) {
		return &ScrapeDecision{Skipped: true, ResourceID: nav.ID, LastScrapedAt: nav.LastScrapedAt}, nil
	}

	payload := entity.JobPayload{
		URL:          fmt.Sprintf("%s/%s", s.baseURL, slug),
		NavigationID: nav.ID,
	}
	if err := s.enqueue(ctx, entity.JobScrapeCategory, payload); err != nil {
		return nil, err
	}

	s.cache.InvalidatePattern(ctx, "navigation:"+slug+"*")
	return &ScrapeDecision{Queued: true, ResourceID: nav.ID}, nil
}

// RefreshCategory refreshes the product listing of one category.
func (s *ScrapeService) RefreshCategory(ctx context.Context, slug string) (*ScrapeDecision, error) {
	cat, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.fresh.IsFresh(cat.LastScrapedAt) {
		return &ScrapeDecision{Skipped: true, ResourceID: cat.ID, LastScrapedAt: cat.LastScrapedAt}, nil
	}

	payload := entity.JobPayload{
		URL:        fmt.Sprintf("%s/category/%s", s.baseURL, slug),
		CategoryID: cat.ID,
		Page:       1,
		Limit:      20,
	}
	if err := s.enqueue(ctx, entity.JobScrapeProducts, payload); err != nil {
		return nil, err
	}

	s.cache.InvalidatePattern(ctx, "category:"+slug+"*")
	return &ScrapeDecision{Queued: true, ResourceID: cat.ID}, nil
}

// RefreshProduct refreshes the detail page of one product.
func (s *ScrapeService) RefreshProduct(ctx context.Context, id string) (*ScrapeDecision, error) {
	prod, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.fresh.IsFresh(prod.LastScrapedAt) {
		return &ScrapeDecision{Skipped: true, ResourceID: prod.ID, LastScrapedAt: prod.LastScrapedAt}, nil
	}

	payload := entity.JobPayload{
		URL:       prod.SourceURL,
		ProductID: prod.ID,
	}
	if err := s.enqueue(ctx, entity.JobScrapeProductDetail, payload); err != nil {
		return nil, err
	}

	s.cache.InvalidatePattern(ctx, "product:"+id+"*")
	return &ScrapeDecision{Queued: true, ResourceID: prod.ID}, nil
}

func (s *ScrapeService) enqueue(ctx context.Context, jobType string, payload entity.JobPayload) error {
	env := &entity.JobEnvelope{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    payload,
		EnqueuedAt: s.now(),
	}
	if err := s.queue.Enqueue(ctx, env); err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}
	s.logger.Info("scrape job queued",
		zap.String("job_id", env.ID),
		zap.String("type", jobType),
		zap.String("url", payload.URL),
	)
	return nil
}
