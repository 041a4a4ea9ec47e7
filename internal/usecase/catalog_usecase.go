package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/repository"
)

// Response-cache TTLs. These shape request load only; scrape freshness is
// gated separately by the Freshness oracle.
const (
	navListCacheTTL     = time.Hour
	navDetailCacheTTL   = 30 * time.Minute
	categoryCacheTTL    = 30 * time.Minute
	productCacheTTL     = 30 * time.Minute
	productListCacheTTL = 10 * time.Minute
)

// NavigationDetail is a heading with its categories.
type NavigationDetail struct {
	Navigation *entity.Navigation `json:"navigation"`
	Categories []*entity.Category `json:"categories,omitempty"`
}

// CategoryPage is a category with one page of its products.
type CategoryPage struct {
	Category   *entity.Category  `json:"category"`
	Products   []*entity.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ProductQuery narrows a product listing; Category is a slug.
type ProductQuery struct {
	Category string
	MinPrice float64
	MaxPrice float64
	Search   string
	Author   string
	Page     int
	Limit    int
}

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Products   []*entity.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// ProductView is a product with its detail, newest reviews and the
// recommended products resolved by sourceId.
type ProductView struct {
	Product     *entity.Product       `json:"product"`
	Detail      *entity.ProductDetail `json:"detail,omitempty"`
	Reviews     []*entity.Review      `json:"reviews,omitempty"`
	Recommended []*entity.Product     `json:"recommended,omitempty"`
}

// CatalogService serves the read paths cache-aside: check cache, fall
// through to the store on a miss, populate afterward. Writes never go
// through the cache.
type CatalogService struct {
	navigations repository.NavigationRepository
	categories  repository.CategoryRepository
	products    repository.ProductRepository
	details     repository.DetailRepository
	jobs        repository.ScrapeJobRepository
	history     repository.HistoryRepository
	cache       repository.CacheRepository
	logger      *zap.Logger
}

func NewCatalogService(
	navigations repository.NavigationRepository,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	details repository.DetailRepository,
	jobs repository.ScrapeJobRepository,
	history repository.HistoryRepository,
	cache repository.CacheRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		navigations: navigations,
		categories:  categories,
		products:    products,
		details:     details,
		jobs:        jobs,
		history:     history,
		cache:       cache,
		logger:      logger,
	}
}

// ListNavigation returns all navigation headings with category counts.
func (s *CatalogService) ListNavigation(ctx context.Context) ([]*entity.Navigation, error) {
	key := s.cache.BuildKey("navigation", "all")
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached []*entity.Navigation
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
	}

	navs, err := s.navigations.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, key, navs, navListCacheTTL)
	return navs, nil
}

// GetNavigation resolves a heading by slug, optionally with its categories.
func (s *CatalogService) GetNavigation(ctx context.Context, slug string, withCategories bool) (*NavigationDetail, error) {
	variant := "basic"
	if withCategories {
		variant = "with-categories"
	}
	key := s.cache.BuildKey("navigation", slug, variant)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached NavigationDetail
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	nav, err := s.navigations.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	result := &NavigationDetail{Navigation: nav}
	if withCategories {
		cats, err := s.categories.FindByNavigation(ctx, nav.ID)
		if err != nil {
			return nil, err
		}
		result.Categories = cats
	}

	s.cachePut(ctx, key, result, navDetailCacheTTL)
	return result, nil
}

// GetCategory resolves a category by slug with one page of its products.
func (s *CatalogService) GetCategory(ctx context.Context, slug string, page, limit int) (*CategoryPage, error) {
	page, limit = normalizePaging(page, limit)

	key := s.cache.BuildKey("category", slug, fmt.Sprintf("products-%d-%d", page, limit))
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached CategoryPage
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	cat, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, total, err := s.products.List(ctx, repository.ProductFilter{
		CategoryID: cat.ID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	result := &CategoryPage{
		Category:   cat,
		Products:   products,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}

	s.cachePut(ctx, key, result, categoryCacheTTL)
	return result, nil
}

// ListProducts returns a filtered product page. The filter descriptor is part
// of the cache key so identical queries collide on the same entry.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	q.Page, q.Limit = normalizePaging(q.Page, q.Limit)

	filter := repository.ProductFilter{
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Search:   q.Search,
		Author:   q.Author,
		Page:     q.Page,
		Limit:    q.Limit,
	}
	if q.Category != "" {
		cat, err := s.categories.FindBySlug(ctx, q.Category)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		if cat != nil {
			filter.CategoryID = cat.ID
		}
	}

	descriptor, _ := json.Marshal(filter)
	key := s.cache.BuildKey("products", string(descriptor),
		"page-"+strconv.Itoa(q.Page), "limit-"+strconv.Itoa(q.Limit))
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached ProductPage
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &ProductPage{
		Products:   products,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}

	s.cachePut(ctx, key, result, productListCacheTTL)
	return result, nil
}

// GetProduct returns a product with detail, newest reviews and resolved
// recommendations.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*ProductView, error) {
	key := s.cache.BuildKey("product", id, "detailed")
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached ProductView
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
	}

	prod, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &ProductView{Product: prod}

	detail, err := s.details.FindByProductID(ctx, id)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}
	if detail != nil {
		result.Detail = detail

		if len(detail.Recommendations) > 0 {
			recs := detail.Recommendations
			if len(recs) > 6 {
				recs = recs[:6]
			}
			recommended, err := s.products.FindBySourceIDs(ctx, recs)
			if err != nil {
				s.logger.Warn("failed to resolve recommendations", zap.String("product_id", id), zap.Error(err))
			} else {
				result.Recommended = recommended
			}
		}
	}

	reviews, err := s.details.Reviews(ctx, id, 20)
	if err != nil {
		return nil, err
	}
	result.Reviews = reviews

	s.cachePut(ctx, key, result, productCacheTTL)
	return result, nil
}

// ListScrapeJobs exposes the audit trail, newest first.
func (s *CatalogService) ListScrapeJobs(ctx context.Context, limit int) ([]*entity.ScrapeJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.jobs.Recent(ctx, limit)
}

// RecordView appends a browsing path to the session history.
func (s *CatalogService) RecordView(ctx context.Context, sessionID, userID string, path []string) (*entity.ViewHistory, error) {
	h := &entity.ViewHistory{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Path:      path,
	}
	if err := s.history.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ListHistory returns the newest history entries for a session.
func (s *CatalogService) ListHistory(ctx context.Context, sessionID string, limit int) ([]*entity.ViewHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.history.FindBySession(ctx, sessionID, limit)
}

func (s *CatalogService) cachePut(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("failed to marshal cache value", zap.String("key", key), zap.Error(err))
		return
	}
	s.cache.Set(ctx, key, string(raw), ttl)
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
