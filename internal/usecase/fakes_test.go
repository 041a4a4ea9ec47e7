package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/repository"
)

// In-memory collaborators shared by the service and runner tests.

type fakeNavRepo struct {
	bySlug  map[string]*entity.Navigation
	upserts []entity.ScrapedNavigation
	findErr error
}

func (f *fakeNavRepo) FindAll(ctx context.Context) ([]*entity.Navigation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*entity.Navigation
	for _, n := range f.bySlug {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNavRepo) FindBySlug(ctx context.Context, slug string) (*entity.Navigation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if n, ok := f.bySlug[slug]; ok {
		return n, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakeNavRepo) Upsert(ctx context.Context, item entity.ScrapedNavigation, scrapedAt time.Time) error {
	f.upserts = append(f.upserts, item)
	if f.bySlug == nil {
		f.bySlug = make(map[string]*entity.Navigation)
	}
	if existing, ok := f.bySlug[item.Slug]; ok {
		existing.Title = item.Title
		existing.LastScrapedAt = &scrapedAt
		return nil
	}
	f.bySlug[item.Slug] = &entity.Navigation{
		ID:            "nav-" + item.Slug,
		Title:         item.Title,
		Slug:          item.Slug,
		LastScrapedAt: &scrapedAt,
	}
	return nil
}

type fakeCatRepo struct {
	bySlug  map[string]*entity.Category
	upserts []entity.ScrapedCategory
}

func (f *fakeCatRepo) FindByNavigation(ctx context.Context, navigationID string) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range f.bySlug {
		if c.NavigationID == navigationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatRepo) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	if c, ok := f.bySlug[slug]; ok {
		return c, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakeCatRepo) Upsert(ctx context.Context, navigationID string, item entity.ScrapedCategory, scrapedAt time.Time) error {
	f.upserts = append(f.upserts, item)
	if f.bySlug == nil {
		f.bySlug = make(map[string]*entity.Category)
	}
	f.bySlug[item.Slug] = &entity.Category{
		ID:            "cat-" + item.Slug,
		NavigationID:  navigationID,
		Title:         item.Title,
		Slug:          item.Slug,
		ProductCount:  item.ProductCount,
		LastScrapedAt: &scrapedAt,
	}
	return nil
}

type fakeProdRepo struct {
	byID    map[string]*entity.Product
	upserts []entity.ScrapedProduct
}

func (f *fakeProdRepo) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakeProdRepo) FindBySourceIDs(ctx context.Context, sourceIDs []string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range f.byID {
		for _, sid := range sourceIDs {
			if p.SourceID == sid {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeProdRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	var out []*entity.Product
	for _, p := range f.byID {
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProdRepo) Upsert(ctx context.Context, categoryID string, item entity.ScrapedProduct, scrapedAt time.Time) error {
	f.upserts = append(f.upserts, item)
	if f.byID == nil {
		f.byID = make(map[string]*entity.Product)
	}
	id := "prod-" + item.SourceID
	f.byID[id] = &entity.Product{
		ID:            id,
		SourceID:      item.SourceID,
		CategoryID:    categoryID,
		Title:         item.Title,
		Price:         item.Price,
		SourceURL:     item.SourceURL,
		LastScrapedAt: &scrapedAt,
	}
	return nil
}

type reconcileCall struct {
	productID string
	detail    *entity.ScrapedProductDetail
}

type fakeDetailRepo struct {
	details    map[string]*entity.ProductDetail
	reviews    map[string][]*entity.Review
	reconciled []reconcileCall
}

func (f *fakeDetailRepo) FindByProductID(ctx context.Context, productID string) (*entity.ProductDetail, error) {
	if d, ok := f.details[productID]; ok {
		return d, nil
	}
	return nil, entity.ErrNotFound
}

func (f *fakeDetailRepo) Reviews(ctx context.Context, productID string, limit int) ([]*entity.Review, error) {
	revs := f.reviews[productID]
	if len(revs) > limit {
		revs = revs[:limit]
	}
	return revs, nil
}

// Reconcile mirrors the store's semantics: the detail row is upserted and a
// non-empty batch replaces the full review set, while an empty batch leaves
// the stored reviews untouched.
func (f *fakeDetailRepo) Reconcile(ctx context.Context, productID string, detail *entity.ScrapedProductDetail, scrapedAt time.Time) error {
	f.reconciled = append(f.reconciled, reconcileCall{productID: productID, detail: detail})
	if f.details == nil {
		f.details = make(map[string]*entity.ProductDetail)
	}
	f.details[productID] = &entity.ProductDetail{
		ProductID:       productID,
		Description:     detail.Description,
		Specs:           detail.Specs,
		RatingsAvg:      detail.RatingsAvg,
		ReviewsCount:    detail.ReviewsCount,
		Recommendations: detail.Recommendations,
	}
	if len(detail.Reviews) > 0 {
		if f.reviews == nil {
			f.reviews = make(map[string][]*entity.Review)
		}
		replaced := make([]*entity.Review, 0, len(detail.Reviews))
		for i, rev := range detail.Reviews {
			replaced = append(replaced, &entity.Review{
				ID:        fmt.Sprintf("rev-%d-%d", len(f.reconciled), i+1),
				ProductID: productID,
				Author:    rev.Author,
				Rating:    rev.Rating,
				Text:      rev.Text,
			})
		}
		f.reviews[productID] = replaced
	}
	return nil
}

type fakeJobRepo struct {
	rows      []*entity.ScrapeJob
	createErr error
}

func (f *fakeJobRepo) Create(ctx context.Context, job *entity.ScrapeJob) error {
	if f.createErr != nil {
		return f.createErr
	}
	job.ID = fmt.Sprintf("job-%d", len(f.rows)+1)
	f.rows = append(f.rows, job)
	return nil
}

func (f *fakeJobRepo) MarkCompleted(ctx context.Context, id string, finishedAt time.Time) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Status = entity.JobStatusCompleted
			row.FinishedAt = &finishedAt
			return nil
		}
	}
	return entity.ErrNotFound
}

func (f *fakeJobRepo) MarkFailed(ctx context.Context, id string, errorLog string, attempts int, finishedAt time.Time) error {
	for _, row := range f.rows {
		if row.ID == id {
			row.Status = entity.JobStatusFailed
			row.ErrorLog = errorLog
			row.Attempts = attempts
			row.FinishedAt = &finishedAt
			return nil
		}
	}
	return entity.ErrNotFound
}

func (f *fakeJobRepo) Recent(ctx context.Context, limit int) ([]*entity.ScrapeJob, error) {
	if len(f.rows) > limit {
		return f.rows[len(f.rows)-limit:], nil
	}
	return f.rows, nil
}

// fakeQueue keeps ready, delayed and dead envelopes in memory. Dequeue never
// blocks; PromoteDue promotes everything regardless of delay so tests can
// drive redeliveries synchronously.
type fakeQueue struct {
	ready   []*entity.JobEnvelope
	delayed []*entity.JobEnvelope
	dead    []*entity.JobEnvelope
	delays  []time.Duration
}

func (q *fakeQueue) Enqueue(ctx context.Context, env *entity.JobEnvelope) error {
	q.ready = append(q.ready, env)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context, timeout time.Duration) (*entity.JobEnvelope, error) {
	if len(q.ready) == 0 {
		return nil, repository.ErrQueueEmpty
	}
	env := q.ready[0]
	q.ready = q.ready[1:]
	return env, nil
}

func (q *fakeQueue) Requeue(ctx context.Context, env *entity.JobEnvelope, delay time.Duration) error {
	q.delayed = append(q.delayed, env)
	q.delays = append(q.delays, delay)
	return nil
}

func (q *fakeQueue) PromoteDue(ctx context.Context) (int, error) {
	n := len(q.delayed)
	q.ready = append(q.ready, q.delayed...)
	q.delayed = nil
	return n, nil
}

func (q *fakeQueue) Bury(ctx context.Context, env *entity.JobEnvelope) error {
	q.dead = append(q.dead, env)
	return nil
}

func (q *fakeQueue) Depth(ctx context.Context) (int64, error) {
	return int64(len(q.ready)), nil
}

type fakeCache struct {
	store       map[string]string
	invalidated []string
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := c.store[key]
	return v, ok
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c.store == nil {
		c.store = make(map[string]string)
	}
	c.store[key] = value
}

func (c *fakeCache) Delete(ctx context.Context, key string) {
	delete(c.store, key)
}

func (c *fakeCache) InvalidatePattern(ctx context.Context, pattern string) {
	c.invalidated = append(c.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
		}
	}
}

func (c *fakeCache) BuildKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

func (c *fakeCache) hasInvalidated(pattern string) bool {
	for _, p := range c.invalidated {
		if p == pattern {
			return true
		}
	}
	return false
}

type fakeHistoryRepo struct {
	entries []*entity.ViewHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, h *entity.ViewHistory) error {
	h.CreatedAt = time.Now()
	f.entries = append(f.entries, h)
	return nil
}

func (f *fakeHistoryRepo) FindBySession(ctx context.Context, sessionID string, limit int) ([]*entity.ViewHistory, error) {
	var out []*entity.ViewHistory
	for _, h := range f.entries {
		if h.SessionID == sessionID {
			out = append(out, h)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeExtractor returns canned batches or a canned error for every target.
type fakeExtractor struct {
	navs    []entity.ScrapedNavigation
	cats    []entity.ScrapedCategory
	prods   []entity.ScrapedProduct
	detail  *entity.ScrapedProductDetail
	err     error
	calls   int
	lastURL string
}

func (f *fakeExtractor) ExtractNavigation(ctx context.Context, url string) ([]entity.ScrapedNavigation, error) {
	f.calls++
	f.lastURL = url
	return f.navs, f.err
}

func (f *fakeExtractor) ExtractCategories(ctx context.Context, url string) ([]entity.ScrapedCategory, error) {
	f.calls++
	f.lastURL = url
	return f.cats, f.err
}

func (f *fakeExtractor) ExtractProducts(ctx context.Context, url string, page, limit int) ([]entity.ScrapedProduct, error) {
	f.calls++
	f.lastURL = url
	return f.prods, f.err
}

func (f *fakeExtractor) ExtractProductDetail(ctx context.Context, url string) (*entity.ScrapedProductDetail, error) {
	f.calls++
	f.lastURL = url
	return f.detail, f.err
}
