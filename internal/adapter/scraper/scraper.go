// Package scraper is the default extractor implementation: chromedp renders
// the target page, goquery parses the resulting markup into typed batches.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/repository"
)

// Scraper implements repository.ExtractorRepository.
type Scraper struct {
	baseURL   string
	delay     time.Duration
	timeout   time.Duration
	allocPool *sync.Pool
	logger    *zap.Logger
}

func New(baseURL string, delay, timeout time.Duration, logger *zap.Logger) *Scraper {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}
	return &Scraper{
		baseURL:   baseURL,
		delay:     delay,
		timeout:   timeout,
		allocPool: pool,
		logger:    logger,
	}
}

// fetch renders a page and returns its outer HTML. The politeness delay runs
// before navigation; the hard timeout covers the whole render.
func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s", repository.ErrExtractTimeout, url)
	}

	allocCtx := s.allocPool.Get().(context.Context)
	defer s.allocPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, s.timeout)
	defer cancelTimeout()

	var htmlContent string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", repository.ErrExtractTimeout, url)
		}
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrNavigationFailed, url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrNavigationFailed, url, err)
	}
	return doc, nil
}

func (s *Scraper) ExtractNavigation(ctx context.Context, url string) ([]entity.ScrapedNavigation, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	items := parseNavigation(s.baseURL, doc)
	s.logger.Info("extracted navigation items", zap.String("url", url), zap.Int("count", len(items)))
	return items, nil
}

func (s *Scraper) ExtractCategories(ctx context.Context, url string) ([]entity.ScrapedCategory, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	items := parseCategories(s.baseURL, doc)
	s.logger.Info("extracted categories", zap.String("url", url), zap.Int("count", len(items)))
	return items, nil
}

func (s *Scraper) ExtractProducts(ctx context.Context, url string, page, limit int) ([]entity.ScrapedProduct, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	pagedURL := fmt.Sprintf("%s?page=%d&limit=%d", url, page, limit)

	doc, err := s.fetch(ctx, pagedURL)
	if err != nil {
		return nil, err
	}
	items := parseProducts(s.baseURL, doc)
	s.logger.Info("extracted products", zap.String("url", pagedURL), zap.Int("count", len(items)))
	return items, nil
}

func (s *Scraper) ExtractProductDetail(ctx context.Context, url string) (*entity.ScrapedProductDetail, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	detail := parseProductDetail(s.baseURL, doc)
	s.logger.Info("extracted product detail", zap.String("url", url), zap.Int("reviews", len(detail.Reviews)))
	return detail, nil
}
