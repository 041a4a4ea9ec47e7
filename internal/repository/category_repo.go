package repository

import (
	"context"
	"time"

	"github.com/user/catalog-service/internal/entity"
)

// CategoryRepository defines storage access for catalog categories.
type CategoryRepository interface {
	// FindByNavigation returns all categories under a navigation heading.
	FindByNavigation(ctx context.Context, navigationID string) ([]*entity.Category, error)
	// FindBySlug resolves a category by slug, entity.ErrNotFound otherwise.
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	// Upsert inserts or updates a scraped category keyed on the
	// (navigation_id, slug) composite and stamps lastScrapedAt.
	Upsert(ctx context.Context, navigationID string, item entity.ScrapedCategory, scrapedAt time.Time) error
}
