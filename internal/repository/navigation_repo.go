package repository

import (
	"context"
	"time"

	"github.com/user/catalog-service/internal/entity"
)

// NavigationRepository defines storage access for navigation headings.
type NavigationRepository interface {
	// FindAll returns every navigation heading with its category count.
	FindAll(ctx context.Context) ([]*entity.Navigation, error)
	// FindBySlug resolves a heading by its slug, entity.ErrNotFound otherwise.
	FindBySlug(ctx context.Context, slug string) (*entity.Navigation, error)
	// Upsert inserts or updates a scraped heading keyed on slug and stamps
	// lastScrapedAt. Must be atomic per record.
	Upsert(ctx context.Context, item entity.ScrapedNavigation, scrapedAt time.Time) error
}
