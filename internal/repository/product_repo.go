package repository

import (
	"context"
	"time"

	"github.com/user/catalog-service/internal/entity"
)

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID string
	MinPrice   float64
	MaxPrice   float64
	Search     string
	Author     string
	Page       int
	Limit      int
}

// ProductRepository defines storage access for products.
type ProductRepository interface {
	// FindByID resolves a product by its id, entity.ErrNotFound otherwise.
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// FindBySourceIDs resolves products by external natural keys. Missing
	// keys are skipped, not an error.
	FindBySourceIDs(ctx context.Context, sourceIDs []string) ([]*entity.Product, error)
	// List returns a filtered page of products plus the total match count.
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	// Upsert inserts or updates a scraped product keyed on sourceId and
	// stamps lastScrapedAt. Must be atomic per record.
	Upsert(ctx context.Context, categoryID string, item entity.ScrapedProduct, scrapedAt time.Time) error
}
