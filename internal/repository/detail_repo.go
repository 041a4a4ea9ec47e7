package repository

import (
	"context"
	"time"

	"github.com/user/catalog-service/internal/entity"
)

// DetailRepository defines storage access for product detail and reviews.
type DetailRepository interface {
	// FindByProductID returns the detail row, entity.ErrNotFound otherwise.
	FindByProductID(ctx context.Context, productID string) (*entity.ProductDetail, error)
	// Reviews returns the newest reviews for a product, capped at limit.
	Reviews(ctx context.Context, productID string, limit int) ([]*entity.Review, error)
	// Reconcile applies a scraped detail in one transaction: upsert the
	// detail row, replace the full review set (delete-all-then-insert-all),
	// and bump the product's lastScrapedAt.
	Reconcile(ctx context.Context, productID string, detail *entity.ScrapedProductDetail, scrapedAt time.Time) error
}
