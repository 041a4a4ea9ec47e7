package repository

import (
	"context"

	"github.com/user/catalog-service/internal/entity"
)

// ExtractorRepository turns a target URL into typed records. Implementations
// deduplicate each batch by natural key (slug or sourceId, first occurrence
// wins) and tolerate malformed numeric fields by falling back to zero rather
// than failing the batch. Every call carries a hard timeout via ctx; on
// timeout or navigation failure the batch error wraps ErrExtractTimeout or
// ErrNavigationFailed.
type ExtractorRepository interface {
	ExtractNavigation(ctx context.Context, url string) ([]entity.ScrapedNavigation, error)
	ExtractCategories(ctx context.Context, url string) ([]entity.ScrapedCategory, error)
	ExtractProducts(ctx context.Context, url string, page, limit int) ([]entity.ScrapedProduct, error)
	ExtractProductDetail(ctx context.Context, url string) (*entity.ScrapedProductDetail, error)
}
