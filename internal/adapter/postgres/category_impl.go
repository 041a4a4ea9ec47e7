package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-service/internal/entity"
)

// CategoryRepoImpl implements repository.CategoryRepository on PostgreSQL.
type CategoryRepoImpl struct {
	db *pgxpool.Pool
}

func NewCategoryRepo(db *pgxpool.Pool) *CategoryRepoImpl {
	return &CategoryRepoImpl{db: db}
}

func (r *CategoryRepoImpl) FindByNavigation(ctx context.Context, navigationID string) ([]*entity.Category, error) {
	query := `
		SELECT id, navigation_id, title, slug, product_count, last_scraped_at, created_at, updated_at
		FROM categories
		WHERE navigation_id = $1
		ORDER BY title ASC;
	`
	rows, err := r.db.Query(ctx, query, navigationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.NavigationID, &c.Title, &c.Slug, &c.ProductCount, &c.LastScrapedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

func (r *CategoryRepoImpl) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	query := `
		SELECT id, navigation_id, title, slug, product_count, last_scraped_at, created_at, updated_at
		FROM categories
		WHERE slug = $1
		LIMIT 1;
	`
	var c entity.Category
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&c.ID, &c.NavigationID, &c.Title, &c.Slug, &c.ProductCount, &c.LastScrapedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Upsert is keyed on the (navigation_id, slug) composite; slugs are only
// unique within their parent heading.
func (r *CategoryRepoImpl) Upsert(ctx context.Context, navigationID string, item entity.ScrapedCategory, scrapedAt time.Time) error {
	query := `
		INSERT INTO categories (id, navigation_id, title, slug, product_count, last_scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (navigation_id, slug) DO UPDATE SET
			title = EXCLUDED.title,
			product_count = EXCLUDED.product_count,
			last_scraped_at = EXCLUDED.last_scraped_at,
			updated_at = NOW();
	`
	_, err := r.db.Exec(ctx, query, uuid.NewString(), navigationID, item.Title, item.Slug, item.ProductCount, scrapedAt)
	return err
}
