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

// NavigationRepoImpl implements repository.NavigationRepository on PostgreSQL.
type NavigationRepoImpl struct {
	db *pgxpool.Pool
}

func NewNavigationRepo(db *pgxpool.Pool) *NavigationRepoImpl {
	return &NavigationRepoImpl{db: db}
}

func (r *NavigationRepoImpl) FindAll(ctx context.Context) ([]*entity.Navigation, error) {
	query := `
		SELECT n.id, n.title, n.slug, n.last_scraped_at, n.created_at, n.updated_at,
		       COUNT(c.id) AS category_count
		FROM navigations n
		LEFT JOIN categories c ON c.navigation_id = n.id
		GROUP BY n.id
		ORDER BY n.created_at ASC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var navs []*entity.Navigation
	for rows.Next() {
		var n entity.Navigation
		if err := rows.Scan(&n.ID, &n.Title, &n.Slug, &n.LastScrapedAt, &n.CreatedAt, &n.UpdatedAt, &n.CategoryCount); err != nil {
			return nil, err
		}
		navs = append(navs, &n)
	}
	return navs, rows.Err()
}

func (r *NavigationRepoImpl) FindBySlug(ctx context.Context, slug string) (*entity.Navigation, error) {
	query := `
		SELECT id, title, slug, last_scraped_at, created_at, updated_at
		FROM navigations
		WHERE slug = $1;
	`
	var n entity.Navigation
	err := r.db.QueryRow(ctx, query, slug).Scan(
		&n.ID, &n.Title, &n.Slug, &n.LastScrapedAt, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Upsert is keyed on slug; the slug is the navigation's natural key. Atomic
// per record, so concurrent workers reconciling the same heading cannot lose
// updates.
func (r *NavigationRepoImpl) Upsert(ctx context.Context, item entity.ScrapedNavigation, scrapedAt time.Time) error {
	query := `
		INSERT INTO navigations (id, title, slug, last_scraped_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			last_scraped_at = EXCLUDED.last_scraped_at,
			updated_at = NOW();
	`
	_, err := r.db.Exec(ctx, query, uuid.NewString(), item.Title, item.Slug, scrapedAt)
	return err
}
