package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/repository"
)

// ProductRepoImpl implements repository.ProductRepository on PostgreSQL.
type ProductRepoImpl struct {
	db *pgxpool.Pool
}

func NewProductRepo(db *pgxpool.Pool) *ProductRepoImpl {
	return &ProductRepoImpl{db: db}
}

const productColumns = `id, source_id, category_id, title, author, price, currency, image_url, source_url, last_scraped_at, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SourceID, &p.CategoryID, &p.Title, &p.Author, &p.Price,
		&p.Currency, &p.ImageURL, &p.SourceURL, &p.LastScrapedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepoImpl) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProductRepoImpl) FindBySourceIDs(ctx context.Context, sourceIDs []string) ([]*entity.Product, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE source_id = ANY($1);`
	rows, err := r.db.Query(ctx, query, sourceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// List applies the filter as a dynamically built WHERE clause and returns one
// page plus the total match count.
func (r *ProductRepoImpl) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != "" {
		conds = append(conds, "category_id = "+arg(f.CategoryID))
	}
	if f.MinPrice > 0 {
		conds = append(conds, "price >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		conds = append(conds, "price <= "+arg(f.MaxPrice))
	}
	if f.Search != "" {
		ph := arg("%" + f.Search + "%")
		conds = append(conds, "(title ILIKE "+ph+" OR author ILIKE "+ph+")")
	}
	if f.Author != "" {
		conds = append(conds, "author ILIKE "+arg("%"+f.Author+"%"))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	query := "SELECT " + productColumns + " FROM products" + where +
		" ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg((page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// Upsert is keyed on sourceId, the external natural key. The conflict target
// makes concurrent upserts of the same product safe without application-level
// locking.
func (r *ProductRepoImpl) Upsert(ctx context.Context, categoryID string, item entity.ScrapedProduct, scrapedAt time.Time) error {
	query := `
		INSERT INTO products (id, source_id, category_id, title, author, price, currency, image_url, source_url, last_scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			image_url = EXCLUDED.image_url,
			source_url = EXCLUDED.source_url,
			last_scraped_at = EXCLUDED.last_scraped_at,
			updated_at = NOW();
	`
	_, err := r.db.Exec(ctx, query,
		uuid.NewString(), item.SourceID, categoryID, item.Title, item.Author,
		item.Price, item.Currency, item.ImageURL, item.SourceURL, scrapedAt,
	)
	return err
}
