package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-service/internal/entity"
)

// DetailRepoImpl implements repository.DetailRepository on PostgreSQL.
type DetailRepoImpl struct {
	db *pgxpool.Pool
}

func NewDetailRepo(db *pgxpool.Pool) *DetailRepoImpl {
	return &DetailRepoImpl{db: db}
}

func (r *DetailRepoImpl) FindByProductID(ctx context.Context, productID string) (*entity.ProductDetail, error) {
	query := `
		SELECT product_id, description, specs, ratings_avg, reviews_count,
		       recommendations, publisher, publication_date, isbn
		FROM product_details
		WHERE product_id = $1;
	`
	var d entity.ProductDetail
	var specsJSON, recsJSON []byte
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&d.ProductID, &d.Description, &specsJSON, &d.RatingsAvg, &d.ReviewsCount,
		&recsJSON, &d.Publisher, &d.PublicationDate, &d.ISBN,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	if len(specsJSON) > 0 {
		if err := json.Unmarshal(specsJSON, &d.Specs); err != nil {
			return nil, fmt.Errorf("failed to decode specs: %w", err)
		}
	}
	if len(recsJSON) > 0 {
		if err := json.Unmarshal(recsJSON, &d.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}
	return &d, nil
}

func (r *DetailRepoImpl) Reviews(ctx context.Context, productID string, limit int) ([]*entity.Review, error) {
	query := `
		SELECT id, product_id, author, rating, text, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		var rev entity.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.Author, &rev.Rating, &rev.Text, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, &rev)
	}
	return reviews, rows.Err()
}

// Reconcile applies a scraped detail in one transaction: detail upsert,
// full review replacement, and the product's lastScrapedAt bump. The review
// replacement is delete-all-then-insert-all rather than a merge; replaying
// the same batch yields the same stored set. An empty review batch leaves the
// existing set untouched (a page with no matched reviews is not proof the
// reviews are gone).
func (r *DetailRepoImpl) Reconcile(ctx context.Context, productID string, detail *entity.ScrapedProductDetail, scrapedAt time.Time) error {
	specsJSON, err := json.Marshal(detail.Specs)
	if err != nil {
		return fmt.Errorf("failed to encode specs: %w", err)
	}
	recs := detail.Recommendations
	if recs == nil {
		recs = []string{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO product_details (product_id, description, specs, ratings_avg, reviews_count,
		                             recommendations, publisher, publication_date, isbn)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (product_id) DO UPDATE SET
			description = EXCLUDED.description,
			specs = EXCLUDED.specs,
			ratings_avg = EXCLUDED.ratings_avg,
			reviews_count = EXCLUDED.reviews_count,
			recommendations = EXCLUDED.recommendations,
			publisher = EXCLUDED.publisher,
			publication_date = EXCLUDED.publication_date,
			isbn = EXCLUDED.isbn,
			updated_at = NOW();
	`, productID, detail.Description, specsJSON, detail.RatingsAvg, detail.ReviewsCount,
		recsJSON, detail.Publisher, detail.PublicationDate, detail.ISBN)
	if err != nil {
		return err
	}

	if len(detail.Reviews) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE product_id = $1;`, productID); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for i, rev := range detail.Reviews {
			batch.Queue(`INSERT INTO reviews (id, product_id, author, rating, text, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.NewString(), productID, rev.Author, rev.Rating, rev.Text, reviewCreatedAt(scrapedAt, i))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, `UPDATE products SET last_scraped_at = $2, updated_at = NOW() WHERE id = $1;`,
		productID, scrapedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// reviewCreatedAt spaces a batch's rows a millisecond apart in page order.
// Rows sharing one transaction's now() would make the newest-first read
// order arbitrary within a batch.
func reviewCreatedAt(scrapedAt time.Time, i int) time.Time {
	return scrapedAt.Add(-time.Duration(i) * time.Millisecond)
}
