package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/catalog-service/internal/entity"
)

// HistoryRepoImpl implements repository.HistoryRepository on PostgreSQL.
type HistoryRepoImpl struct {
	db *pgxpool.Pool
}

func NewHistoryRepo(db *pgxpool.Pool) *HistoryRepoImpl {
	return &HistoryRepoImpl{db: db}
}

func (r *HistoryRepoImpl) Create(ctx context.Context, h *entity.ViewHistory) error {
	path := h.Path
	if path == nil {
		path = []string{}
	}
	pathJSON, err := json.Marshal(path)
	if err != nil {
		return fmt.Errorf("failed to encode path: %w", err)
	}
	query := `
		INSERT INTO view_history (id, session_id, user_id, path)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at;
	`
	return r.db.QueryRow(ctx, query, h.ID, h.SessionID, h.UserID, pathJSON).Scan(&h.CreatedAt)
}

func (r *HistoryRepoImpl) FindBySession(ctx context.Context, sessionID string, limit int) ([]*entity.ViewHistory, error) {
	query := `
		SELECT id, session_id, user_id, path, created_at
		FROM view_history
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.ViewHistory
	for rows.Next() {
		var h entity.ViewHistory
		var pathJSON []byte
		if err := rows.Scan(&h.ID, &h.SessionID, &h.UserID, &pathJSON, &h.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(pathJSON, &h.Path); err != nil {
			return nil, fmt.Errorf("failed to decode path: %w", err)
		}
		items = append(items, &h)
	}
	return items, rows.Err()
}
