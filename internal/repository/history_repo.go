package repository

import (
	"context"

	"github.com/user/catalog-service/internal/entity"
)

// HistoryRepository stores per-session browsing paths.
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.ViewHistory) error
	FindBySession(ctx context.Context, sessionID string, limit int) ([]*entity.ViewHistory, error)
}
