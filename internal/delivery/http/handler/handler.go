package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/usecase"
)

// Pinger reports backend liveness for the health endpoint.
type Pinger func(ctx context.Context) error

type Handler struct {
	catalog   *usecase.CatalogService
	scrape    *usecase.ScrapeService
	pgPing    Pinger
	redisPing Pinger
	logger    *zap.Logger
}

func New(catalog *usecase.CatalogService, scrape *usecase.ScrapeService, pgPing, redisPing Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		catalog:   catalog,
		scrape:    scrape,
		pgPing:    pgPing,
		redisPing: redisPing,
		logger:    logger,
	}
}

func (h *Handler) HandleListNavigation(w http.ResponseWriter, r *http.Request) {
	navs, err := h.catalog.ListNavigation(r.Context())
	if err != nil {
		h.internalError(w, "failed to list navigation", err)
		return
	}
	h.respondJSON(w, http.StatusOK, navs)
}

func (h *Handler) HandleGetNavigation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	withCategories := r.URL.Query().Get("include") == "categories"

	nav, err := h.catalog.GetNavigation(r.Context(), slug, withCategories)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "navigation not found")
			return
		}
		h.internalError(w, "failed to get navigation", err)
		return
	}
	h.respondJSON(w, http.StatusOK, nav)
}

func (h *Handler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	cat, err := h.catalog.GetCategory(r.Context(), slug, page, limit)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "category not found")
			return
		}
		h.internalError(w, "failed to get category", err)
		return
	}
	h.respondJSON(w, http.StatusOK, cat)
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	q := usecase.ProductQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Author:   r.URL.Query().Get("author"),
		MinPrice: queryFloat(r, "min_price"),
		MaxPrice: queryFloat(r, "max_price"),
		Page:     queryInt(r, "page", 1),
		Limit:    queryInt(r, "limit", 20),
	}

	page, err := h.catalog.ListProducts(r.Context(), q)
	if err != nil {
		h.internalError(w, "failed to list products", err)
		return
	}
	h.respondJSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.internalError(w, "failed to get product", err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	decision, err := h.scrape.RefreshAll(r.Context())
	if err != nil {
		h.internalError(w, "failed to queue navigation scrape", err)
		return
	}
	h.respondDecision(w, decision)
}

func (h *Handler) HandleRefreshNavigation(w http.ResponseWriter, r *http.Request) {
	h.refresh(w, r, func(ctx context.Context) (*usecase.ScrapeDecision, error) {
		return h.scrape.RefreshNavigation(ctx, chi.URLParam(r, "slug"))
	})
}

func (h *Handler) HandleRefreshCategory(w http.ResponseWriter, r *http.Request) {
	h.refresh(w, r, func(ctx context.Context) (*usecase.ScrapeDecision, error) {
		return h.scrape.RefreshCategory(ctx, chi.URLParam(r, "slug"))
	})
}

func (h *Handler) HandleRefreshProduct(w http.ResponseWriter, r *http.Request) {
	h.refresh(w, r, func(ctx context.Context) (*usecase.ScrapeDecision, error) {
		return h.scrape.RefreshProduct(ctx, chi.URLParam(r, "id"))
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (*usecase.ScrapeDecision, error)) {
	decision, err := fn(r.Context())
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "resource not found")
			return
		}
		h.internalError(w, "failed to queue scrape", err)
		return
	}
	h.respondDecision(w, decision)
}

// respondDecision maps a facade decision to 200 (fresh, skipped) or 202
// (job queued).
func (h *Handler) respondDecision(w http.ResponseWriter, d *usecase.ScrapeDecision) {
	status := http.StatusOK
	if d.Queued {
		status = http.StatusAccepted
	}
	h.respondJSON(w, status, d)
}

func (h *Handler) HandleListScrapeJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.catalog.ListScrapeJobs(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		h.internalError(w, "failed to list scrape jobs", err)
		return
	}
	h.respondJSON(w, http.StatusOK, jobs)
}

// CreateHistoryRequest is the POST /api/history body.
type CreateHistoryRequest struct {
	SessionID string   `json:"session_id"`
	UserID    string   `json:"user_id,omitempty"`
	Path      []string `json:"path"`
}

func (h *Handler) HandleCreateHistory(w http.ResponseWriter, r *http.Request) {
	var req CreateHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		h.respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	entry, err := h.catalog.RecordView(r.Context(), req.SessionID, req.UserID, req.Path)
	if err != nil {
		h.internalError(w, "failed to record history", err)
		return
	}
	h.respondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	items, err := h.catalog.ListHistory(r.Context(), sessionID, queryInt(r, "limit", 50))
	if err != nil {
		h.internalError(w, "failed to list history", err)
		return
	}
	h.respondJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := map[string]string{"postgres": "healthy", "redis": "healthy"}
	status := http.StatusOK

	if err := h.pgPing(ctx); err != nil {
		health["postgres"] = "unhealthy"
		status = http.StatusServiceUnavailable
		h.logger.Error("health check failed for postgres", zap.Error(err))
	}
	if err := h.redisPing(ctx); err != nil {
		// Cache and queue degrade; redis being down is reported but the
		// read path still works.
		health["redis"] = "unhealthy"
		h.logger.Error("health check failed for redis", zap.Error(err))
	}

	h.respondJSON(w, status, health)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "internal server error")
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(r *http.Request, name string) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0
	}
	return v
}
