package entity

import "time"

// ScrapeJob statuses. A row is created as processing and mutated exactly once
// more when it reaches a terminal state.
const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Target types recorded on the audit row.
const (
	TargetNavigation    = "navigation"
	TargetCategory      = "category"
	TargetProduct       = "product"
	TargetProductDetail = "product-detail"
)

// ScrapeJob is the per-dispatch audit row. One row per delivery attempt, not
// per logical resource; rows are never deleted so the table doubles as the
// scrape history.
type ScrapeJob struct {
	ID         string     `json:"id"`
	TargetURL  string     `json:"target_url"`
	TargetType string     `json:"target_type"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Attempts   int        `json:"attempts"`
	ErrorLog   string     `json:"error_log,omitempty"`
}
