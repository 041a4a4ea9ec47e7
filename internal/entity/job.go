package entity

import "time"

// Queue job types, a tagged union on JobEnvelope.Type.
const (
	JobScrapeNavigation    = "scrape-navigation"
	JobScrapeCategory      = "scrape-category"
	JobScrapeProducts      = "scrape-products"
	JobScrapeProductDetail = "scrape-product-detail"
)

// JobPayload carries the minimum the runner needs to resolve its target.
// Which fields are set depends on the envelope type.
type JobPayload struct {
	URL          string `json:"url,omitempty"`
	NavigationID string `json:"navigation_id,omitempty"`
	CategoryID   string `json:"category_id,omitempty"`
	ProductID    string `json:"product_id,omitempty"`
	Page         int    `json:"page,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

// JobEnvelope is the wire format pushed onto the Redis queue. Attempt counts
// deliveries of this logical job; the queue redelivers until the runner's
// retry policy buries it.
type JobEnvelope struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Attempt    int        `json:"attempt"`
	Payload    JobPayload `json:"payload"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
}
