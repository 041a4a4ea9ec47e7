package entity

import "time"

// Navigation is a top-level heading of the source catalog. Keyed by slug.
type Navigation struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// CategoryCount is populated on list reads only.
	CategoryCount int `json:"category_count,omitempty"`
}

// Category belongs to a navigation heading. Keyed by (navigation_id, slug).
type Category struct {
	ID            string     `json:"id"`
	NavigationID  string     `json:"navigation_id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	ProductCount  int        `json:"product_count"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Product mirrors the `products` table. SourceID is the external natural key.
type Product struct {
	ID            string     `json:"id"`
	SourceID      string     `json:"source_id"`
	CategoryID    string     `json:"category_id,omitempty"`
	Title         string     `json:"title"`
	Author        string     `json:"author,omitempty"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	ImageURL      string     `json:"image_url,omitempty"`
	SourceURL     string     `json:"source_url"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProductDetail holds the one-to-one enrichment scraped from a product page.
type ProductDetail struct {
	ProductID       string            `json:"product_id"`
	Description     string            `json:"description,omitempty"`
	Specs           map[string]string `json:"specs,omitempty"`
	RatingsAvg      float64           `json:"ratings_avg,omitempty"`
	ReviewsCount    int               `json:"reviews_count"`
	Recommendations []string          `json:"recommendations,omitempty"` // external sourceIds
	Publisher       string            `json:"publisher,omitempty"`
	PublicationDate string            `json:"publication_date,omitempty"`
	ISBN            string            `json:"isbn,omitempty"`
}

// Review mirrors the `reviews` table. The full set for a product is replaced
// on every product-detail reconciliation, never merged.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewHistory records a browsing path for a session.
type ViewHistory struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	Path      []string  `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}
