package entity

// Typed batches returned by the extractor. Each batch is deduplicated by its
// natural key (slug or sourceId) before it reaches the reconciler.

type ScrapedNavigation struct {
	Title string
	Slug  string
	URL   string
}

type ScrapedCategory struct {
	Title        string
	Slug         string
	URL          string
	ProductCount int
}

type ScrapedProduct struct {
	SourceID  string
	Title     string
	Author    string
	Price     float64
	Currency  string
	ImageURL  string
	SourceURL string
}

type ScrapedReview struct {
	Author string
	Rating float64
	Text   string
}

type ScrapedProductDetail struct {
	Description     string
	Specs           map[string]string
	RatingsAvg      float64
	ReviewsCount    int
	Publisher       string
	PublicationDate string
	ISBN            string
	Reviews         []ScrapedReview
	Recommendations []string
}
