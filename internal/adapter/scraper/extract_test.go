package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const testBase = "https://books.example.com"

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return d
}

func TestParseNavigation(t *testing.T) {
	d := doc(t, `
		<nav>
			<a href="/fiction">Fiction</a>
			<a href="/non-fiction">Non-Fiction Books</a>
			<a href="/fiction">Fiction</a>
			<a href="/empty"></a>
			<a>No Href</a>
		</nav>`)

	items := parseNavigation(testBase, d)
	if len(items) != 2 {
		t.Fatalf("got %d headings, want 2 (duplicates and empties dropped)", len(items))
	}
	if items[0].Slug != "fiction" || items[0].Title != "Fiction" {
		t.Errorf("first = %+v", items[0])
	}
	if items[0].URL != testBase+"/fiction" {
		t.Errorf("URL = %q, want absolute", items[0].URL)
	}
	if items[1].Slug != "non-fiction-books" {
		t.Errorf("second slug = %q", items[1].Slug)
	}
}

func TestParseNavigation_DuplicateFirstWins(t *testing.T) {
	d := doc(t, `
		<nav>
			<a href="/first">Crime</a>
			<a href="/second">Crime</a>
		</nav>`)

	items := parseNavigation(testBase, d)
	if len(items) != 1 {
		t.Fatalf("got %d, want 1", len(items))
	}
	if items[0].URL != testBase+"/first" {
		t.Errorf("URL = %q, the first occurrence must win", items[0].URL)
	}
}

func TestParseCategories(t *testing.T) {
	d := doc(t, `
		<div>
			<a class="category-item" href="/category/crime">Crime <span class="count">(123)</span></a>
			<a class="category-item" href="/category/romance">Romance</a>
		</div>`)

	items := parseCategories(testBase, d)
	if len(items) != 2 {
		t.Fatalf("got %d categories, want 2", len(items))
	}
	if items[0].Title != "Crime" {
		t.Errorf("title = %q, want the count badge stripped", items[0].Title)
	}
	if items[0].ProductCount != 123 {
		t.Errorf("count = %d, want 123", items[0].ProductCount)
	}
	if items[1].ProductCount != 0 {
		t.Errorf("count = %d, want 0 when there is no badge", items[1].ProductCount)
	}
}

func TestParseCategories_MalformedCount(t *testing.T) {
	d := doc(t, `
		<a class="category-item" href="/category/x">Mystery <span class="count">(many)</span></a>`)

	items := parseCategories(testBase, d)
	if len(items) != 1 {
		t.Fatalf("got %d, want 1", len(items))
	}
	if items[0].ProductCount != 0 {
		t.Errorf("count = %d, a non-numeric badge falls back to 0", items[0].ProductCount)
	}
}

func TestParseProducts(t *testing.T) {
	d := doc(t, `
		<div>
			<div class="product-card">
				<a href="/products/the-hobbit-123"><h3>The Hobbit</h3></a>
				<span class="author">J.R.R. Tolkien</span>
				<span class="price">£7.99</span>
				<img src="/img/hobbit.jpg">
			</div>
			<div class="product-card">
				<a href="/products/no-price"><h3>No Price</h3></a>
			</div>
			<div class="product-card">
				<a href="/products/the-hobbit-123"><h3>Duplicate</h3></a>
				<span class="price">£9.99</span>
			</div>
		</div>`)

	items := parseProducts(testBase, d)
	if len(items) != 1 {
		t.Fatalf("got %d products, want 1 (missing price and duplicate dropped)", len(items))
	}
	p := items[0]
	if p.SourceID != "the-hobbit-123" {
		t.Errorf("sourceId = %q", p.SourceID)
	}
	if p.Title != "The Hobbit" || p.Author != "J.R.R. Tolkien" {
		t.Errorf("title/author = %q/%q", p.Title, p.Author)
	}
	if p.Price != 7.99 {
		t.Errorf("price = %v, want 7.99", p.Price)
	}
	if p.Currency != "GBP" {
		t.Errorf("currency = %q, want GBP", p.Currency)
	}
	if p.SourceURL != testBase+"/products/the-hobbit-123" {
		t.Errorf("sourceUrl = %q, want absolute", p.SourceURL)
	}
}

func TestParseProductDetail(t *testing.T) {
	d := doc(t, `
		<div>
			<div class="description">A great book.</div>
			<span class="rating">4.5 out of 5</span>
			<span class="review-count">87 reviews</span>
			<span class="publisher">Acme Press</span>
			<span class="isbn">9780261103344</span>
			<table class="specs">
				<tr><th>Format</th><td>Paperback</td></tr>
				<tr><th>Pages</th><td>310</td></tr>
			</table>
			<div class="review">
				<span class="author">Alice</span>
				<span class="rating">4</span>
				<p class="review-text">Loved it</p>
			</div>
			<div class="review">
				<span class="author">Bob</span>
				<p class="review-text">No rating given</p>
			</div>
			<div class="recommended-product"><a href="/products/rec-1">Rec 1</a></div>
			<div class="recommended-product"><a href="/products/rec-2">Rec 2</a></div>
		</div>`)

	detail := parseProductDetail(testBase, d)
	if detail.Description != "A great book." {
		t.Errorf("description = %q", detail.Description)
	}
	if detail.RatingsAvg != 4.5 {
		t.Errorf("ratingsAvg = %v, want 4.5", detail.RatingsAvg)
	}
	if detail.ReviewsCount != 87 {
		t.Errorf("reviewsCount = %d, want the badge value", detail.ReviewsCount)
	}
	if detail.Publisher != "Acme Press" || detail.ISBN != "9780261103344" {
		t.Errorf("publisher/isbn = %q/%q", detail.Publisher, detail.ISBN)
	}
	if detail.Specs["Format"] != "Paperback" || detail.Specs["Pages"] != "310" {
		t.Errorf("specs = %v", detail.Specs)
	}
	if len(detail.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(detail.Reviews))
	}
	if detail.Reviews[0].Rating != 4 {
		t.Errorf("first rating = %v, want 4", detail.Reviews[0].Rating)
	}
	if detail.Reviews[1].Rating != 5 {
		t.Errorf("second rating = %v, a missing rating defaults to 5", detail.Reviews[1].Rating)
	}
	if len(detail.Recommendations) != 2 || detail.Recommendations[0] != "rec-1" {
		t.Errorf("recommendations = %v", detail.Recommendations)
	}
}

func TestParseProductDetail_ReviewCountFallsBackToParsed(t *testing.T) {
	d := doc(t, `
		<div>
			<div class="review">
				<span class="author">Alice</span>
				<p class="review-text">Fine</p>
			</div>
		</div>`)

	detail := parseProductDetail(testBase, d)
	if detail.ReviewsCount != 1 {
		t.Errorf("reviewsCount = %d, want len(reviews) without a badge", detail.ReviewsCount)
	}
}

func TestParseProductDetail_ReviewCapAndRecommendationCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<div>")
	for i := 0; i < 15; i++ {
		b.WriteString(`<div class="review"><span class="author">A</span><p class="review-text">t</p></div>`)
	}
	for i := 0; i < 10; i++ {
		b.WriteString(`<div class="recommended-product"><a href="/products/rec-x">R</a></div>`)
	}
	b.WriteString("</div>")

	detail := parseProductDetail(testBase, doc(t, b.String()))
	if len(detail.Reviews) != 10 {
		t.Errorf("reviews = %d, want capped at 10", len(detail.Reviews))
	}
	if len(detail.Recommendations) != 6 {
		t.Errorf("recommendations = %d, want capped at 6", len(detail.Recommendations))
	}
}
