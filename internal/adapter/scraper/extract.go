package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/pkg/utils"
)

const (
	maxReviews         = 10
	maxRecommendations = 6
)

// parseNavigation reads the heading links out of a rendered landing page.
// Duplicate slugs collapse to the first occurrence.
func parseNavigation(baseURL string, doc *goquery.Document) []entity.ScrapedNavigation {
	var items []entity.ScrapedNavigation
	seen := make(map[string]bool)

	doc.Find("nav a, header a, .menu a").Each(func(i int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href, ok := sel.Attr("href")
		if title == "" || !ok || href == "" {
			return
		}
		slug := utils.Slugify(title)
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true
		items = append(items, entity.ScrapedNavigation{
			Title: title,
			Slug:  slug,
			URL:   utils.ToAbsoluteURL(baseURL, href),
		})
	})
	return items
}

// parseCategories reads category links from a navigation page. The product
// count tolerates surrounding text and falls back to 0.
func parseCategories(baseURL string, doc *goquery.Document) []entity.ScrapedCategory {
	var items []entity.ScrapedCategory
	seen := make(map[string]bool)

	doc.Find(".category-item, .category-link, [data-category]").Each(func(i int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		href, ok := sel.Attr("href")
		if !ok {
			href, ok = sel.Find("a").First().Attr("href")
		}
		if title == "" || !ok || href == "" {
			return
		}

		countText := sel.Find(".count, .product-count").First().Text()
		if countText != "" {
			// The anchor text includes the count badge; strip it from the title.
			title = strings.TrimSpace(strings.TrimSuffix(title, countText))
		}

		slug := utils.Slugify(title)
		if slug == "" || seen[slug] {
			return
		}
		seen[slug] = true
		items = append(items, entity.ScrapedCategory{
			Title:        title,
			Slug:         slug,
			URL:          utils.ToAbsoluteURL(baseURL, href),
			ProductCount: int(utils.ExtractNumber(countText)),
		})
	})
	return items
}

// parseProducts reads product cards from a category listing. Cards missing a
// title, price or link are skipped; duplicate sourceIds collapse to the first
// occurrence.
func parseProducts(baseURL string, doc *goquery.Document) []entity.ScrapedProduct {
	var items []entity.ScrapedProduct
	seen := make(map[string]bool)

	doc.Find(".product-card, .product-item, [data-product]").Each(func(i int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".title, h3, h4, .product-title").First().Text())
		priceText := card.Find(".price, .product-price").First().Text()
		href, ok := card.Find("a").First().Attr("href")
		if title == "" || priceText == "" || !ok || href == "" {
			return
		}

		sourceURL := utils.ToAbsoluteURL(baseURL, href)
		sourceID := utils.ExtractSourceID(sourceURL)
		if sourceID == "" || seen[sourceID] {
			return
		}
		seen[sourceID] = true

		author := strings.TrimSpace(card.Find(".author, .by-line").First().Text())
		imageURL, _ := card.Find("img").First().Attr("src")

		items = append(items, entity.ScrapedProduct{
			SourceID:  sourceID,
			Title:     title,
			Author:    author,
			Price:     utils.ExtractNumber(priceText),
			Currency:  "GBP",
			ImageURL:  imageURL,
			SourceURL: sourceURL,
		})
	})
	return items
}

// parseProductDetail reads a product page: description, ratings, publication
// fields, up to 10 reviews and up to 6 recommended sourceIds.
func parseProductDetail(baseURL string, doc *goquery.Document) *entity.ScrapedProductDetail {
	detail := &entity.ScrapedProductDetail{
		Description:     strings.TrimSpace(doc.Find(".description, .product-description, [data-description]").First().Text()),
		Publisher:       strings.TrimSpace(doc.Find(".publisher, [data-publisher]").First().Text()),
		PublicationDate: strings.TrimSpace(doc.Find(".publication-date, [data-pub-date]").First().Text()),
		ISBN:            strings.TrimSpace(doc.Find(".isbn, [data-isbn]").First().Text()),
		Specs:           map[string]string{},
	}

	detail.RatingsAvg = utils.ExtractNumber(doc.Find(".rating, .average-rating, [data-rating]").First().Text())

	doc.Find(".specs tr, .spec-row, .product-specs li").Each(func(i int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find("th, dt, .spec-name").First().Text())
		value := strings.TrimSpace(sel.Find("td, dd, .spec-value").First().Text())
		if name != "" && value != "" {
			detail.Specs[name] = value
		}
	})

	doc.Find(".review, .customer-review").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxReviews {
			return false
		}
		author := strings.TrimSpace(sel.Find(".author, .reviewer-name").First().Text())
		text := strings.TrimSpace(sel.Find(".review-text, .comment").First().Text())
		if author == "" || text == "" {
			return true
		}
		rating := utils.ExtractNumber(sel.Find(".rating, [data-rating]").First().Text())
		if rating == 0 {
			rating = 5
		}
		detail.Reviews = append(detail.Reviews, entity.ScrapedReview{
			Author: author,
			Rating: rating,
			Text:   text,
		})
		return true
	})

	countText := doc.Find(".review-count, .reviews-count").First().Text()
	if countText != "" {
		detail.ReviewsCount = int(utils.ExtractNumber(countText))
	} else {
		detail.ReviewsCount = len(detail.Reviews)
	}

	doc.Find(".recommended-product a, .similar-product a").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(detail.Recommendations) >= maxRecommendations {
			return false
		}
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		detail.Recommendations = append(detail.Recommendations,
			utils.ExtractSourceID(utils.ToAbsoluteURL(baseURL, href)))
		return true
	})

	return detail
}
