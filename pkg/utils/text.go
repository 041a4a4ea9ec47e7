package utils

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9]+`)
	numericPart = regexp.MustCompile(`[\d]+(?:\.[\d]+)?`)
	sourceIDRe  = regexp.MustCompile(`/([a-zA-Z0-9-]+)(?:\?|$)`)
)

// Slugify lowercases text and collapses every non-alphanumeric run into a
// single hyphen, trimming leading and trailing hyphens.
func Slugify(text string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(s, "-")
}

// ExtractNumber pulls the first numeric substring out of arbitrary text
// ("4.5 out of 5" -> 4.5, "1,234 reviews" -> 1). Returns 0 when no numeric
// substring is found; malformed fields never fail an extraction.
func ExtractNumber(text string) float64 {
	m := numericPart.FindString(text)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractSourceID derives the external natural key from a product URL: the
// last path segment before any query string.
func ExtractSourceID(rawURL string) string {
	if m := sourceIDRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	parts := strings.FieldsFunc(rawURL, func(r rune) bool { return r == '/' })
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return rawURL
}

// ToAbsoluteURL resolves a possibly relative href against a base URL.
func ToAbsoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	rel, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(rel).String()
}
