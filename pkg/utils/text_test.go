package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Fiction Books", "fiction-books"},
		{"Crime & Thriller", "crime-thriller"},
		{"  Children's   Books  ", "children-s-books"},
		{"Sci-Fi", "sci-fi"},
		{"ALL CAPS", "all-caps"},
		{"---", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"£12.99", 12.99},
		{"4.5 out of 5", 4.5},
		{"1,234 reviews", 1},
		{"(87)", 87},
		{"no digits here", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := ExtractNumber(c.in); got != c.want {
			t.Errorf("ExtractNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestExtractSourceID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/products/the-hobbit-9780261103344", "the-hobbit-9780261103344"},
		{"https://example.com/products/abc-123?ref=home", "abc-123"},
		{"/products/xyz", "xyz"},
	}
	for _, c := range cases {
		if got := ExtractSourceID(c.in); got != c.want {
			t.Errorf("ExtractSourceID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToAbsoluteURL(t *testing.T) {
	base := "https://example.com/category/fiction"
	cases := []struct {
		href string
		want string
	}{
		{"https://other.com/p/1", "https://other.com/p/1"},
		{"/products/abc", "https://example.com/products/abc"},
		{"abc", "https://example.com/category/abc"},
	}
	for _, c := range cases {
		if got := ToAbsoluteURL(base, c.href); got != c.want {
			t.Errorf("ToAbsoluteURL(%q, %q) = %q, want %q", base, c.href, got, c.want)
		}
	}
}
