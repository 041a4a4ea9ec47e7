package usecase

import (
	"testing"
	"time"
)

func TestFixedBackoff(t *testing.T) {
	b := FixedBackoff(30 * time.Second)
	for _, attempt := range []int{1, 2, 5} {
		if got := b(attempt); got != 30*time.Second {
			t.Errorf("attempt %d: got %v, want 30s", attempt, got)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(30 * time.Second)
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 30 * time.Second},
		{2, 60 * time.Second},
		{3, 120 * time.Second},
		{6, 960 * time.Second},
		{7, 960 * time.Second}, // capped at 32x
		{100, 960 * time.Second},
	}
	for _, c := range cases {
		if got := b(c.attempt); got != c.want {
			t.Errorf("attempt %d: got %v, want %v", c.attempt, got, c.want)
		}
	}
}
