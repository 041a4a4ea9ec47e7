package usecase

import "time"

// Clock abstracts "now" so freshness decisions are deterministic in tests.
type Clock func() time.Time

// Freshness decides whether a resource's last successful fetch is still
// trusted. Pure: no I/O, no side effects.
type Freshness struct {
	ttl time.Duration
	now Clock
}

// NewFreshness builds an oracle with the given TTL in hours. A nil clock
// defaults to time.Now.
func NewFreshness(ttlHours int, now Clock) *Freshness {
	if now == nil {
		now = time.Now
	}
	return &Freshness{
		ttl: time.Duration(ttlHours) * time.Hour,
		now: now,
	}
}

// IsFresh reports whether lastScrapedAt is still within the TTL window.
// A nil timestamp means never fetched, always stale.
func (f *Freshness) IsFresh(lastScrapedAt *time.Time) bool {
	if lastScrapedAt == nil {
		return false
	}
	return f.now().Before(lastScrapedAt.Add(f.ttl))
}
