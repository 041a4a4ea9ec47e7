package redis

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBuildKey(t *testing.T) {
	c := &CacheRepoImpl{}
	cases := []struct {
		prefix string
		parts  []string
		want   string
	}{
		{"navigation", []string{"all"}, "navigation:all"},
		{"navigation", []string{"fiction", "with-categories"}, "navigation:fiction:with-categories"},
		{"category", []string{"crime", "products-1-20"}, "category:crime:products-1-20"},
		{"health", nil, "health"},
	}
	for _, tc := range cases {
		if got := c.BuildKey(tc.prefix, tc.parts...); got != tc.want {
			t.Errorf("BuildKey(%q, %v) = %q, want %q", tc.prefix, tc.parts, got, tc.want)
		}
	}
}

// A degraded cache never touches the client, so a nil client is safe here.
func TestDegradedCacheIsNoop(t *testing.T) {
	c := &CacheRepoImpl{degraded: true, logger: zap.NewNop()}
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("degraded cache must always miss")
	}
	c.Delete(ctx, "k")
	c.InvalidatePattern(ctx, "k*")
}
