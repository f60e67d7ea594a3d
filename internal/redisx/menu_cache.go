package redisx

import (
	"context"
	"encoding/json"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/redis/go-redis/v9"
)

type MenuCache struct{ R *redis.Client }

// Get reports a miss for absent or unreadable entries.
func (c *MenuCache) Get(ctx context.Context) ([]billing.MenuItem, bool) {
	b, err := c.R.Get(ctx, KeyMenuAll).Bytes()
	if err != nil {
		return nil, false
	}
	var items []billing.MenuItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *MenuCache) Set(ctx context.Context, items []billing.MenuItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, KeyMenuAll, b, TTLMenuCache).Err()
}

func (c *MenuCache) Invalidate(ctx context.Context) error {
	return c.R.Del(ctx, KeyMenuAll).Err()
}

type MenuLister interface {
	ListMenu(ctx context.Context, category string) ([]billing.MenuItem, error)
}

// CachedMenu serves menu reads from the cache, loading the full menu from
// Source on a miss. Writers must call Cache.Invalidate.
type CachedMenu struct {
	Source MenuLister
	Cache  *MenuCache
}

func (m *CachedMenu) ListMenu(ctx context.Context, category string) ([]billing.MenuItem, error) {
	items, ok := m.Cache.Get(ctx)
	if !ok {
		var err error
		if items, err = m.Source.ListMenu(ctx, ""); err != nil {
			return nil, err
		}
		_ = m.Cache.Set(ctx, items)
	}
	if category == "" {
		return items, nil
	}
	out := make([]billing.MenuItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}
