package usecase

import (
	"context"
	"slices"
	"sync"
	"time"
)

const DefaultCategoriesTTL = 6 * time.Hour

// DefaultCategories is offered whenever the ledger cannot supply a list.
var DefaultCategories = []string{
	"Comida",
	"Moradia",
	"Transporte",
	"Pessoal",
	"Higiene/Saúde",
	"Tech",
	"Carro",
	"Internet",
	"Academia",
}

type CategoryLister interface {
	ListCategories(ctx context.Context) ([]string, error)
}

// CategoryCache keeps the ledger's category list for a TTL.
type CategoryCache struct {
	source CategoryLister
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    []string
	fetchedAt time.Time
}

func NewCategoryCache(source CategoryLister, ttl time.Duration) *CategoryCache {
	if ttl <= 0 {
		ttl = DefaultCategoriesTTL
	}
	return &CategoryCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Categories never fails: a stale list beats the defaults, and the defaults
// beat an error.
func (c *CategoryCache) Categories(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.cached) > 0 && now.Sub(c.fetchedAt) < c.ttl {
		return slices.Clone(c.cached)
	}

	if c.source != nil {
		cats, err := c.source.ListCategories(ctx)
		switch {
		case err != nil:
			logger(ctx).Warn("category fetch failed", "err", err)
		case len(cats) == 0:
			logger(ctx).Warn("ledger returned no categories")
		default:
			c.cached = slices.Clone(cats)
			c.fetchedAt = now
		}
	}

	if len(c.cached) > 0 {
		return slices.Clone(c.cached)
	}
	return slices.Clone(DefaultCategories)
}
