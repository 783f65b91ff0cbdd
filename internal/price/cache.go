package price

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/papertrade/ledger/internal/domain"
)

type cacheEntry struct {
	quote     Quote
	expiresAt time.Time
}

// Cache is an Oracle decorator that memoizes quotes for a TTL. It
// serves the read path only (valuation, quote display); trade and
// check pricing must use the wrapped oracle directly so executions
// never settle on a stale quote.
type Cache struct {
	next Oracle
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache wraps next with a TTL quote cache.
func NewCache(next Oracle, ttl time.Duration) *Cache {
	return &Cache{
		next:    next,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(assetType domain.AssetType, assetID string) string {
	return fmt.Sprintf("%s:%s", assetType, assetID)
}

func (c *Cache) GetPrice(ctx context.Context, assetType domain.AssetType, assetID string) (Quote, error) {
	key := cacheKey(assetType, assetID)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.quote, nil
	}

	quote, err := c.next.GetPrice(ctx, assetType, assetID)
	if err != nil {
		// Failures are not cached; the next caller retries the feed.
		return Quote{}, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{quote: quote, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return quote, nil
}

// Warmer pre-fetches a fixed watch list through an oracle so the cache
// stays hot between user requests. It implements the quote worker's
// refresh contract.
type Warmer struct {
	oracle Oracle
	watch  []domain.AssetKey
}

// NewWarmer creates a warmer for the given watch list.
func NewWarmer(oracle Oracle, watch []domain.AssetKey) *Warmer {
	return &Warmer{oracle: oracle, watch: watch}
}

// Refresh fetches every watched asset once. Individual failures are
// collected, not fatal, so one dead feed cannot starve the others.
func (w *Warmer) Refresh(ctx context.Context) error {
	var firstErr error
	for _, key := range w.watch {
		if _, err := w.oracle.GetPrice(ctx, key.Type, key.ID); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("warming %s/%s: %w", key.Type, key.ID, err)
		}
	}
	return firstErr
}
