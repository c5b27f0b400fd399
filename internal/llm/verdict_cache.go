package llm

import (
	"context"
	"time"

	"github.com/adwantgoutam/rag-evidence-coverage-evaluator/internal/cache"
)

const verdictCacheTTL = 24 * time.Hour

// CachedCompleter wraps a judge provider with verdict caching keyed by
// provider name and prompt, so re-running a batch does not re-bill
// identical judge calls. Only successful completions are cached.
type CachedCompleter struct {
	provider Provider
	store    cache.Cache
}

// NewCachedCompleter wraps provider with the given cache. A nil store
// returns the provider unchanged.
func NewCachedCompleter(provider Provider, store cache.Cache) *CachedCompleter {
	return &CachedCompleter{provider: provider, store: store}
}

// Complete serves a cached verdict when available, calling through and
// storing otherwise.
func (c *CachedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	key := cache.Key("verdict", c.provider.Name(), prompt)

	if c.store != nil {
		if data, ok := c.store.Get(key); ok {
			return string(data), nil
		}
	}

	response, err := c.provider.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if c.store != nil {
		_ = c.store.Set(key, []byte(response), verdictCacheTTL)
	}
	return response, nil
}
