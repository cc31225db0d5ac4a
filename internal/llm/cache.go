package llm

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder decorates an Embedder with an LRU cache keyed by the exact
// input text. Skill vocabularies repeat heavily across requests, so most
// lookups hit the cache. The cache is safe for concurrent use.
type CachedEmbedder struct {
	delegate Embedder
	cache    *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps delegate with a cache of the given size.
func NewCachedEmbedder(delegate Embedder, size int) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{delegate: delegate, cache: cache}, nil
}

// Embed returns the cached vector when present, otherwise delegates.
// Vectors are immutable once stored; callers must not modify them.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.cache.Get(text); ok {
		return vec, nil
	}

	vec, err := e.delegate.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, vec)
	return vec, nil
}

// Close closes the underlying embedder.
func (e *CachedEmbedder) Close() error {
	return e.delegate.Close()
}

var _ Embedder = (*CachedEmbedder)(nil)
