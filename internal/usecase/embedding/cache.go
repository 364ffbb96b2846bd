package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/assessrec/internal/domain"
	"github.com/kailas-cloud/assessrec/internal/metrics"
)

// QueryCache keeps recent query vectors in process memory.
// Batch calls pass through uncached; they only happen at corpus build time.
type QueryCache struct {
	inner domain.Embedder
	cache *lru.Cache[string, []float32]
}

// NewQueryCache wraps inner with an LRU of the given size.
func NewQueryCache(inner domain.Embedder, size int) (*QueryCache, error) {
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &QueryCache{inner: inner, cache: c}, nil
}

// Embed returns a cached vector or delegates. Cached hits report zero tokens.
func (q *QueryCache) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if vec, ok := q.cache.Get(text); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("memory", "hit").Inc()
		return domain.EmbeddingResult{Embedding: append([]float32(nil), vec...)}, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("memory", "miss").Inc()

	res, err := q.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("cache miss embed: %w", err)
	}
	q.cache.Add(text, append([]float32(nil), res.Embedding...))
	return res, nil
}

// BatchEmbed delegates to the inner embedder.
func (q *QueryCache) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	res, err := domain.EmbedAll(ctx, q.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("cache batch embed: %w", err)
	}
	return res, nil
}

// Len returns the number of cached vectors.
func (q *QueryCache) Len() int { return q.cache.Len() }
