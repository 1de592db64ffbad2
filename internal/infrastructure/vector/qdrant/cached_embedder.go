package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/ats-match-engine/internal/core/ports"
)

// CachedEmbedder fronts the embedding backend with the qdrant cache. Cache
// reads and writes are best effort; any cache error falls through to the
// backend so scoring never depends on the cache being up.
type CachedEmbedder struct {
	inner ports.Embedder
	cache *Cache
	model string
}

func NewCachedEmbedder(inner ports.Embedder, cache *Cache, model string) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, model: model}
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ids := make([]string, len(texts))
	for i, text := range texts {
		ids[i] = PointID(e.model, text)
	}

	cached, err := e.cache.Get(ctx, ids)
	if err != nil {
		slog.Warn("embedding_cache_lookup_failed", slog.Any("error", err))
		cached = map[string][]float32{}
	}

	vectors := make([][]float32, len(texts))
	var missingIdx []int
	var missingTexts []string
	for i, id := range ids {
		if vec, ok := cached[id]; ok {
			vectors[i] = vec
			continue
		}
		missingIdx = append(missingIdx, i)
		missingTexts = append(missingTexts, texts[i])
	}

	if len(missingTexts) == 0 {
		return vectors, nil
	}

	fresh, err := e.inner.Embed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missingTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missingTexts))
	}

	putIDs := make([]string, len(missingIdx))
	for j, i := range missingIdx {
		vectors[i] = fresh[j]
		putIDs[j] = ids[i]
	}
	if err := e.cache.Put(ctx, putIDs, fresh); err != nil {
		slog.Warn("embedding_cache_store_failed", slog.Any("error", err))
	}

	return vectors, nil
}

func (e *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one vector, got %d", len(vectors))
	}
	return vectors[0], nil
}
