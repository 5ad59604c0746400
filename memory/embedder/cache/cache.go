// Package cache wraps any Embedder with a ristretto cache so repeated
// queries skip the model.
package cache

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/elenia-ai/elenia-go-sdk/memory"
)

// Config sizes the underlying ristretto cache.
type Config struct {
	// MaxCostBytes bounds total cached vector bytes (default 32 MiB).
	MaxCostBytes int64

	// NumCounters is ristretto's frequency-sketch size (default 100k).
	NumCounters int64
}

// Embedder is a caching decorator over another memory.Embedder.
// Embeddings are deterministic per text, so cached vectors never go stale.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New wraps inner with an embedding cache.
func New(inner memory.Embedder, cfg Config) (*Embedder, error) {
	if cfg.MaxCostBytes <= 0 {
		cfg.MaxCostBytes = 32 << 20
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = 100_000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Embedder{inner: inner, cache: c}, nil
}

// Embed implements memory.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		if vec, ok := v.([]float32); ok {
			out := make([]float32, len(vec))
			copy(out, vec)
			return out, nil
		}
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	stored := make([]float32, len(vec))
	copy(stored, vec)
	e.cache.Set(text, stored, int64(len(stored)*4))
	return vec, nil
}

// Dimensions implements memory.Embedder.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Wait blocks until pending cache writes are applied. Only tests need it.
func (e *Embedder) Wait() {
	e.cache.Wait()
}

// Close releases the cache.
func (e *Embedder) Close() {
	e.cache.Close()
}
