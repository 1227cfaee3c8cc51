package embedding

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// Service is the cached embedder behind every embedding-dependent
// feature. It normalizes text, consults the persistent cache, and on a
// miss chunks, embeds, mean-pools, validates, and writes back. It is an
// explicitly constructed service object owned by the batch runner, not
// a module-level singleton.
type Service struct {
	provider   domain.EmbeddingProvider
	cache      domain.VectorCache
	chunkWords int
	maxBatch   int
}

// NewService wires a provider to an optional cache. A nil cache disables
// persistence but keeps every other guarantee. maxBatch caps the number
// of texts sent to the provider in one call.
func NewService(provider domain.EmbeddingProvider, cache domain.VectorCache, chunkWords, maxBatch int) *Service {
	if chunkWords <= 0 {
		chunkWords = 256
	}
	if maxBatch <= 0 {
		maxBatch = 256
	}
	return &Service{provider: provider, cache: cache, chunkWords: chunkWords, maxBatch: maxBatch}
}

// EmbedText implements domain.Embedder. Empty text maps to a zero vector
// without any provider call. Cached vectors whose dimension no longer
// matches the provider are treated as misses, never truncated or padded.
func (s *Service) EmbedText(ctx domain.Context, text string) ([]float64, error) {
	dim := s.provider.Dimension()
	norm := NormalizeText(text)
	if norm == "" {
		return make([]float64, dim), nil
	}

	if s.cache != nil {
		hits, err := s.cache.Get(ctx, s.provider.Name(), s.provider.Model(), []string{norm})
		if err != nil {
			slog.Warn("vector cache read failed", slog.Any("error", err))
		} else if vec, ok := hits[norm]; ok && len(vec) == dim {
			observability.EmbedCacheHit()
			return vec, nil
		}
		observability.EmbedCacheMiss()
	}

	chunks := ChunkWords(norm, s.chunkWords)
	vecs := make([][]float64, 0, len(chunks))
	degraded := false
	for start := 0; start < len(chunks); start += s.maxBatch {
		end := min(start+s.maxBatch, len(chunks))
		batch, fromFallback, err := s.embedBatch(ctx, chunks[start:end])
		if err != nil {
			return nil, fmt.Errorf("op=embedding.EmbedText: %w", err)
		}
		degraded = degraded || fromFallback
		vecs = append(vecs, batch...)
	}
	if len(vecs) != len(chunks) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d chunks", domain.ErrDimensionMismatch, len(vecs), len(chunks))
	}
	for _, v := range vecs {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: chunk vector has %d dims, want %d", domain.ErrDimensionMismatch, len(v), dim)
		}
	}
	pooled := meanPool(vecs, dim)

	// Fallback-served vectors never enter the cache: the key carries the
	// primary's identity and must only ever hold the primary's output.
	if s.cache != nil && !degraded {
		if err := s.cache.Put(ctx, s.provider.Name(), s.provider.Model(), map[string][]float64{norm: pooled}); err != nil {
			slog.Warn("vector cache write failed", slog.Any("error", err))
		}
	}
	return pooled, nil
}

// fallbackAware is implemented by providers that can report a batch was
// served by a degraded fallback rather than the primary.
type fallbackAware interface {
	EmbedBatchChecked(ctx domain.Context, texts []string) ([][]float64, bool, error)
}

func (s *Service) embedBatch(ctx domain.Context, texts []string) ([][]float64, bool, error) {
	if fa, ok := s.provider.(fallbackAware); ok {
		return fa.EmbedBatchChecked(ctx, texts)
	}
	vecs, err := s.provider.EmbedBatch(ctx, texts)
	return vecs, false, err
}

// meanPool averages chunk vectors into one result vector.
func meanPool(vecs [][]float64, dim int) []float64 {
	out := make([]float64, dim)
	if len(vecs) == 0 {
		return out
	}
	for _, v := range vecs {
		for i := range out {
			out[i] += v[i]
		}
	}
	n := float64(len(vecs))
	for i := range out {
		out[i] /= n
	}
	return out
}
