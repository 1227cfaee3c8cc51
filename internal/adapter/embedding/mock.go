package embedding

import (
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// MockProvider returns zero vectors. It exists for tests that assert on
// call counts or plumbing rather than vector content.
type MockProvider struct {
	dim   int
	Calls int
}

// NewMockProvider constructs a zero-vector provider of fixed dimension.
func NewMockProvider(dim int) *MockProvider { return &MockProvider{dim: dim} }

// Name implements domain.EmbeddingProvider.
func (p *MockProvider) Name() string { return "mock" }

// Model implements domain.EmbeddingProvider.
func (p *MockProvider) Model() string { return "mock" }

// Dimension implements domain.EmbeddingProvider.
func (p *MockProvider) Dimension() int { return p.dim }

// EmbedBatch implements domain.EmbeddingProvider.
func (p *MockProvider) EmbedBatch(_ domain.Context, texts []string) ([][]float64, error) {
	p.Calls++
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = make([]float64, p.dim)
	}
	return out, nil
}
