package embedding

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// DefaultSalt versions the deterministic vector space. Changing it
// invalidates nothing on disk because the salt participates in the
// model id.
const DefaultSalt = "jdfit-v1"

// DeterministicProvider generates vectors purely from the input text.
// Same text, same salt: bit-identical output across runs and processes.
// It backs offline mode and the failure fallback of the resilient
// wrapper.
type DeterministicProvider struct {
	dim  int
	salt string
}

// NewDeterministicProvider constructs a provider of fixed dimension.
func NewDeterministicProvider(dim int, salt string) *DeterministicProvider {
	if salt == "" {
		salt = DefaultSalt
	}
	return &DeterministicProvider{dim: dim, salt: salt}
}

// Name implements domain.EmbeddingProvider.
func (p *DeterministicProvider) Name() string { return "deterministic" }

// Model implements domain.EmbeddingProvider.
func (p *DeterministicProvider) Model() string { return p.salt }

// Dimension implements domain.EmbeddingProvider.
func (p *DeterministicProvider) Dimension() int { return p.dim }

// EmbedBatch implements domain.EmbeddingProvider. It never fails.
func (p *DeterministicProvider) EmbedBatch(_ domain.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = p.vector(t)
	}
	return out, nil
}

// vector expands a blake2b hash of (salt, text) into dim floats via an
// LCG and L2-normalizes the result. A degenerate zero norm returns the
// zero vector explicitly rather than dividing by zero.
func (p *DeterministicProvider) vector(text string) []float64 {
	h := blake2b.Sum256([]byte(p.salt + "|" + text))
	x := binary.BigEndian.Uint64(h[:8])
	const a = 6364136223846793005
	const c = 1442695040888963407
	vec := make([]float64, p.dim)
	var norm float64
	for i := range vec {
		x = x*a + c
		// top 53 bits to [0,1), then to [-1,1)
		v := float64(x>>11)/float64(1<<53)*2 - 1
		vec[i] = v
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
