package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// flakyProvider fails a fixed number of calls before succeeding.
type flakyProvider struct {
	failures int
	calls    int
	dim      int
}

func (p *flakyProvider) Name() string   { return "flaky" }
func (p *flakyProvider) Model() string  { return "flaky-1" }
func (p *flakyProvider) Dimension() int { return p.dim }
func (p *flakyProvider) EmbedBatch(_ domain.Context, texts []string) ([][]float64, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("upstream reset")
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		vec := make([]float64, p.dim)
		vec[0] = 1
		out[i] = vec
	}
	return out, nil
}

func fastBackoff(attempts uint64) BackoffConfig {
	return BackoffConfig{
		MaxElapsedTime:  time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
		MaxAttempts:     attempts,
	}
}

func TestResilientProvider_RetriesThenSucceeds(t *testing.T) {
	primary := &flakyProvider{failures: 2, dim: 4}
	rp := NewResilientProvider(primary, fastBackoff(5))
	out, err := rp.EmbedBatch(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0][0])
	assert.Equal(t, 3, primary.calls)
}

func TestResilientProvider_FallsBackAfterExhaustion(t *testing.T) {
	primary := &flakyProvider{failures: 100, dim: 4}
	rp := NewResilientProvider(primary, fastBackoff(3))
	out, err := rp.EmbedBatch(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0], 4)
	assert.Equal(t, 3, primary.calls)

	// Fallback output matches the deterministic provider exactly.
	want, err := NewDeterministicProvider(4, DefaultSalt).EmbedBatch(context.Background(), []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, want, out)
}

func TestResilientProvider_CheckedReportsFallback(t *testing.T) {
	primary := &flakyProvider{failures: 100, dim: 4}
	rp := NewResilientProvider(primary, fastBackoff(2))

	_, fromFallback, err := rp.EmbedBatchChecked(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.True(t, fromFallback)

	primary.failures = 0
	_, fromFallback, err = rp.EmbedBatchChecked(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.False(t, fromFallback)
}

func TestResilientProvider_KeepsPrimaryIdentity(t *testing.T) {
	rp := NewResilientProvider(&flakyProvider{dim: 8}, fastBackoff(1))
	assert.Equal(t, "flaky", rp.Name())
	assert.Equal(t, "flaky-1", rp.Model())
	assert.Equal(t, 8, rp.Dimension())
}
