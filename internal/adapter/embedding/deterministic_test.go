package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicProvider_BitIdentical(t *testing.T) {
	p1 := NewDeterministicProvider(64, DefaultSalt)
	p2 := NewDeterministicProvider(64, DefaultSalt)

	a, err := p1.EmbedBatch(context.Background(), []string{"senior product designer"})
	require.NoError(t, err)
	b, err := p2.EmbedBatch(context.Background(), []string{"senior product designer"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDeterministicProvider_SaltChangesSpace(t *testing.T) {
	a, err := NewDeterministicProvider(64, "v1").EmbedBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	b, err := NewDeterministicProvider(64, "v2").EmbedBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeterministicProvider_DistinctTextsDiffer(t *testing.T) {
	p := NewDeterministicProvider(64, DefaultSalt)
	out, err := p.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0], out[1])
}

func TestDeterministicProvider_UnitNorm(t *testing.T) {
	p := NewDeterministicProvider(128, DefaultSalt)
	out, err := p.EmbedBatch(context.Background(), []string{"anything at all"})
	require.NoError(t, err)
	var norm float64
	for _, v := range out[0] {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestDeterministicProvider_Identity(t *testing.T) {
	p := NewDeterministicProvider(16, "")
	assert.Equal(t, "deterministic", p.Name())
	assert.Equal(t, DefaultSalt, p.Model())
	assert.Equal(t, 16, p.Dimension())
}

func TestNormalizeText_StripsPII(t *testing.T) {
	in := "Contact Jane.Doe+cv@example.com or +1 (415) 555-0123  NOW"
	got := NormalizeText(in)
	assert.NotContains(t, got, "@")
	assert.NotContains(t, got, "555")
	assert.Equal(t, "contact or now", got)
}

func TestNormalizeText_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeText("  A \t B\n\nC "))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestChunkWords(t *testing.T) {
	assert.Nil(t, ChunkWords("", 4))
	assert.Equal(t, []string{"a b c"}, ChunkWords("a b c", 4))
	assert.Equal(t, []string{"a b", "c d", "e"}, ChunkWords("a b c d e", 2))
	assert.Equal(t, []string{"a b c"}, ChunkWords("a b c", 0))
}
