package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestStore_RoundTrip(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	vecs := map[string][]float64{
		"go sql":    {0.1, 0.2, 0.3},
		"design ux": {0.4, 0.5, 0.6},
	}
	require.NoError(t, st.Put(ctx, "ollama", "nomic", vecs))

	got, err := st.Get(ctx, "ollama", "nomic", []string{"go sql", "design ux", "absent"})
	require.NoError(t, err)
	assert.Equal(t, vecs["go sql"], got["go sql"])
	assert.Equal(t, vecs["design ux"], got["design ux"])
	_, present := got["absent"]
	assert.False(t, present)
}

func TestStore_KeyedByProviderAndModel(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "ollama", "nomic", map[string][]float64{"t": {1}}))

	got, err := st.Get(ctx, "ollama", "other-model", []string{"t"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = st.Get(ctx, "openai", "nomic", []string{"t"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ReplaceUpdatesVector(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "p", "m", map[string][]float64{"t": {1, 2}}))
	require.NoError(t, st.Put(ctx, "p", "m", map[string][]float64{"t": {3, 4}}))

	got, err := st.Get(ctx, "p", "m", []string{"t"})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, got["t"])
}

func TestStore_CorruptRowIsMiss(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	_, err := st.db.ExecContext(ctx, "INSERT INTO cache(provider, model, text, dim, vector) VALUES (?,?,?,?,?)",
		"p", "m", "bad", 3, []byte("not json"))
	require.NoError(t, err)
	// Stored dim disagreeing with the vector is also a miss.
	_, err = st.db.ExecContext(ctx, "INSERT INTO cache(provider, model, text, dim, vector) VALUES (?,?,?,?,?)",
		"p", "m", "short", 5, []byte("[1,2]"))
	require.NoError(t, err)

	got, err := st.Get(ctx, "p", "m", []string{"bad", "short"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_EmptyArgs(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()

	got, err := st.Get(ctx, "p", "m", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, st.Put(ctx, "p", "m", nil))
}

func TestOpen_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}
