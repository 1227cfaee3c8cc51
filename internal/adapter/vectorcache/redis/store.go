// Package redis provides a Redis-backed vector cache for deployments
// that already run Redis next to the scoring workers.
package redis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// Store implements domain.VectorCache on Redis. Entries carry no TTL:
// text to vector is deterministic per model, so stale entries cannot
// exist.
type Store struct {
	rdb *goredis.Client
}

// New constructs a Store around an address.
func New(addr string) *Store {
	return &Store{rdb: goredis.NewClient(&goredis.Options{Addr: addr})}
}

// NewWithClient wraps an existing client; used by tests with miniredis.
func NewWithClient(rdb *goredis.Client) *Store { return &Store{rdb: rdb} }

// keyFor hashes the normalized text so arbitrarily long blobs produce
// bounded keys.
func keyFor(provider, model, text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("jdfit:emb:%s:%s:%s", provider, model, hex.EncodeToString(h[:]))
}

// Get returns cached vectors for the given texts.
func (s *Store) Get(ctx domain.Context, provider, model string, texts []string) (map[string][]float64, error) {
	out := make(map[string][]float64, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = keyFor(provider, model, t)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("op=vectorcache.redis.Get: %w", err)
	}
	for i, raw := range vals {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var vec []float64
		if err := json.Unmarshal([]byte(str), &vec); err != nil {
			continue
		}
		out[texts[i]] = vec
	}
	return out, nil
}

// Put stores vectors, replacing any existing entries.
func (s *Store) Put(ctx domain.Context, provider, model string, vectors map[string][]float64) error {
	if len(vectors) == 0 {
		return nil
	}
	pipe := s.rdb.Pipeline()
	for text, vec := range vectors {
		blob, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("op=vectorcache.redis.Put: %w", err)
		}
		pipe.Set(ctx, keyFor(provider, model, text), blob, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("op=vectorcache.redis.Put: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (s *Store) Close() error { return s.rdb.Close() }
