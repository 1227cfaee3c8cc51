// Package sqlite persists embedding vectors in a local SQLite database.
//
// The store runs in WAL mode so readers never block behind the single
// writer; write operations are additionally serialized with a mutex so
// concurrent cache insertions never interleave.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS cache(
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	text TEXT NOT NULL,
	dim INTEGER NOT NULL,
	vector BLOB NOT NULL,
	PRIMARY KEY(provider, model, text)
)`

// Store implements domain.VectorCache on SQLite.
type Store struct {
	db *sql.DB
	// writeMu serializes writers; reads go lock-free through WAL.
	writeMu sync.Mutex
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("op=vectorcache.Open: %w", err)
		}
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("op=vectorcache.Open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("op=vectorcache.migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns cached vectors for the given texts. Texts without an
// entry are simply absent from the result map.
func (s *Store) Get(ctx domain.Context, provider, model string, texts []string) (map[string][]float64, error) {
	out := make(map[string][]float64, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	placeholders := strings.Repeat(",?", len(texts))[1:]
	args := make([]any, 0, 2+len(texts))
	args = append(args, provider, model)
	for _, t := range texts {
		args = append(args, t)
	}
	q := fmt.Sprintf("SELECT text, dim, vector FROM cache WHERE provider=? AND model=? AND text IN (%s)", placeholders)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=vectorcache.Get: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var text string
		var dim int
		var blob []byte
		if err := rows.Scan(&text, &dim, &blob); err != nil {
			return nil, fmt.Errorf("op=vectorcache.Get: %w", err)
		}
		var vec []float64
		if err := json.Unmarshal(blob, &vec); err != nil || len(vec) != dim {
			// Corrupt or mismatched row: treat as a miss.
			continue
		}
		out[text] = vec
	}
	return out, rows.Err()
}

// Put stores vectors for later runs, replacing any existing entries.
func (s *Store) Put(ctx domain.Context, provider, model string, vectors map[string][]float64) error {
	if len(vectors) == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("op=vectorcache.Put: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "REPLACE INTO cache(provider, model, text, dim, vector) VALUES (?,?,?,?,?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("op=vectorcache.Put: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for text, vec := range vectors {
		blob, err := json.Marshal(vec)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("op=vectorcache.Put: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, provider, model, text, len(vec), blob); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("op=vectorcache.Put: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("op=vectorcache.Put: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
