package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"go.opentelemetry.io/otel"
)

// ResultRepo persists and loads scoring results from PostgreSQL.
type ResultRepo struct{ Pool PgxPool }

// NewResultRepo constructs a ResultRepo with the given pool.
func NewResultRepo(p PgxPool) *ResultRepo { return &ResultRepo{Pool: p} }

// UpsertBatch inserts or updates scored candidates keyed by (run_id, candidate_id).
func (r *ResultRepo) UpsertBatch(ctx domain.Context, runID string, results []domain.ScoredCandidate) error {
	tracer := otel.Tracer("repo.results")
	ctx, span := tracer.Start(ctx, "results.UpsertBatch")
	defer span.End()
	q := `INSERT INTO scored_results (run_id, candidate_id, fit_score, rationale, signals, name, email, title_canonical, industry_canonical, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (run_id, candidate_id)
	DO UPDATE SET fit_score=EXCLUDED.fit_score, rationale=EXCLUDED.rationale, signals=EXCLUDED.signals, name=EXCLUDED.name, email=EXCLUDED.email, title_canonical=EXCLUDED.title_canonical, industry_canonical=EXCLUDED.industry_canonical`
	now := time.Now().UTC()
	for _, res := range results {
		sig, err := json.Marshal(res.Signals)
		if err != nil {
			return fmt.Errorf("op=result.upsert: encode signals: %w", err)
		}
		_, err = r.Pool.Exec(ctx, q, runID, res.CandidateID, res.FitScore, res.Rationale, sig, res.Name, res.Email, res.TitleCanonical, res.IndustryCanonical, now)
		if err != nil {
			return fmt.Errorf("op=result.upsert: %w", err)
		}
	}
	return nil
}

// ListByRun loads all scored candidates for a run ordered by fit score descending.
func (r *ResultRepo) ListByRun(ctx domain.Context, runID string) ([]domain.ScoredCandidate, error) {
	tracer := otel.Tracer("repo.results")
	ctx, span := tracer.Start(ctx, "results.ListByRun")
	defer span.End()
	q := `SELECT candidate_id, fit_score, rationale, signals, name, email, title_canonical, industry_canonical FROM scored_results WHERE run_id=$1 ORDER BY fit_score DESC, candidate_id ASC`
	rows, err := r.Pool.Query(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("op=result.list: %w", err)
	}
	defer rows.Close()
	var out []domain.ScoredCandidate
	for rows.Next() {
		var res domain.ScoredCandidate
		var sig []byte
		if err := rows.Scan(&res.CandidateID, &res.FitScore, &res.Rationale, &sig, &res.Name, &res.Email, &res.TitleCanonical, &res.IndustryCanonical); err != nil {
			return nil, fmt.Errorf("op=result.list: scan: %w", err)
		}
		if len(sig) > 0 {
			if err := json.Unmarshal(sig, &res.Signals); err != nil {
				return nil, fmt.Errorf("op=result.list: decode signals: %w", err)
			}
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=result.list: %w", err)
	}
	return out, nil
}
