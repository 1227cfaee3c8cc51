package usecase

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// BatchService scores a slice of candidates against one role using a
// bounded worker pool. A candidate failure never aborts the run.
type BatchService struct {
	Score   ScoreService
	Results domain.ResultRepository // optional
	Workers int
}

// NewBatchService constructs a BatchService. Results may be nil when
// persistence is disabled.
func NewBatchService(score ScoreService, results domain.ResultRepository, workers int) BatchService {
	if workers <= 0 {
		workers = 4
	}
	return BatchService{Score: score, Results: results, Workers: workers}
}

// BatchOutcome reports a finished run.
type BatchOutcome struct {
	RunID  string                   `json:"run_id"`
	Scored []domain.ScoredCandidate `json:"scored"`
	Failed int                      `json:"failed"`
	Errors []string                 `json:"errors,omitempty"`
}

// Run scores all candidates and returns the outcome ordered by fit
// descending. When a result repository is configured the scored rows are
// persisted under the generated run id.
func (s BatchService) Run(ctx domain.Context, cands []domain.CandidateProfile, role domain.RoleDefinition, weights map[string]float64) (BatchOutcome, error) {
	runID := uuid.NewString()
	type job struct {
		idx  int
		cand domain.CandidateProfile
	}
	jobs := make(chan job)
	scored := make([]domain.ScoredCandidate, len(cands))
	ok := make([]bool, len(cands))
	errs := make([]string, len(cands))

	var wg sync.WaitGroup
	for w := 0; w < s.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := s.Score.Score(ctx, j.cand, role, weights)
				if err != nil {
					errs[j.idx] = err.Error()
					slog.Warn("candidate scoring failed",
						slog.String("run_id", runID),
						slog.String("candidate_id", j.cand.CandidateID),
						slog.Any("error", err))
					continue
				}
				scored[j.idx] = res
				ok[j.idx] = true
			}
		}()
	}
feed:
	for i, c := range cands {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{idx: i, cand: c}:
		}
	}
	close(jobs)
	wg.Wait()

	out := BatchOutcome{RunID: runID}
	for i := range cands {
		if ok[i] {
			out.Scored = append(out.Scored, scored[i])
		} else {
			out.Failed++
			if errs[i] != "" {
				out.Errors = append(out.Errors, errs[i])
			}
		}
	}
	sort.SliceStable(out.Scored, func(a, b int) bool {
		if out.Scored[a].FitScore != out.Scored[b].FitScore {
			return out.Scored[a].FitScore > out.Scored[b].FitScore
		}
		return out.Scored[a].CandidateID < out.Scored[b].CandidateID
	})
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if s.Results != nil && len(out.Scored) > 0 {
		if err := s.Results.UpsertBatch(ctx, runID, out.Scored); err != nil {
			slog.Error("persist batch results", slog.String("run_id", runID), slog.Any("error", err))
			return out, err
		}
	}
	slog.Info("batch run complete",
		slog.String("run_id", runID),
		slog.Int("scored", len(out.Scored)),
		slog.Int("failed", out.Failed))
	return out, nil
}
