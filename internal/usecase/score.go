// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"log/slog"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/normalize"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/scoring"
)

// ScoreService normalizes a candidate, computes the weighted fit against a
// role, and attaches the rationale text.
type ScoreService struct {
	Scorer     *scoring.Scorer
	Normalizer *normalize.Normalizer
}

// NewScoreService constructs a ScoreService with its dependencies.
func NewScoreService(sc *scoring.Scorer, nm *normalize.Normalizer) ScoreService {
	return ScoreService{Scorer: sc, Normalizer: nm}
}

// Score evaluates one candidate against one role. The caller's weight map,
// when non-nil, overrides the role's weights which override the defaults.
func (s ScoreService) Score(ctx domain.Context, cand domain.CandidateProfile, role domain.RoleDefinition, weights map[string]float64) (domain.ScoredCandidate, error) {
	if len(role.Titles) == 0 && role.SkillsBlob == "" {
		observability.ScoreFailed()
		return domain.ScoredCandidate{}, fmt.Errorf("%w: role has no titles and no skills", domain.ErrInvalidArgument)
	}
	normCand := cand
	normCand.Stints = s.Normalizer.NormalizeStints(ctx, cand.Stints)
	normRole := role
	normRole.Industries = targetIndustryBuckets(s.Normalizer, role.Industries)
	res, err := s.Scorer.ComputeFit(ctx, normCand, normRole, weights)
	if err != nil {
		observability.ScoreFailed()
		return domain.ScoredCandidate{}, err
	}
	observability.ObserveFit(res.Fit)
	out := domain.ScoredCandidate{
		CandidateID: cand.CandidateID,
		FitScore:    res.Fit,
		Rationale:   scoring.BuildRationale(res.Subs.Map()),
		Signals:     res.Subs,
		Name:        cand.Name,
	}
	if len(cand.Emails) > 0 {
		out.Email = cand.Emails[0]
	}
	if len(normCand.Stints) > 0 {
		latest := normCand.Stints[0]
		out.TitleCanonical = latest.Title
		if len(latest.IndustryTags) > 0 {
			out.IndustryCanonical = latest.IndustryTags[0]
		}
	}
	slog.Debug("candidate scored", slog.String("candidate_id", cand.CandidateID), slog.Float64("fit", res.Fit))
	return out, nil
}

// targetIndustryBuckets maps the role's raw industry terms through the
// same vocabulary the stint tags are normalized with, so both sides of
// the industry match speak in bucket names. Terms outside every bucket
// are dropped rather than turned into a catch-all target.
func targetIndustryBuckets(n *normalize.Normalizer, industries []string) []string {
	buckets := n.NormalizeIndustries(industries)
	out := buckets[:0]
	for _, b := range buckets {
		if b != normalize.OtherBucket {
			out = append(out, b)
		}
	}
	return out
}
