package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// DefaultWeights is the stock aggregation weight map; it sums to 1.0.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"title":    0.20,
		"industry": 0.15,
		"skills":   0.30,
		"context":  0.10,
		"tenure":   0.10,
		"recency":  0.10,
		"bonus":    0.05,
	}
}

// Options tunes the hand-calibrated scoring constants. They are
// configuration, not hidden logic.
type Options struct {
	RecencyHorizonMonths int
	ContextSenses        ContextSenses
}

// DefaultOptions returns the stock scoring constants.
func DefaultOptions() Options {
	return Options{
		RecencyHorizonMonths: 36,
		ContextSenses: ContextSenses{
			HiringSentence:    "Work that involves hiring candidates, owning requisitions, sourcing, interviewing, offers.",
			RecruitedSentence: "Being a job applicant or being recruited by a company.",
			Penalty:           0.2,
		},
	}
}

// Scorer computes fit scores for candidates against a role. It owns no
// global state: the embedder is injected and shared by the caller.
type Scorer struct {
	embed domain.Embedder
	opts  Options
}

// NewScorer constructs a Scorer around an embedder.
func NewScorer(embed domain.Embedder, opts Options) *Scorer {
	if opts.RecencyHorizonMonths <= 0 {
		opts.RecencyHorizonMonths = 36
	}
	if opts.ContextSenses.HiringSentence == "" || opts.ContextSenses.RecruitedSentence == "" {
		def := DefaultOptions().ContextSenses
		if opts.ContextSenses.HiringSentence == "" {
			opts.ContextSenses.HiringSentence = def.HiringSentence
		}
		if opts.ContextSenses.RecruitedSentence == "" {
			opts.ContextSenses.RecruitedSentence = def.RecruitedSentence
		}
	}
	return &Scorer{embed: embed, opts: opts}
}

// memoEmbedder caches embeddings for the duration of one scoring call;
// the reference sentences and the role blob repeat across features.
type memoEmbedder struct {
	base domain.Embedder
	m    map[string][]float64
}

func (m *memoEmbedder) EmbedText(ctx domain.Context, text string) ([]float64, error) {
	if v, ok := m.m[text]; ok {
		return v, nil
	}
	v, err := m.base.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	m.m[text] = v
	return v, nil
}

// ComputeFit scores one candidate against a role. Weight precedence:
// explicit override > role-level weights > defaults. Missing candidate
// fields degrade to neutral sub-scores; only numeric contract
// violations surface as errors.
func (s *Scorer) ComputeFit(ctx domain.Context, cand domain.CandidateProfile, role domain.RoleDefinition, weights map[string]float64) (domain.FitResult, error) {
	w := DefaultWeights()
	for k, v := range role.Weights {
		w[k] = v
	}
	for k, v := range weights {
		w[k] = v
	}

	embed := &memoEmbedder{base: s.embed, m: make(map[string][]float64)}

	tscore := TitleMatchScore(cand.Titles, role.Titles, role.Level)
	iscore := IndustryScore(cand.Stints, role.Industries)

	candBlob := strings.TrimSpace(cand.SkillsBlob + "\n" + cand.BulletsBlob)
	sscore, err := SkillSemSim(ctx, role.SkillsBlob, candBlob, embed)
	if err != nil {
		return domain.FitResult{}, fmt.Errorf("op=scoring.skills: %w", err)
	}

	cpen, err := ContextPenalty(ctx, cand.BulletsBlob, embed, s.opts.ContextSenses)
	if err != nil {
		return domain.FitResult{}, fmt.Errorf("op=scoring.context: %w", err)
	}
	cscore := max(0.0, 1.0-cpen)

	avg, last, ten := TenureScores(cand.Stints, role.MinAvgMonths, role.MinLastMonths)
	rscore := RecencyScore(cand.Stints, s.opts.RecencyHorizonMonths)
	bscore := BonusScore(cand.BonusFlags)

	total := w["title"]*tscore +
		w["industry"]*iscore +
		w["skills"]*sscore +
		w["context"]*cscore +
		w["tenure"]*ten +
		w["recency"]*rscore +
		w["bonus"]*bscore
	fit := math.Round(100*total*10) / 10

	why := []string{
		fmt.Sprintf("Titles match score: %.2f (last level gap soft-penalized)", tscore),
		fmt.Sprintf("Industry relevance: %.2f", iscore),
		fmt.Sprintf("Skills semantic sim: %.2f", sscore),
		fmt.Sprintf("Context alignment: %.2f", cscore),
		fmt.Sprintf("Tenure (avg %.1f mo, last %.1f mo): %.2f", avg, last, ten),
		fmt.Sprintf("Recency: %.2f", rscore),
		fmt.Sprintf("Bonus: %.2f", bscore),
	}

	return domain.FitResult{
		Fit: fit,
		Subs: domain.SignalSet{
			Title:    tscore,
			Industry: iscore,
			Skills:   sscore,
			Context:  cscore,
			Tenure:   ten,
			Recency:  rscore,
			Bonus:    bscore,
		},
		Why: why,
	}, nil
}
