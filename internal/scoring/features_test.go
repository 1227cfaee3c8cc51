package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

func TestNewTitleMatchScore_ContainmentIsNearCertain(t *testing.T) {
	assert.GreaterOrEqual(t, NewTitleMatchScore("Senior Product Designer", "Product Designer"), 0.95)
	assert.GreaterOrEqual(t, NewTitleMatchScore("Product Designer", "Senior Product Designer"), 0.95)
}

func TestNewTitleMatchScore_AdjacentSeniorityStaysHigh(t *testing.T) {
	assert.GreaterOrEqual(t, NewTitleMatchScore("Principal Software Engineer", "Lead Software Engineer"), 0.9)
	assert.GreaterOrEqual(t, NewTitleMatchScore("Principal Software Engineer", "Senior Software Engineer"), 0.85)
}

func TestNewTitleMatchScore_TrackSwitchIsPartial(t *testing.T) {
	got := NewTitleMatchScore("Design Lead", "Design Manager")
	assert.GreaterOrEqual(t, got, 0.6)
	assert.Less(t, got, 0.95)
}

func TestNewTitleMatchScore_UnrelatedTitles(t *testing.T) {
	got := NewTitleMatchScore("Recruiter", "Product Designer")
	assert.Less(t, got, 0.5)
}

func TestNewTitleMatchScore_EmptyInput(t *testing.T) {
	assert.Zero(t, NewTitleMatchScore("", "Designer"))
	assert.Zero(t, NewTitleMatchScore("Designer", ""))
}

func TestTitleMatchScore_RecentContainmentWinsFull(t *testing.T) {
	titles := []domain.TitleLevel{
		{Title: "Senior Product Designer", Level: 3},
		{Title: "Product Designer", Level: 2},
	}
	got := TitleMatchScore(titles, []string{"product designer"}, "senior")
	assert.Equal(t, 1.0, got)
}

func TestTitleMatchScore_OnlyRecentTitlesCount(t *testing.T) {
	titles := []domain.TitleLevel{
		{Title: "Engineering Manager", Level: 6},
		{Title: "Staff Engineer", Level: 4},
		{Title: "Senior Engineer", Level: 3},
		{Title: "Product Designer", Level: 2}, // fourth, ignored for containment
	}
	full := TitleMatchScore(titles[3:], []string{"product designer"}, "")
	partial := TitleMatchScore(titles, []string{"product designer"}, "")
	assert.Equal(t, 1.0, full)
	assert.Less(t, partial, 1.0)
}

func TestTitleMatchScore_Empty(t *testing.T) {
	assert.Zero(t, TitleMatchScore(nil, []string{"designer"}, ""))
	assert.Zero(t, TitleMatchScore([]domain.TitleLevel{{Title: "designer"}}, nil, ""))
}

func TestIndustryScore_MonthsWeighted(t *testing.T) {
	stints := []domain.Stint{
		{StartDate: date(2021, 1), EndDate: date(2023, 1), IndustryTags: []string{"Web3/DeFi"}}, // 24 mo relevant
		{StartDate: date(2020, 1), EndDate: date(2021, 1), IndustryTags: []string{"Other"}},     // 12 mo
	}
	got := IndustryScore(stints, []string{"Web3/DeFi"})
	assert.InDelta(t, 24.0/36.0, got, 1e-9)
}

func TestIndustryScore_NoTargets(t *testing.T) {
	assert.Zero(t, IndustryScore([]domain.Stint{{StartDate: date(2020, 1)}}, nil))
}

func TestRecencyScore_OngoingIsFull(t *testing.T) {
	got := RecencyScore([]domain.Stint{{StartDate: date(2020, 1)}}, 36)
	assert.Equal(t, 1.0, got)
}

func TestRecencyScore_DecaysWithinHorizon(t *testing.T) {
	withFixedNow(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	// Ended 12 months ago: 1 - 12/(36*1.2)
	got := RecencyScore([]domain.Stint{{StartDate: date(2020, 1), EndDate: date(2023, 1)}}, 36)
	assert.InDelta(t, 1.0-12.0/43.2, got, 1e-9)
}

func TestRecencyScore_FlatBeyondHorizon(t *testing.T) {
	withFixedNow(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	got := RecencyScore([]domain.Stint{{StartDate: date(2015, 1), EndDate: date(2017, 1)}}, 36)
	assert.Equal(t, 0.2, got)
}

func TestRecencyScore_NoStints(t *testing.T) {
	assert.Zero(t, RecencyScore(nil, 36))
}

type countingEmbedder struct {
	calls int
	vec   []float64
}

func (c *countingEmbedder) EmbedText(_ domain.Context, _ string) ([]float64, error) {
	c.calls++
	return c.vec, nil
}

func TestSkillSemSim_EmptyBlobSkipsEmbedder(t *testing.T) {
	emb := &countingEmbedder{vec: []float64{1, 0}}
	got, err := SkillSemSim(context.Background(), "", "go python", emb)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Zero(t, emb.calls)

	got, err = SkillSemSim(context.Background(), "go python", "   ", emb)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Zero(t, emb.calls)
}

func TestSkillSemSim_UsesCosine(t *testing.T) {
	emb := &countingEmbedder{vec: []float64{1, 0}}
	got, err := SkillSemSim(context.Background(), "go", "golang", emb)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
	assert.Equal(t, 2, emb.calls)
}

// senseEmbedder returns distinct vectors per reference sentence so the
// context comparison is controllable.
type senseEmbedder struct {
	senses ContextSenses
	text   []float64
}

func (s *senseEmbedder) EmbedText(_ domain.Context, text string) ([]float64, error) {
	switch text {
	case s.senses.HiringSentence:
		return []float64{1, 0}, nil
	case s.senses.RecruitedSentence:
		return []float64{0, 1}, nil
	}
	return s.text, nil
}

func TestContextPenalty_RecruitedSenseCloser(t *testing.T) {
	senses := DefaultOptions().ContextSenses
	emb := &senseEmbedder{senses: senses, text: []float64{0.1, 0.9}}
	got, err := ContextPenalty(context.Background(), "was recruited into the role", emb, senses)
	require.NoError(t, err)
	assert.Equal(t, senses.Penalty, got)
}

func TestContextPenalty_HiringSenseCloser(t *testing.T) {
	senses := DefaultOptions().ContextSenses
	emb := &senseEmbedder{senses: senses, text: []float64{0.9, 0.1}}
	got, err := ContextPenalty(context.Background(), "owned requisitions and made offers", emb, senses)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestContextPenalty_EmptyText(t *testing.T) {
	senses := DefaultOptions().ContextSenses
	got, err := ContextPenalty(context.Background(), "  ", nil, senses)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestBonusScore_CappedAtTenth(t *testing.T) {
	assert.Equal(t, 0.1, BonusScore([]float64{0.05, 0.05, 0.05}))
	assert.InDelta(t, 0.07, BonusScore([]float64{0.05, 0.02}), 1e-12)
	assert.Zero(t, BonusScore(nil))
	assert.Zero(t, BonusScore([]float64{-0.5}))
}
