package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

func date(y int, m time.Month) *time.Time {
	d := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return &d
}

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func TestMonthsBetween(t *testing.T) {
	m, err := MonthsBetween(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 12, m)

	m, err = MonthsBetween(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	_, err = MonthsBetween(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTenureScores_MeetsMinimums(t *testing.T) {
	stints := []domain.Stint{
		{StartDate: date(2020, 1), EndDate: date(2023, 1)}, // 36 months
	}
	avg, last, score := TenureScores(stints, 18, 12)
	assert.Equal(t, 36.0, avg)
	assert.Equal(t, 36.0, last)
	assert.Equal(t, 1.0, score)
}

func TestTenureScores_Blend(t *testing.T) {
	stints := []domain.Stint{
		{StartDate: date(2022, 1), EndDate: date(2022, 7)},  // 6 months, most recent
		{StartDate: date(2019, 1), EndDate: date(2021, 1)},  // 24 months
	}
	avg, last, score := TenureScores(stints, 18, 12)
	assert.Equal(t, 15.0, avg)
	assert.Equal(t, 6.0, last)
	// 0.6*(15/18) + 0.4*(6/12)
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestTenureScores_NoDatedStints(t *testing.T) {
	avg, last, score := TenureScores([]domain.Stint{{Title: "designer"}}, 18, 12)
	assert.Zero(t, avg)
	assert.Zero(t, last)
	assert.Zero(t, score)
}

func TestTenureScores_OngoingStintUsesToday(t *testing.T) {
	withFixedNow(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	stints := []domain.Stint{{StartDate: date(2023, 1)}}
	avg, last, _ := TenureScores(stints, 18, 12)
	assert.Equal(t, 12.0, avg)
	assert.Equal(t, 12.0, last)
}

func TestTenureScores_ZeroMinimumsNeutral(t *testing.T) {
	stints := []domain.Stint{{StartDate: date(2023, 1), EndDate: date(2023, 2)}}
	_, _, score := TenureScores(stints, 0, 0)
	assert.Equal(t, 1.0, score)
}

func TestUnionIntervals_MergesOverlapAndSmallGaps(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time {
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}
	ranges := []Interval{
		{Start: d(2020, 6, 1), End: d(2020, 12, 1)},
		{Start: d(2020, 1, 1), End: d(2020, 7, 1)},
		{Start: d(2020, 12, 15), End: d(2021, 3, 1)}, // 14 day gap
		{Start: d(2022, 1, 1), End: d(2022, 6, 1)},   // far gap, stays separate
	}
	merged := UnionIntervals(ranges, 30)
	require.Len(t, merged, 2)
	assert.Equal(t, d(2020, 1, 1), merged[0].Start)
	assert.Equal(t, d(2021, 3, 1), merged[0].End)
	assert.Equal(t, d(2022, 1, 1), merged[1].Start)
}

func TestUnionIntervals_Empty(t *testing.T) {
	assert.Nil(t, UnionIntervals(nil, 30))
}
