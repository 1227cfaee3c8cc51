package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// timeNow is overridable in tests so recency and open-ended duration
// math stays deterministic.
var timeNow = time.Now

// MonthsBetween returns whole months between two dates measured on
// first-of-month boundaries.
func MonthsBetween(a, b time.Time) (int, error) {
	if a.After(b) {
		return 0, fmt.Errorf("%w: start date must not exceed end date", domain.ErrInvalidArgument)
	}
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month()), nil
}

// stintMonths returns the duration of a stint in months. A nil end date
// means the stint is ongoing and today is the effective end. Stints
// without a start date contribute zero.
func stintMonths(s domain.Stint) int {
	if s.StartDate == nil {
		return 0
	}
	end := timeNow().UTC()
	if s.EndDate != nil {
		end = *s.EndDate
	}
	m, err := MonthsBetween(*s.StartDate, end)
	if err != nil {
		return 0
	}
	return m
}

// Interval is a closed date range used for tenure merging.
type Interval struct {
	Start time.Time
	End   time.Time
}

// UnionIntervals merges overlapping or near-adjacent ranges. Gaps of at
// most toleranceDays are bridged so short employment breaks do not split
// one logical tenure.
func UnionIntervals(ranges []Interval, toleranceDays int) []Interval {
	if len(ranges) == 0 {
		return nil
	}
	if toleranceDays < 0 {
		toleranceDays = 0
	}
	sorted := make([]Interval, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].End.Before(sorted[j].End)
		}
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]Interval, 0, len(sorted))
	cur := sorted[0]
	for _, r := range sorted[1:] {
		if !r.Start.After(cur.End) {
			if r.End.After(cur.End) {
				cur.End = r.End
			}
			continue
		}
		gap := r.Start.Sub(cur.End).Hours() / 24
		if gap <= float64(toleranceDays) {
			if r.End.After(cur.End) {
				cur.End = r.End
			}
			continue
		}
		merged = append(merged, cur)
		cur = r
	}
	return append(merged, cur)
}

// TenureScores computes average and most-recent stint length in months
// plus the blended tenure score 0.6*avg + 0.4*last against the role
// minimums. Candidates with no dated stints score (0, 0, 0).
func TenureScores(stints []domain.Stint, minAvgMonths, minLastMonths float64) (avg, last, score float64) {
	months := make([]float64, 0, len(stints))
	for _, s := range stints {
		if s.StartDate == nil {
			continue
		}
		months = append(months, float64(stintMonths(s)))
	}
	if len(months) == 0 {
		return 0, 0, 0
	}
	var total float64
	for _, m := range months {
		total += m
	}
	avg = total / float64(len(months))
	last = months[0]

	avgScore := 1.0
	if minAvgMonths > 0 {
		avgScore = min(1.0, avg/minAvgMonths)
	}
	lastScore := 1.0
	if minLastMonths > 0 {
		lastScore = min(1.0, last/minLastMonths)
	}
	return avg, last, 0.6*avgScore + 0.4*lastScore
}
