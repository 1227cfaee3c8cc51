package scoring

import (
	"strings"
	"unicode"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// Seniority ladder used for level-gap penalties. Lead sits on the staff
// rung of the IC track; manager and above are the management track.
var levelLadder = map[string]int{
	"intern":    0,
	"junior":    1,
	"associate": 1,
	"mid":       2,
	"ic":        2,
	"senior":    3,
	"sr":        3,
	"staff":     4,
	"lead":      4,
	"principal": 5,
	"manager":   6,
	"head":      7,
	"director":  7,
	"vp":        8,
}

// levelGapScore maps the absolute seniority gap to a soft penalty.
func levelGapScore(gap int) float64 {
	switch {
	case gap <= 0:
		return 1.0
	case gap == 1:
		return 0.85
	case gap == 2:
		return 0.6
	default:
		return 0.3
	}
}

func titleTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// titleParts splits a title into its role tokens and its seniority
// level. Level is -1 when no ladder token is present.
func titleParts(s string) (role []string, level int) {
	level = -1
	for _, tok := range titleTokens(s) {
		if lvl, ok := levelLadder[tok]; ok {
			if lvl > level {
				level = lvl
			}
			continue
		}
		role = append(role, tok)
	}
	return role, level
}

func cleanTitle(s string) string {
	return strings.Join(titleTokens(s), " ")
}

// NewTitleMatchScore scores how well one title matches another. Raw
// containment in either direction is a near-certain match softened only
// by the seniority gap; otherwise the score blends role-token overlap
// with the level-gap penalty as 0.7*overlap + 0.3*level.
func NewTitleMatchScore(a, b string) float64 {
	ca, cb := cleanTitle(a), cleanTitle(b)
	if ca == "" || cb == "" {
		return 0
	}
	_, la := titleParts(a)
	_, lb := titleParts(b)
	lvl := 1.0
	if la >= 0 && lb >= 0 {
		lvl = levelGapScore(abs(la - lb))
	}
	if strings.Contains(ca, cb) || strings.Contains(cb, ca) {
		return 0.95 + 0.05*lvl
	}
	ra, _ := titleParts(a)
	rb, _ := titleParts(b)
	return 0.7*tokenOverlap(ra, rb) + 0.3*lvl
}

// tokenOverlap is |intersection| / min(|a|, |b|).
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	var common int
	seen := make(map[string]struct{}, len(b))
	for _, t := range b {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := set[t]; ok {
			common++
		}
	}
	return float64(common) / float64(min(len(set), len(seen)))
}

// TitleMatchScore scores a candidate's recent titles against the role's
// acceptable titles. Containment against any of the three most recent
// titles is a full role match; otherwise the best pairwise blend is
// used. The final score is 0.7*role + 0.3*level.
func TitleMatchScore(titles []domain.TitleLevel, targetTitles []string, targetLevel string) float64 {
	if len(titles) == 0 || len(targetTitles) == 0 {
		return 0
	}
	recent := titles
	if len(recent) > 3 {
		recent = recent[:3]
	}
	for _, tl := range recent {
		ct := cleanTitle(tl.Title)
		if ct == "" {
			continue
		}
		for _, target := range targetTitles {
			tt := cleanTitle(target)
			if tt == "" {
				continue
			}
			if strings.Contains(ct, tt) || strings.Contains(tt, ct) {
				return 0.7 + 0.3*targetLevelScore(titles[0].Level, targetLevel)
			}
		}
	}
	var best float64
	for _, tl := range recent {
		for _, target := range targetTitles {
			if s := NewTitleMatchScore(tl.Title, target); s > best {
				best = s
			}
		}
	}
	return best
}

// targetLevelScore compares the candidate's most recent seniority level
// against the role's target level string. Roles without a target level
// are neutral.
func targetLevelScore(candidateLevel int, targetLevel string) float64 {
	target := strings.ToLower(strings.TrimSpace(targetLevel))
	if target == "" {
		return 1.0
	}
	lvl, ok := levelLadder[target]
	if !ok {
		lvl = 3
	}
	return levelGapScore(abs(candidateLevel - lvl))
}

// IndustryScore is the ratio of months spent in any target industry to
// total months employed, over date-bounded stints. Open-ended stints use
// today as the effective end.
func IndustryScore(stints []domain.Stint, targetTags []string) float64 {
	if len(stints) == 0 || len(targetTags) == 0 {
		return 0
	}
	targets := make(map[string]struct{}, len(targetTags))
	for _, t := range targetTags {
		targets[t] = struct{}{}
	}
	var relevant, total float64
	for _, s := range stints {
		m := float64(stintMonths(s))
		total += m
		for _, tag := range s.IndustryTags {
			if _, ok := targets[tag]; ok {
				relevant += m
				break
			}
		}
	}
	if total == 0 {
		return 0
	}
	return relevant / total
}

// RecencyScore rewards candidates whose most recent stint is current.
// Ongoing stints score 1.0; ended stints decay linearly as
// 1 - months/(horizon*1.2) within the horizon and flatten to 0.2 beyond
// it. The decay is floored at 0.
func RecencyScore(stints []domain.Stint, horizonMonths int) float64 {
	if len(stints) == 0 {
		return 0
	}
	if horizonMonths <= 0 {
		horizonMonths = 36
	}
	last := stints[0]
	if last.EndDate == nil {
		return 1.0
	}
	months, err := MonthsBetween(*last.EndDate, timeNow().UTC())
	if err != nil || months <= 0 {
		return 1.0
	}
	if months <= horizonMonths {
		v := 1.0 - float64(months)/(float64(horizonMonths)*1.2)
		if v < 0 {
			return 0
		}
		return v
	}
	return 0.2
}

// SkillSemSim is the cosine similarity between the role's skill
// requirements and the candidate's skills+bullets text. An empty blob on
// either side scores 0.0 without touching the embedder.
func SkillSemSim(ctx domain.Context, jdBlob, candBlob string, embed domain.Embedder) (float64, error) {
	if strings.TrimSpace(jdBlob) == "" || strings.TrimSpace(candBlob) == "" {
		return 0, nil
	}
	a, err := embed.EmbedText(ctx, jdBlob)
	if err != nil {
		return 0, err
	}
	b, err := embed.EmbedText(ctx, candBlob)
	if err != nil {
		return 0, err
	}
	return Cosine(a, b)
}

// ContextSenses holds the reference sentences and penalty used to tell
// "did the hiring" apart from "was hired" in candidate bullets.
type ContextSenses struct {
	HiringSentence    string
	RecruitedSentence string
	Penalty           float64
}

// ContextPenalty compares the candidate's bullet text against the two
// reference senses and returns the configured penalty when the "being
// recruited" sense is the closer one.
func ContextPenalty(ctx domain.Context, text string, embed domain.Embedder, senses ContextSenses) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	if len(text) > 2000 {
		text = text[:2000]
	}
	hiring, err := embed.EmbedText(ctx, senses.HiringSentence)
	if err != nil {
		return 0, err
	}
	recruited, err := embed.EmbedText(ctx, senses.RecruitedSentence)
	if err != nil {
		return 0, err
	}
	e, err := embed.EmbedText(ctx, text)
	if err != nil {
		return 0, err
	}
	ch, err := Cosine(e, hiring)
	if err != nil {
		return 0, err
	}
	cr, err := Cosine(e, recruited)
	if err != nil {
		return 0, err
	}
	if cr > ch {
		return max(0, senses.Penalty), nil
	}
	return 0, nil
}

// BonusScore sums the provided bonus flags capped at 0.1.
func BonusScore(flags []float64) float64 {
	var sum float64
	for _, f := range flags {
		sum += f
	}
	if sum > 0.1 {
		return 0.1
	}
	if sum < 0 {
		return 0
	}
	return sum
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
