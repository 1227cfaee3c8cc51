package normalize

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/scoring"
)

const (
	// TitleSimThreshold is the minimum cosine similarity for the
	// embedding fallback to accept a canonical title.
	TitleSimThreshold = 0.80
	// TieDelta bounds how close runner-up candidates must be to the top
	// score before adjudication kicks in.
	TieDelta = 0.01
	topK     = 5
)

// Normalizer resolves free-text titles and industries to canonical
// labels. Lookup is terminal on first success: dictionary, embedding
// similarity, tie-break adjudication, passthrough.
type Normalizer struct {
	vocab       Vocabulary
	embed       domain.Embedder
	adjudicator domain.Adjudicator
	canonical   []string

	mu        sync.Mutex
	canonVecs map[string][]float64
}

// New constructs a Normalizer. The adjudicator may be nil; ambiguity
// then resolves to the top-ranked candidate.
func New(vocab Vocabulary, embed domain.Embedder, adjudicator domain.Adjudicator) *Normalizer {
	return &Normalizer{
		vocab:       vocab,
		embed:       embed,
		adjudicator: adjudicator,
		canonical:   vocab.CanonicalTitles(),
		canonVecs:   make(map[string][]float64),
	}
}

// titleKey folds case and punctuation and collapses whitespace.
func titleKey(raw string) string {
	lowered := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, raw)
	return strings.Join(strings.Fields(lowered), " ")
}

// NormalizeTitle maps a raw title onto the canonical vocabulary. It
// never fails: unrecognized input passes through trimmed.
func (n *Normalizer) NormalizeTitle(ctx domain.Context, raw string) string {
	key := titleKey(raw)
	if key == "" {
		return ""
	}
	if mapped, ok := n.vocab.TitleAliases[key]; ok {
		return mapped
	}
	candidates := n.embeddingTopK(ctx, key, topK)
	if len(candidates) > 0 && candidates[0].score >= TitleSimThreshold {
		best := candidates[0]
		tied := make([]string, 0, len(candidates))
		for _, c := range candidates {
			if best.score-c.score <= TieDelta {
				tied = append(tied, c.title)
			}
		}
		if len(tied) > 1 && n.adjudicator != nil {
			picked, err := n.adjudicator.Pick(ctx, strings.TrimSpace(raw), tied)
			if err != nil {
				slog.Debug("title adjudication unavailable", slog.Any("error", err))
			} else if picked != "" {
				return picked
			}
		}
		return best.title
	}
	return strings.TrimSpace(raw)
}

type rankedTitle struct {
	title string
	score float64
}

// embeddingTopK ranks canonical titles by cosine similarity to the
// query. Embedding failures degrade to an empty ranking so the caller
// falls through to passthrough.
func (n *Normalizer) embeddingTopK(ctx domain.Context, query string, k int) []rankedTitle {
	queryVec, err := n.embed.EmbedText(ctx, query)
	if err != nil {
		slog.Debug("title embedding failed", slog.String("query", query), slog.Any("error", err))
		return nil
	}
	scored := make([]rankedTitle, 0, len(n.canonical))
	for _, title := range n.canonical {
		base, err := n.canonicalVec(ctx, title)
		if err != nil || len(base) != len(queryVec) {
			continue
		}
		sim, err := scoring.Cosine(queryVec, base)
		if err != nil {
			continue
		}
		scored = append(scored, rankedTitle{title: title, score: sim})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if k > 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored
}

// canonicalVec lazily embeds and memoizes the canonical labels.
func (n *Normalizer) canonicalVec(ctx domain.Context, title string) ([]float64, error) {
	n.mu.Lock()
	vec, ok := n.canonVecs[title]
	n.mu.Unlock()
	if ok {
		return vec, nil
	}
	key := titleKey(title)
	if key == "" {
		key = strings.ToLower(title)
	}
	vec, err := n.embed.EmbedText(ctx, key)
	if err != nil {
		return nil, err
	}
	n.mu.Lock()
	n.canonVecs[title] = vec
	n.mu.Unlock()
	return vec, nil
}

// OtherBucket is the catch-all industry bucket for labels no keyword
// matches.
const OtherBucket = "Other"

// NormalizeIndustry maps a raw industry label onto a bucket via
// whitespace-padded keyword containment, longest keyword first.
// Unrecognized non-empty input maps to OtherBucket.
func (n *Normalizer) NormalizeIndustry(raw string) string {
	key := titleKey(raw)
	if key == "" {
		return ""
	}
	padded := " " + key + " "
	for _, item := range n.vocab.industryKeywords() {
		if strings.Contains(padded, " "+item.keyword+" ") {
			return item.bucket
		}
	}
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return OtherBucket
}

// NormalizeIndustries maps raw industry labels onto their buckets,
// deduplicated and sorted. Empty labels are dropped.
func (n *Normalizer) NormalizeIndustries(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		mapped := n.NormalizeIndustry(tag)
		if mapped == "" {
			continue
		}
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		out = append(out, mapped)
	}
	sort.Strings(out)
	return out
}

// NormalizeStints resolves titles and industry tags in place on a copy
// of the given stints.
func (n *Normalizer) NormalizeStints(ctx domain.Context, stints []domain.Stint) []domain.Stint {
	out := make([]domain.Stint, len(stints))
	copy(out, stints)
	for i := range out {
		out[i].Title = n.NormalizeTitle(ctx, out[i].Title)
		if len(out[i].IndustryTags) == 0 {
			continue
		}
		out[i].IndustryTags = n.NormalizeIndustries(out[i].IndustryTags)
	}
	return out
}
