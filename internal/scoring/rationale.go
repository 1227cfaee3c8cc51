package scoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rationale bucket tuning. The builder is a best-effort heuristic
// summarizer, not a schema validator: it never fails on odd shapes.
var (
	positiveHints = []string{"strength", "positive", "match", "met", "aligned", "present", "advantage"}
	negativeHints = []string{"gap", "missing", "lack", "anti", "risk", "concern", "flag", "weak"}
	evidenceHints = []string{"evidence", "snippet", "example", "note", "proof", "quote", "detail", "source"}
)

const (
	highScore = 0.65
	lowScore  = 0.35
	maxItems  = 6
)

// Summary is the classified view of an arbitrary signal map.
type Summary struct {
	Strengths string
	Gaps      string
	Evidence  string
}

// SummarizeSignals walks an arbitrary signal map and sorts entries into
// strengths, gaps, and evidence. Buckets are capped at maxItems and
// fall back to "None noted"/"None provided" when empty.
func SummarizeSignals(signals map[string]any) Summary {
	if len(signals) == 0 {
		return Summary{Strengths: "None noted", Gaps: "None noted", Evidence: "None provided"}
	}
	b := &summaryBuilder{}
	keys := make([]string, 0, len(signals))
	for k := range signals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.process(k, signals[k], "")
	}
	return Summary{
		Strengths: joinOr(b.strengths, "None noted"),
		Gaps:      joinOr(b.gaps, "None noted"),
		Evidence:  joinOr(b.evidence, "None provided"),
	}
}

// BuildRationale renders the classified signals as display text.
func BuildRationale(signals map[string]any) string {
	s := SummarizeSignals(signals)
	return fmt.Sprintf("Strengths: %s\nGaps: %s\nEvidence: %s", s.Strengths, s.Gaps, s.Evidence)
}

type summaryBuilder struct {
	strengths []string
	gaps      []string
	evidence  []string
}

func (b *summaryBuilder) add(target *[]string, text string) {
	entry := strings.TrimSpace(text)
	if entry == "" || len(*target) >= maxItems {
		return
	}
	for _, existing := range *target {
		if existing == entry {
			return
		}
	}
	*target = append(*target, entry)
}

func (b *summaryBuilder) process(key string, value any, hint string) {
	if value == nil {
		return
	}
	category := hint
	if category == "" {
		category = classify(key)
	}

	switch v := value.(type) {
	case map[string]any:
		b.processMap(key, v, category)
	case string:
		switch category {
		case "strengths":
			b.add(&b.strengths, v)
		case "gaps":
			b.add(&b.gaps, v)
		default:
			b.add(&b.evidence, v)
		}
	case bool:
		label := humanize(key)
		if label == "" {
			return
		}
		if v {
			b.add(&b.strengths, label)
		} else {
			b.add(&b.gaps, "Missing "+label)
		}
	case []any:
		for _, item := range v {
			b.process(key, item, category)
		}
	default:
		if f, ok := coerceScalar(value); ok {
			b.processNumber(key, f, category)
			return
		}
		label := humanize(key)
		text := fmt.Sprint(value)
		if label != "" {
			text = label + ": " + text
		}
		switch category {
		case "strengths":
			b.add(&b.strengths, text)
		case "gaps":
			b.add(&b.gaps, text)
		default:
			b.add(&b.evidence, text)
		}
	}
}

func (b *summaryBuilder) processNumber(key string, v float64, category string) {
	label := humanize(key)
	formatted := formatScore(v)
	if label == "" {
		switch category {
		case "strengths":
			b.add(&b.strengths, formatted)
		case "gaps":
			b.add(&b.gaps, formatted)
		default:
			b.add(&b.evidence, formatted)
		}
		return
	}
	entry := fmt.Sprintf("%s (%s)", label, formatted)
	switch {
	case v >= highScore:
		b.add(&b.strengths, entry)
	case v <= lowScore:
		b.add(&b.gaps, entry)
	case category == "strengths":
		b.add(&b.strengths, entry)
	case category == "gaps":
		b.add(&b.gaps, entry)
	default:
		b.add(&b.evidence, fmt.Sprintf("%s: %s", label, formatted))
	}
}

func (b *summaryBuilder) processMap(key string, m map[string]any, category string) {
	label := firstString(m, "label", "name", "term")
	if label == "" {
		label = humanize(key)
	}
	score, hasScore := scoreFromMap(m)
	for _, hintKey := range evidenceHints {
		if snippet, ok := m[hintKey]; ok && snippet != nil {
			b.add(&b.evidence, fmt.Sprint(snippet))
			break
		}
	}
	if label != "" {
		if hasScore {
			entry := fmt.Sprintf("%s (%s)", label, formatScore(score))
			switch {
			case score >= highScore:
				b.add(&b.strengths, entry)
			case score <= lowScore:
				b.add(&b.gaps, entry)
			case category == "strengths":
				b.add(&b.strengths, entry)
			case category == "gaps":
				b.add(&b.gaps, entry)
			}
		} else if category == "strengths" {
			b.add(&b.strengths, label)
		} else if category == "gaps" {
			b.add(&b.gaps, label)
		}
	}
	skip := map[string]struct{}{
		"label": {}, "name": {}, "term": {}, "score": {}, "value": {},
		"confidence": {}, "weight": {}, "match": {}, "met": {}, "present": {},
	}
	for _, hintKey := range evidenceHints {
		skip[hintKey] = struct{}{}
	}
	subkeys := make([]string, 0, len(m))
	for k := range m {
		subkeys = append(subkeys, k)
	}
	sort.Strings(subkeys)
	for _, sk := range subkeys {
		if _, ok := skip[sk]; ok {
			continue
		}
		b.process(sk, m[sk], category)
	}
}

func classify(key string) string {
	lower := strings.ToLower(key)
	for _, hint := range evidenceHints {
		if strings.Contains(lower, hint) {
			return "evidence"
		}
	}
	for _, hint := range negativeHints {
		if strings.Contains(lower, hint) {
			return "gaps"
		}
	}
	for _, hint := range positiveHints {
		if strings.Contains(lower, hint) {
			return "strengths"
		}
	}
	return ""
}

func coerceScalar(raw any) (float64, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "present", "met":
			return 1, true
		case "false", "no", "missing":
			return 0, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func scoreFromMap(m map[string]any) (float64, bool) {
	for _, key := range []string{"score", "value", "confidence", "weight", "met", "present", "match"} {
		if raw, ok := m[key]; ok {
			if f, ok := coerceScalar(raw); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func humanize(label string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return strings.TrimSpace(strings.Join(strings.Fields(cleaned), " "))
}

func formatScore(v float64) string {
	txt := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	if txt == "" || txt == "-" {
		return "0"
	}
	return txt
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, "; ")
}
