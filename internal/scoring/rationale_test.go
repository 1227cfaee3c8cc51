package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeSignals_Empty(t *testing.T) {
	got := SummarizeSignals(nil)
	assert.Equal(t, "None noted", got.Strengths)
	assert.Equal(t, "None noted", got.Gaps)
	assert.Equal(t, "None provided", got.Evidence)
}

func TestSummarizeSignals_NumericThresholds(t *testing.T) {
	got := SummarizeSignals(map[string]any{
		"title":    0.9,
		"industry": 0.1,
		"tenure":   0.5,
	})
	assert.Contains(t, got.Strengths, "title (0.9)")
	assert.Contains(t, got.Gaps, "industry (0.1)")
	assert.Contains(t, got.Evidence, "tenure: 0.5")
}

func TestSummarizeSignals_BoolAndKeyHints(t *testing.T) {
	got := SummarizeSignals(map[string]any{
		"design_systems_present": true,
		"defi_experience":        false,
		"evidence_snippet":       "shipped a wallet onboarding flow",
	})
	assert.Contains(t, got.Strengths, "design systems present")
	assert.Contains(t, got.Gaps, "Missing defi experience")
	assert.Contains(t, got.Evidence, "shipped a wallet onboarding flow")
}

func TestSummarizeSignals_NestedMapsAndLists(t *testing.T) {
	got := SummarizeSignals(map[string]any{
		"skills": map[string]any{
			"label":   "Figma",
			"score":   0.8,
			"snippet": "built the component library",
		},
		"flags": []any{
			map[string]any{"label": "No shipped products", "score": 0.1},
		},
	})
	assert.Contains(t, got.Strengths, "Figma (0.8)")
	assert.Contains(t, got.Gaps, "No shipped products (0.1)")
	assert.Contains(t, got.Evidence, "built the component library")
}

func TestSummarizeSignals_StringScoreCoercion(t *testing.T) {
	got := SummarizeSignals(map[string]any{
		"usability_testing": map[string]any{"label": "Usability testing", "met": "yes"},
	})
	assert.Contains(t, got.Strengths, "Usability testing (1)")
}

func TestSummarizeSignals_CapsBuckets(t *testing.T) {
	signals := map[string]any{}
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		signals[k+"_score"] = 0.95
	}
	got := SummarizeSignals(signals)
	assert.Len(t, strings.Split(got.Strengths, "; "), maxItems)
}

func TestBuildRationale_Format(t *testing.T) {
	out := BuildRationale(map[string]any{"title": 0.9})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Strengths: "))
	assert.True(t, strings.HasPrefix(lines[1], "Gaps: "))
	assert.True(t, strings.HasPrefix(lines[2], "Evidence: "))
}
