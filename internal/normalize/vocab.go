// Package normalize maps free-text titles and industry labels onto a
// small canonical vocabulary.
package normalize

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the canonical title aliases and industry keyword
// buckets. The defaults ship in-binary; deployments may override them
// with a YAML file.
type Vocabulary struct {
	TitleAliases    map[string]string   `yaml:"title_aliases"`
	IndustryBuckets map[string][]string `yaml:"industry_buckets"`
}

// DefaultVocabulary returns the built-in canonical vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		TitleAliases: map[string]string{
			"sr product designer":        "Product Designer",
			"product designer":           "Product Designer",
			"senior product designer":    "Product Designer",
			"lead product designer":      "Product Designer",
			"principal product designer": "Product Designer",
			"staff product designer":     "Product Designer",
			"design lead":                "Product Designer",
			"ux designer":                "Product Designer",
			"ux design lead":             "Product Designer",
			"ux ui designer":             "Product Designer",
			"ui ux designer":             "Product Designer",
			"ui designer":                "Product Designer",
			"interaction designer":       "Product Designer",
			"experience designer":        "Product Designer",
			"visual designer":            "Product Designer",
			"visual designer product":    "Product Designer",
			"product design ic5":         "Product Designer",
			"ux researcher":              "UX Researcher",
			"product manager":            "Product Manager",
			"product management":         "Product Manager",
			"software engineer":          "Software Engineer",
			"senior software engineer":   "Software Engineer",
			"full stack engineer":        "Software Engineer",
			"frontend engineer":          "Software Engineer",
			"front end engineer":         "Software Engineer",
			"backend engineer":           "Software Engineer",
			"back end engineer":          "Software Engineer",
			"data scientist":             "Data Scientist",
			"machine learning engineer":  "Machine Learning Engineer",
		},
		IndustryBuckets: map[string][]string{
			"Web3/DeFi": {
				"web3", "web 3", "blockchain", "crypto", "cryptocurrency",
				"defi", "de fi", "digital asset", "nft", "dapp", "smart contract",
			},
			"FinTech": {
				"fintech", "financial technology", "financial services",
				"payment", "payments", "banking", "lending",
				"wealth management", "insurtech",
			},
			"E-commerce": {
				"e commerce", "e-commerce", "ecommerce", "online retail",
				"retail", "marketplace", "marketplaces",
				"direct to consumer", "d2c",
			},
			"Agency": {
				"agency", "consultancy", "consulting", "creative agency",
				"design agency", "services agency",
			},
		},
	}
}

// LoadVocabulary reads a vocabulary override from a YAML file.
func LoadVocabulary(path string) (Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("op=normalize.LoadVocabulary: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("op=normalize.LoadVocabulary: %w", err)
	}
	if len(v.TitleAliases) == 0 || len(v.IndustryBuckets) == 0 {
		def := DefaultVocabulary()
		if len(v.TitleAliases) == 0 {
			v.TitleAliases = def.TitleAliases
		}
		if len(v.IndustryBuckets) == 0 {
			v.IndustryBuckets = def.IndustryBuckets
		}
	}
	return v, nil
}

// CanonicalTitles returns the sorted unique canonical titles.
func (v Vocabulary) CanonicalTitles() []string {
	set := make(map[string]struct{}, len(v.TitleAliases))
	for _, canonical := range v.TitleAliases {
		set[canonical] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

type industryKeyword struct {
	keyword string
	bucket  string
}

// industryKeywords flattens the buckets into a deterministic lookup
// order: longest keyword first so partial words never shadow longer
// matches, ties broken alphabetically by bucket.
func (v Vocabulary) industryKeywords() []industryKeyword {
	items := make([]industryKeyword, 0, 32)
	for bucket, keywords := range v.IndustryBuckets {
		for _, kw := range keywords {
			normalized := titleKey(kw)
			if normalized == "" {
				continue
			}
			items = append(items, industryKeyword{keyword: normalized, bucket: bucket})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if len(items[i].keyword) != len(items[j].keyword) {
			return len(items[i].keyword) > len(items[j].keyword)
		}
		if items[i].bucket != items[j].bucket {
			return items[i].bucket < items[j].bucket
		}
		return items[i].keyword < items[j].keyword
	})
	return items
}
