// Package roles resolves role definitions from built-in profiles, role
// files, or plain-text job descriptions.
package roles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// SeniorProductDesignerWeb3 is the built-in profile for a senior product
// design role in the Web3/DeFi space.
var SeniorProductDesignerWeb3 = domain.RoleDefinition{
	Name:       "Senior Product Designer (Web3/DeFi)",
	Titles:     []string{"product designer", "ux designer", "senior product designer"},
	Level:      "senior",
	Industries: []string{"web3", "defi", "crypto", "fintech", "saas"},
	SkillsBlob: strings.Join([]string{
		"5+ years UX/Product Design",
		"2+ years Web3/crypto design (DeFi strongly preferred)",
		"hands-on usability testing",
		"strong wallet/smart contract/protocol understanding",
		"collaboration across cross-functional teams",
		"experience designing AI/LLM-powered products",
		"experience in fintech or SaaS in addition to Web3",
		"familiarity with orchestration technology and DeFi strategy design",
	}, "\n"),
	MinAvgMonths:  18,
	MinLastMonths: 12,
}

// builtins maps profile aliases to their definitions. Aliases are matched
// case-insensitively.
var builtins = map[string]domain.RoleDefinition{
	"agoric":                  SeniorProductDesignerWeb3,
	"senior_product_designer": SeniorProductDesignerWeb3,
	"product_designer":        SeniorProductDesignerWeb3,
	"pd_web3":                 SeniorProductDesignerWeb3,
	"web3":                    SeniorProductDesignerWeb3,
}

// Builtin returns the built-in profile registered under the given alias.
func Builtin(name string) (domain.RoleDefinition, bool) {
	r, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// Load resolves a role reference: a built-in alias, a JSON/YAML role file,
// or a plain-text job description file.
func Load(ref string) (domain.RoleDefinition, error) {
	if r, ok := Builtin(ref); ok {
		return r, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return domain.RoleDefinition{}, fmt.Errorf("%w: role %q is not a built-in profile or readable file", domain.ErrNotFound, ref)
	}
	raw, err := os.ReadFile(ref)
	if err != nil {
		return domain.RoleDefinition{}, fmt.Errorf("op=role.load: %w", err)
	}
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".json":
		var r domain.RoleDefinition
		if err := json.Unmarshal(raw, &r); err != nil {
			return domain.RoleDefinition{}, fmt.Errorf("op=role.load: parse json: %w", err)
		}
		return normalizeRole(r), nil
	case ".yaml", ".yml":
		var r domain.RoleDefinition
		if err := yaml.Unmarshal(raw, &r); err != nil {
			return domain.RoleDefinition{}, fmt.Errorf("op=role.load: parse yaml: %w", err)
		}
		return normalizeRole(r), nil
	default:
		return ParseJD(string(raw)), nil
	}
}

// ParseJD extracts a role definition from a plain-text job description.
// Recognized line prefixes: Title:, Level:, Industries:, Must-have:,
// Nice-to-have:. Unknown lines are ignored.
func ParseJD(text string) domain.RoleDefinition {
	var titles, industries, must, nice []string
	level := "senior"
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-• "))
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "title:"):
			titles = append(titles, strings.ToLower(strings.TrimSpace(line[len("title:"):])))
		case strings.HasPrefix(lower, "level:"):
			level = strings.ToLower(strings.TrimSpace(line[len("level:"):]))
		case strings.HasPrefix(lower, "industries:"):
			for _, s := range strings.Split(line[len("industries:"):], ",") {
				if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
					industries = append(industries, s)
				}
			}
		case strings.HasPrefix(lower, "must-have:"):
			must = append(must, line)
		case strings.HasPrefix(lower, "nice-to-have:"):
			nice = append(nice, line)
		}
	}
	if len(titles) == 0 {
		titles = []string{"recruiter"}
	}
	return domain.RoleDefinition{
		Titles:        titles,
		Level:         level,
		Industries:    industries,
		SkillsBlob:    strings.Join(append(must, nice...), "\n"),
		MinAvgMonths:  18,
		MinLastMonths: 12,
	}
}

func normalizeRole(r domain.RoleDefinition) domain.RoleDefinition {
	for i, t := range r.Titles {
		r.Titles[i] = strings.ToLower(strings.TrimSpace(t))
	}
	r.Level = strings.ToLower(strings.TrimSpace(r.Level))
	for i, s := range r.Industries {
		r.Industries[i] = strings.ToLower(strings.TrimSpace(s))
	}
	if r.MinAvgMonths <= 0 {
		r.MinAvgMonths = 18
	}
	if r.MinLastMonths <= 0 {
		r.MinLastMonths = 12
	}
	return r
}
