package policy

import (
	"strings"

	"github.com/paws-sec/paws/internal/models"
)

// ApplyPolicy filters and rewrites findings according to cfg: disabled
// categories and rules are dropped, findings below a category's min_severity
// are dropped, and rule severity overrides are applied.
func ApplyPolicy(findings []models.Finding, cfg *PolicyConfig) []models.Finding {
	if cfg == nil {
		return findings
	}

	result := []models.Finding{}

	for _, f := range findings {
		category := string(f.Category)
		if !cfg.CategoryEnabled(category) {
			continue
		}

		ruleCfg, hasRule := cfg.Rules[f.RuleID]

		// Rule-level disable
		if hasRule && ruleCfg.Enabled != nil && !*ruleCfg.Enabled {
			continue
		}

		// Severity override
		if hasRule && ruleCfg.Severity != "" {
			f.Severity = models.Severity(strings.ToUpper(ruleCfg.Severity))
		}

		if c, ok := cfg.Categories[category]; ok && c.MinSeverity != "" {
			min, known := severityRank[models.Severity(strings.ToUpper(c.MinSeverity))]
			if known && severityRank[f.Severity] < min {
				continue
			}
		}

		result = append(result, f)
	}

	return result
}
