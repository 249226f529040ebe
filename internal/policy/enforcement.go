package policy

import (
	"fmt"
	"strings"

	"github.com/paws-sec/paws/internal/models"
)

// severityRank orders severities for threshold comparisons.
// CRITICAL (5) > HIGH (4) > MEDIUM (3) > LOW (2) > INFO (1).
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 5,
	models.SeverityHigh:     4,
	models.SeverityMedium:   3,
	models.SeverityLow:      2,
	models.SeverityInfo:     1,
}

// ShouldFail reports whether any finding has a severity at or above the
// configured fail_on_severity threshold.
//
// It returns false when cfg is nil, no threshold is configured, the threshold
// is unrecognised, or findings is empty.
func ShouldFail(findings []models.Finding, cfg *PolicyConfig) bool {
	if cfg == nil || cfg.Enforcement.FailOnSeverity == "" {
		return false
	}
	threshold, ok := severityRank[models.Severity(strings.ToUpper(cfg.Enforcement.FailOnSeverity))]
	if !ok {
		return false
	}
	for _, f := range findings {
		if r, ok := severityRank[f.Severity]; ok && r >= threshold {
			return true
		}
	}
	return false
}

// BelowMinScore reports whether score is under the configured min_score.
func BelowMinScore(score int, cfg *PolicyConfig) bool {
	if cfg == nil || cfg.Enforcement.MinScore == nil {
		return false
	}
	return score < *cfg.Enforcement.MinScore
}

// Violations returns a human-readable reason for every enforcement threshold
// the report crosses. An empty slice means the audit passes enforcement.
func Violations(report *models.AuditReport, cfg *PolicyConfig) []string {
	if report == nil {
		return nil
	}
	var out []string
	if ShouldFail(report.Findings, cfg) {
		out = append(out, fmt.Sprintf("findings at or above %s severity",
			strings.ToUpper(cfg.Enforcement.FailOnSeverity)))
	}
	if BelowMinScore(report.Score.Overall, cfg) {
		out = append(out, fmt.Sprintf("security score %d is below minimum %d",
			report.Score.Overall, *cfg.Enforcement.MinScore))
	}
	return out
}
