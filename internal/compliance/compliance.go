// Package compliance evaluates hard-coded CIS, NIST, and PCI controls
// against the findings of an audit.
package compliance

import (
	"fmt"
	"math"
	"strings"

	"github.com/paws-sec/paws/internal/models"
)

// ParseFrameworks splits a comma-separated framework list. "all" selects
// every framework. Duplicates are dropped; unknown names are an error.
func ParseFrameworks(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		key := strings.ToLower(strings.TrimSpace(part))
		if key == "" {
			continue
		}
		if key == "all" {
			return append([]string(nil), AllFrameworks...), nil
		}
		if _, ok := frameworks[key]; !ok {
			return nil, fmt.Errorf("unknown compliance framework %q (valid: %s, all)", key, strings.Join(AllFrameworks, ", "))
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out, nil
}

// Evaluate computes the status of every control of the selected frameworks.
//
// A control FAILs when any of its rules produced a finding above INFO,
// is NOT_EVALUATED when one of its required categories is missing from
// checks or was not collected successfully, and PASSes otherwise. Failures
// take precedence: a finding is evidence even if another required category
// errored.
func Evaluate(keys []string, findings []models.Finding, checks map[models.Category]models.CheckResult) *models.ComplianceReport {
	byRule := make(map[string][]string)
	for _, f := range findings {
		if f.Severity == models.SeverityInfo {
			continue
		}
		byRule[f.RuleID] = append(byRule[f.RuleID], f.ID)
	}

	report := &models.ComplianceReport{}
	for _, key := range keys {
		fw, ok := frameworks[key]
		if !ok {
			continue
		}
		summary := models.FrameworkSummary{Framework: fw.Key, Name: fw.Name}
		for _, c := range fw.Controls {
			res := evaluateControl(fw.Key, c, byRule, checks)
			switch res.Status {
			case models.ControlPass:
				summary.Passed++
			case models.ControlFail:
				summary.Failed++
			default:
				summary.NotEvaluated++
			}
			report.Controls = append(report.Controls, res)
		}
		summary.Percent = percent(summary.Passed, summary.Passed+summary.Failed)
		report.Frameworks = append(report.Frameworks, summary)
	}
	return report
}

func evaluateControl(framework string, c Control, byRule map[string][]string, checks map[models.Category]models.CheckResult) models.ControlResult {
	res := models.ControlResult{
		Framework: framework,
		ControlID: c.ID,
		Title:     c.Title,
		RuleIDs:   c.RuleIDs,
	}
	for _, id := range c.RuleIDs {
		res.FindingIDs = append(res.FindingIDs, byRule[id]...)
	}
	if len(res.FindingIDs) > 0 {
		res.Status = models.ControlFail
		return res
	}
	for _, cat := range c.Requires {
		if check, ok := checks[cat]; !ok || !check.Scored() {
			res.Status = models.ControlNotEvaluated
			return res
		}
	}
	res.Status = models.ControlPass
	return res
}

// percent returns passed/evaluated as a percentage rounded to one decimal.
func percent(passed, evaluated int) float64 {
	if evaluated == 0 {
		return 0
	}
	return math.Round(float64(passed)*1000/float64(evaluated)) / 10
}
