// Package render provides presentation-layer helpers for paws reports that go
// beyond the console tables: compliance control explanations and the PDF
// summary. It performs no AWS calls and no scoring.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/paws-sec/paws/internal/models"
)

// FindControl returns the evaluated control with the given framework key and
// control ID, or nil when the report holds no such control. Framework and ID
// match case-insensitively.
func FindControl(report *models.AuditReport, framework, controlID string) *models.ControlResult {
	if report == nil || report.Compliance == nil {
		return nil
	}
	for i := range report.Compliance.Controls {
		c := &report.Compliance.Controls[i]
		if strings.EqualFold(c.Framework, framework) && strings.EqualFold(c.ControlID, controlID) {
			return c
		}
	}
	return nil
}

// RenderControlExplanation writes a breakdown of one compliance control to w.
// Only findings whose IDs appear in control.FindingIDs are listed. They are
// grouped by rule ID, sorted ascending.
//
// Example output:
//
//	CONTROL cis 1.10 (FAIL)
//	Title: Ensure MFA is enabled for all IAM users with console access
//	Rules: IAM_USER_NO_MFA
//
//	Findings (2):
//
//	  ✗ IAM_USER_NO_MFA
//	    - alice (global)
//	    - bob (global)
func RenderControlExplanation(w io.Writer, control models.ControlResult, findings []models.Finding) {
	fmt.Fprintf(w, "CONTROL %s %s (%s)\n", control.Framework, control.ControlID, control.Status)
	fmt.Fprintf(w, "Title: %s\n", control.Title)
	fmt.Fprintf(w, "Rules: %s\n", strings.Join(control.RuleIDs, ", "))

	switch control.Status {
	case models.ControlPass:
		fmt.Fprintln(w)
		fmt.Fprintln(w, "No findings for the rules behind this control.")
		return
	case models.ControlNotEvaluated:
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Not evaluated: a check category this control needs was not run or failed to collect.")
		return
	}

	byID := make(map[string]*models.Finding, len(findings))
	for i := range findings {
		byID[findings[i].ID] = &findings[i]
	}

	byRule := make(map[string][]*models.Finding)
	for _, fid := range control.FindingIDs {
		f, ok := byID[fid]
		if !ok {
			continue
		}
		byRule[f.RuleID] = append(byRule[f.RuleID], f)
	}
	ruleIDs := make([]string, 0, len(byRule))
	for id := range byRule {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings (%d):\n", len(control.FindingIDs))
	for _, ruleID := range ruleIDs {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  ✗ %s\n", ruleID)
		for _, f := range byRule[ruleID] {
			fmt.Fprintf(w, "    - %s (%s)\n", f.ResourceID, f.Region)
		}
	}
}

// WriteExplainJSON writes the control explanation as indented JSON to w.
//
// When control is non-nil, the output is:
//
//	{"control": {...}, "findings": [...]}
//
// When control is nil the output is:
//
//	{"error": "No control <id> found for framework <framework>"}
func WriteExplainJSON(w io.Writer, control *models.ControlResult, findings []models.Finding, framework, controlID string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if control == nil {
		return enc.Encode(map[string]string{
			"error": fmt.Sprintf("No control %s found for framework %s", controlID, framework),
		})
	}

	wanted := make(map[string]bool, len(control.FindingIDs))
	for _, id := range control.FindingIDs {
		wanted[id] = true
	}
	matched := []models.Finding{}
	for _, f := range findings {
		if wanted[f.ID] {
			matched = append(matched, f)
		}
	}
	return enc.Encode(map[string]any{
		"control":  control,
		"findings": matched,
	})
}
