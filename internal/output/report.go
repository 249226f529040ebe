package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/tools"
)

// scoreColor grades a 0-100 score: green from 80, yellow from 50, else red.
func scoreColor(score int, colored bool) *color.Color {
	switch {
	case score >= 80:
		return paint(color.New(color.FgGreen, color.Bold), colored)
	case score >= 50:
		return paint(color.New(color.FgYellow, color.Bold), colored)
	default:
		return paint(color.New(color.FgRed, color.Bold), colored)
	}
}

func statusColor(status string, colored bool) *color.Color {
	switch status {
	case string(models.CheckStatusPassed), string(models.ControlPass), string(models.ToolRunSuccess), "yes":
		return paint(color.New(color.FgGreen), colored)
	case string(models.CheckStatusFindings), string(models.ControlNotEvaluated), string(models.ToolRunNotFound), string(models.CheckStatusSkipped):
		return paint(color.New(color.FgYellow), colored)
	default:
		return paint(color.New(color.FgRed), colored)
	}
}

// RenderHeader writes the one-line report header followed by the overall score.
func RenderHeader(w io.Writer, report *models.AuditReport, colored bool) {
	fmt.Fprintf(w, "Profile: %-20s  Account: %-14s  Regions: %s\n",
		report.Profile, report.AccountID, strings.Join(report.Regions, ","))
	score := report.Score.Overall
	fmt.Fprintf(w, "Security Score: %s\n", scoreColor(score, colored).Sprintf("%d/100", score))
}

// RenderChecks writes one row per check category in execution order.
func RenderChecks(w io.Writer, checks map[models.Category]models.CheckResult, colored bool) {
	fmt.Fprintf(w, "%-12s  %-10s  %9s  %8s  %5s  %s\n", "CATEGORY", "STATUS", "RESOURCES", "FINDINGS", "SCORE", "NOTES")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, cat := range models.AllCategories {
		c, ok := checks[cat]
		if !ok {
			continue
		}
		score := "-"
		if c.Score != nil {
			score = fmt.Sprintf("%d", *c.Score)
		}
		notes := c.Error
		if notes == "" && len(c.Warnings) > 0 {
			notes = fmt.Sprintf("%d warning(s): %s", len(c.Warnings), c.Warnings[0])
		}
		fmt.Fprintf(w, "%-12s  %s  %9d  %8d  %5s  %s\n",
			cat,
			cell(string(c.Status), 10, statusColor(string(c.Status), colored)),
			c.ResourcesChecked,
			c.Findings,
			score,
			ShortenMessage(notes, 60))
	}
}

// RenderSummary renders a compact summary view to w:
//   - Account / profile / region header and overall score
//   - Per-category scores
//   - Per-severity finding counts
//   - Top 5 findings by severity
//
// It reuses the already-computed AuditReport; no engine logic is duplicated.
func RenderSummary(w io.Writer, report *models.AuditReport, colored bool) {
	s := report.Summary

	fmt.Fprintf(w, "Account:  %s\n", report.AccountID)
	fmt.Fprintf(w, "Profile:  %s\n", report.Profile)
	fmt.Fprintf(w, "Regions:  %d\n", len(report.Regions))
	fmt.Fprintf(w, "Score:    %s\n", scoreColor(report.Score.Overall, colored).Sprintf("%d/100", report.Score.Overall))
	for _, cat := range models.AllCategories {
		if v, ok := report.Score.Categories[cat]; ok {
			fmt.Fprintf(w, "  %-12s  %d\n", cat, v)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Findings:  %d\n", s.TotalFindings)
	fmt.Fprintln(w, "Severity Breakdown")
	for _, row := range []struct {
		sev models.Severity
		n   int
	}{
		{models.SeverityCritical, s.CriticalFindings},
		{models.SeverityHigh, s.HighFindings},
		{models.SeverityMedium, s.MediumFindings},
		{models.SeverityLow, s.LowFindings},
		{models.SeverityInfo, s.InfoFindings},
	} {
		fmt.Fprintf(w, "  %s  %d\n", cell(string(row.sev), 10, severityColor(row.sev, colored)), row.n)
	}

	// Findings are already sorted by severity.
	top := report.Findings
	if len(top) > 5 {
		top = top[:5]
	}
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top Findings")
	for _, f := range top {
		fmt.Fprintf(w, "  %s  %-30s  %s\n",
			cell(string(f.Severity), 10, severityColor(f.Severity, colored)),
			truncateField(f.RuleID, 30),
			truncateField(f.ResourceID, 40))
	}
}

// RenderCompliance writes the per-framework summary followed by every failing
// control.
func RenderCompliance(w io.Writer, report *models.ComplianceReport, colored bool) {
	if report == nil {
		return
	}
	fmt.Fprintf(w, "%-6s  %-40s  %6s  %6s  %8s  %7s\n", "FW", "NAME", "PASSED", "FAILED", "NOT EVAL", "PERCENT")
	fmt.Fprintln(w, strings.Repeat("-", 84))
	for _, fw := range report.Frameworks {
		fmt.Fprintf(w, "%-6s  %-40s  %6d  %6d  %8d  %6.1f%%\n",
			strings.ToUpper(fw.Framework), truncateField(fw.Name, 40),
			fw.Passed, fw.Failed, fw.NotEvaluated, fw.Percent)
	}

	var failing []models.ControlResult
	for _, c := range report.Controls {
		if c.Status == models.ControlFail {
			failing = append(failing, c)
		}
	}
	if len(failing) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Failing Controls")
	for _, c := range failing {
		fmt.Fprintf(w, "  %s  %-5s %-8s  %s (%d finding(s))\n",
			cell(string(c.Status), 4, statusColor(string(c.Status), colored)),
			strings.ToUpper(c.Framework), c.ControlID,
			ShortenMessage(c.Title, 60), len(c.FindingIDs))
	}
}

// RenderToolAvailability writes the `tools check` table.
func RenderToolAvailability(w io.Writer, avail []tools.Availability, colored bool) {
	fmt.Fprintf(w, "%-16s  %-5s  %s\n", "TOOL", "FOUND", "PATH / INSTALL")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, a := range avail {
		found, detail := "no", a.InstallHint
		if a.Found {
			found, detail = "yes", a.Path
		}
		fmt.Fprintf(w, "%-16s  %s  %s\n", a.Name, cell(found, 5, statusColor(found, colored)), detail)
	}
}

// RenderToolRuns writes one row per external tool invocation.
func RenderToolRuns(w io.Writer, runs []models.ToolRun, colored bool) {
	if len(runs) == 0 {
		return
	}
	fmt.Fprintf(w, "%-16s  %-10s  %4s  %9s  %s\n", "TOOL", "STATUS", "EXIT", "DURATION", "OUTPUT / ERROR")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range runs {
		detail := r.OutputPath
		if r.Status != models.ToolRunSuccess && r.Error != "" {
			detail = r.Error
		}
		exit := "-"
		if r.ExitCode >= 0 {
			exit = fmt.Sprintf("%d", r.ExitCode)
		}
		fmt.Fprintf(w, "%-16s  %s  %4s  %8.1fs  %s\n",
			r.Name,
			cell(string(r.Status), 10, statusColor(string(r.Status), colored)),
			exit,
			r.DurationSeconds,
			ShortenMessage(detail, 80))
	}
}
