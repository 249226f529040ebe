// Package output renders audit reports for the terminal: findings tables,
// per-category check results, compliance summaries, tool status, and JSON.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/paws-sec/paws/internal/models"
)

// TableOptions controls which columns RenderTable renders and how severity is coloured.
type TableOptions struct {
	// Colored wraps severity labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// IncludeCategory adds a CATEGORY column.
	IncludeCategory bool

	// IncludeProfile adds a PROFILE column.
	IncludeProfile bool
}

// severityColor returns the color used for sev. The returned Color has
// colouring forced on or off regardless of the terminal.
func severityColor(sev models.Severity, colored bool) *color.Color {
	var c *color.Color
	switch sev {
	case models.SeverityCritical:
		c = color.New(color.FgRed, color.Bold)
	case models.SeverityHigh:
		c = color.New(color.FgRed)
	case models.SeverityMedium:
		c = color.New(color.FgYellow)
	case models.SeverityLow:
		c = color.New(color.FgBlue)
	default:
		c = color.New(color.FgWhite)
	}
	return paint(c, colored)
}

// paint forces colouring of c on or off.
func paint(c *color.Color, colored bool) *color.Color {
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// ColorSeverity wraps a severity string with ANSI codes when colored is true.
// When colored is false the string is returned unchanged (CI-safe default).
func ColorSeverity(sev models.Severity, colored bool) string {
	return severityColor(sev, colored).Sprint(string(sev))
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// cell pads text to width and colours only the text, so trailing padding
// stays plain and later columns remain aligned.
func cell(text string, width int, c *color.Color) string {
	spaces := max(width-len([]rune(text)), 0)
	return c.Sprint(text) + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max runes for ID/label columns.
// A single-rune ellipsis replaces the last rune when truncation occurs.
func truncateField(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// RenderTable writes a formatted findings table to w.
// Columns are dynamically selected based on opts; the separator line width is
// derived from the header row so all rows align correctly.
//
// Column order:
//
//	SEVERITY  [CATEGORY]  RULE  RESOURCE ID  [PROFILE]  REGION  MESSAGE
func RenderTable(w io.Writer, findings []models.Finding, opts TableOptions) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	const (
		wSeverity = 10
		wCategory = 11
		wRule     = 30
		wResource = 30
		wProfile  = 12
		wRegion   = 15
		wMessage  = 60
	)

	var hb strings.Builder
	hb.WriteString(fmt.Sprintf("%-*s", wSeverity, "SEVERITY"))
	if opts.IncludeCategory {
		hb.WriteString(fmt.Sprintf("  %-*s", wCategory, "CATEGORY"))
	}
	hb.WriteString(fmt.Sprintf("  %-*s", wRule, "RULE"))
	hb.WriteString(fmt.Sprintf("  %-*s", wResource, "RESOURCE ID"))
	if opts.IncludeProfile {
		hb.WriteString(fmt.Sprintf("  %-*s", wProfile, "PROFILE"))
	}
	hb.WriteString(fmt.Sprintf("  %-*s", wRegion, "REGION"))
	hb.WriteString(fmt.Sprintf("  %-*s", wMessage, "MESSAGE"))
	header := strings.TrimRight(hb.String(), " ")

	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, f := range findings {
		var rb strings.Builder
		rb.WriteString(cell(string(f.Severity), wSeverity, severityColor(f.Severity, opts.Colored)))
		if opts.IncludeCategory {
			rb.WriteString(fmt.Sprintf("  %-*s", wCategory, truncateField(string(f.Category), wCategory)))
		}
		rb.WriteString(fmt.Sprintf("  %-*s", wRule, truncateField(f.RuleID, wRule)))
		rb.WriteString(fmt.Sprintf("  %-*s", wResource, truncateField(f.ResourceID, wResource)))
		if opts.IncludeProfile {
			rb.WriteString(fmt.Sprintf("  %-*s", wProfile, truncateField(f.Profile, wProfile)))
		}
		rb.WriteString(fmt.Sprintf("  %-*s", wRegion, truncateField(f.Region, wRegion)))
		rb.WriteString("  " + ShortenMessage(f.Explanation, wMessage))
		fmt.Fprintln(w, rb.String())
	}
}
