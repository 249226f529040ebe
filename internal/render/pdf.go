package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/paws-sec/paws/internal/models"
)

// PDF layout constants, in millimetres on A4 portrait.
const (
	pdfMargin     = 15.0
	pdfLineHeight = 6.0
	pdfMaxRows    = 200
)

type rgb struct{ r, g, b int }

var severityRGB = map[models.Severity]rgb{
	models.SeverityCritical: {153, 0, 0},
	models.SeverityHigh:     {204, 51, 0},
	models.SeverityMedium:   {204, 136, 0},
	models.SeverityLow:      {0, 102, 204},
	models.SeverityInfo:     {102, 102, 102},
}

// pdfDoc wraps fpdf with the report's fixed styles. fpdf records the first
// error internally and turns later calls into no-ops, so methods do not
// return errors; WritePDF checks Error() once before output.
type pdfDoc struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
}

func newPDFDoc(report *models.AuditReport) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("paws security report "+report.ReportID, true)
	pdf.SetCreator("paws", true)
	if !report.GeneratedAt.IsZero() {
		pdf.SetCreationDate(report.GeneratedAt)
		pdf.SetModificationDate(report.GeneratedAt)
	}
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	w, _ := pdf.GetPageSize()
	return &pdfDoc{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: w - 2*pdfMargin,
	}
}

func (d *pdfDoc) heading(text string) {
	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.CellFormat(0, 8, d.tr(text), "B", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *pdfDoc) keyValue(key, value string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(40, pdfLineHeight, d.tr(key), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, pdfLineHeight, d.tr(value), "", 1, "L", false, 0, "")
}

// table draws a header row and body rows with fixed column widths. Cell text
// is cut to fit its column. colorize, when non-nil, picks the text colour of
// a body row.
func (d *pdfDoc) table(widths []float64, header []string, rows [][]string, colorize func(row int) *rgb) {
	d.pdf.SetFont("Helvetica", "B", 9)
	d.pdf.SetFillColor(230, 230, 230)
	d.pdf.SetTextColor(0, 0, 0)
	for i, h := range header {
		d.pdf.CellFormat(widths[i], pdfLineHeight, d.tr(h), "1", 0, "L", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 8)
	for r, row := range rows {
		if colorize != nil {
			if c := colorize(r); c != nil {
				d.pdf.SetTextColor(c.r, c.g, c.b)
			}
		}
		for i, text := range row {
			d.pdf.CellFormat(widths[i], pdfLineHeight, d.fit(text, widths[i]-2), "1", 0, "L", false, 0, "")
		}
		d.pdf.SetTextColor(0, 0, 0)
		d.pdf.Ln(-1)
	}
}

// fit translates s and shortens it until it is at most w wide.
func (d *pdfDoc) fit(s string, w float64) string {
	s = d.tr(s)
	if d.pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && d.pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// WritePDF renders the fixed-layout report summary to w: title, account
// block, score, category table, findings table, compliance summary, and
// tool runs.
func WritePDF(w io.Writer, report *models.AuditReport) error {
	d := newPDFDoc(report)
	pdf := d.pdf
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "AWS Security Audit Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, d.tr("Report "+report.ReportID), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	d.heading("Account")
	d.keyValue("Account ID", report.AccountID)
	d.keyValue("Profile", report.Profile)
	d.keyValue("Regions", strings.Join(report.Regions, ", "))
	d.keyValue("Generated", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"))

	d.heading("Security Score")
	pdf.SetFont("Helvetica", "B", 28)
	c := scoreRGB(report.Score.Overall)
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.CellFormat(0, 14, fmt.Sprintf("%d / 100", report.Score.Overall), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	s := report.Summary
	d.keyValue("Findings", fmt.Sprintf("%d total: %d critical, %d high, %d medium, %d low, %d info",
		s.TotalFindings, s.CriticalFindings, s.HighFindings, s.MediumFindings, s.LowFindings, s.InfoFindings))

	d.heading("Checks")
	var checkRows [][]string
	for _, cat := range models.AllCategories {
		ch, ok := report.Checks[cat]
		if !ok {
			continue
		}
		score := "-"
		if ch.Score != nil {
			score = fmt.Sprintf("%d", *ch.Score)
		}
		checkRows = append(checkRows, []string{
			string(cat), string(ch.Status),
			fmt.Sprintf("%d", ch.ResourcesChecked), fmt.Sprintf("%d", ch.Findings),
			score, ch.Error,
		})
	}
	d.table([]float64{25, 22, 22, 20, 16, d.width - 105},
		[]string{"Category", "Status", "Resources", "Findings", "Score", "Error"}, checkRows, nil)

	d.heading("Findings")
	if len(report.Findings) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, pdfLineHeight, "No findings.", "", 1, "L", false, 0, "")
	} else {
		findings := report.Findings
		if len(findings) > pdfMaxRows {
			findings = findings[:pdfMaxRows]
		}
		rows := make([][]string, 0, len(findings))
		for _, f := range findings {
			rows = append(rows, []string{string(f.Severity), f.RuleID, f.ResourceID, f.Region})
		}
		d.table([]float64{20, 68, 62, d.width - 150},
			[]string{"Severity", "Rule", "Resource", "Region"}, rows,
			func(i int) *rgb {
				if c, ok := severityRGB[findings[i].Severity]; ok {
					return &c
				}
				return nil
			})
		if n := len(report.Findings) - len(findings); n > 0 {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(0, pdfLineHeight, fmt.Sprintf("%d more findings in the JSON report.", n), "", 1, "L", false, 0, "")
		}
	}

	if report.Compliance != nil && len(report.Compliance.Frameworks) > 0 {
		d.heading("Compliance")
		var rows [][]string
		for _, fw := range report.Compliance.Frameworks {
			rows = append(rows, []string{
				fw.Name,
				fmt.Sprintf("%d", fw.Passed), fmt.Sprintf("%d", fw.Failed), fmt.Sprintf("%d", fw.NotEvaluated),
				fmt.Sprintf("%.1f%%", fw.Percent),
			})
		}
		d.table([]float64{d.width - 88, 20, 20, 26, 22},
			[]string{"Framework", "Passed", "Failed", "Not evaluated", "Percent"}, rows, nil)
	}

	if len(report.Tools) > 0 {
		d.heading("External Tools")
		var rows [][]string
		for _, t := range report.Tools {
			detail := t.OutputPath
			if t.Status != models.ToolRunSuccess {
				detail = t.Error
			}
			rows = append(rows, []string{t.Name, string(t.Status), fmt.Sprintf("%.1fs", t.DurationSeconds), detail})
		}
		d.table([]float64{32, 22, 20, d.width - 74},
			[]string{"Tool", "Status", "Duration", "Output / error"}, rows, nil)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// WritePDFFile renders the report to path, creating parent directories.
func WritePDFFile(path string, report *models.AuditReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create pdf directory %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf %q: %w", path, err)
	}
	if err := WritePDF(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf %q: %w", path, err)
	}
	return nil
}

func scoreRGB(score int) rgb {
	switch {
	case score >= 80:
		return rgb{0, 128, 0}
	case score >= 50:
		return rgb{204, 136, 0}
	default:
		return rgb{180, 0, 0}
	}
}
