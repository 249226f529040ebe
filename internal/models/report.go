package models

// CheckStatus is the outcome of one check category.
type CheckStatus string

const (
	CheckStatusPassed   CheckStatus = "passed"
	CheckStatusFindings CheckStatus = "findings"
	CheckStatusError    CheckStatus = "error"
	CheckStatusSkipped  CheckStatus = "skipped"
)

// CheckResult summarises one category of the built-in audit.
// Score is nil for categories that were skipped or failed to collect.
type CheckResult struct {
	Category         Category    `json:"category"`
	Status           CheckStatus `json:"status"`
	ResourcesChecked int         `json:"resources_checked"`
	Findings         int         `json:"findings"`
	Score            *int        `json:"score,omitempty"`
	Error            string      `json:"error,omitempty"`
	Warnings         []string    `json:"warnings,omitempty"`
}

// Scored reports whether the category contributes to the overall score.
func (c CheckResult) Scored() bool {
	return c.Status == CheckStatusPassed || c.Status == CheckStatusFindings
}

// ScoreDeduction records the points one rule removed from its category.
type ScoreDeduction struct {
	RuleID   string   `json:"rule_id"`
	Category Category `json:"category"`
	Findings int      `json:"findings"`
	Weight   int      `json:"weight"`
	Cap      int      `json:"cap"`
	Points   int      `json:"points"`
}

// SecurityScore is the 0–100 weighted score of an audit.
type SecurityScore struct {
	Overall    int              `json:"overall"`
	Categories map[Category]int `json:"categories"`
	Deductions []ScoreDeduction `json:"deductions,omitempty"`
}

// ControlStatus is the evaluation outcome of a compliance control.
type ControlStatus string

const (
	ControlPass         ControlStatus = "PASS"
	ControlFail         ControlStatus = "FAIL"
	ControlNotEvaluated ControlStatus = "NOT_EVALUATED"
)

// ControlResult is one evaluated compliance control.
type ControlResult struct {
	Framework  string        `json:"framework"`
	ControlID  string        `json:"control_id"`
	Title      string        `json:"title"`
	Status     ControlStatus `json:"status"`
	RuleIDs    []string      `json:"rule_ids"`
	FindingIDs []string      `json:"finding_ids,omitempty"`
}

// FrameworkSummary aggregates control results for a single framework.
// Percent is computed over evaluated controls only.
type FrameworkSummary struct {
	Framework    string  `json:"framework"`
	Name         string  `json:"name"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	NotEvaluated int     `json:"not_evaluated"`
	Percent      float64 `json:"percent"`
}

// ComplianceReport holds all evaluated controls and per-framework summaries.
type ComplianceReport struct {
	Frameworks []FrameworkSummary `json:"frameworks"`
	Controls   []ControlResult    `json:"controls"`
}

// ToolRunStatus is the outcome of an external tool invocation.
type ToolRunStatus string

const (
	ToolRunSuccess  ToolRunStatus = "success"
	ToolRunFailed   ToolRunStatus = "failed"
	ToolRunNotFound ToolRunStatus = "not_found"
	ToolRunTimeout  ToolRunStatus = "timeout"
	ToolRunError    ToolRunStatus = "error"
)

// ToolRun records one invocation of an external security tool.
type ToolRun struct {
	Tool            string        `json:"tool"`
	Name            string        `json:"name"`
	Path            string        `json:"path,omitempty"`
	Command         []string      `json:"command,omitempty"`
	Status          ToolRunStatus `json:"status"`
	ExitCode        int           `json:"exit_code"`
	DurationSeconds float64       `json:"duration_seconds"`
	OutputPath      string        `json:"output_path,omitempty"`
	StderrTail      string        `json:"stderr_tail,omitempty"`
	Error           string        `json:"error,omitempty"`
}
