package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/paws-sec/paws/internal/models"
)

// execRoot runs the root command with args and an isolated HOME and config
// path, returning stdout, stderr, and the command error.
func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", filepath.Join(home, "config.yaml")}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func intPtr(v int) *int { return &v }

// sampleReport is a small but fully populated audit report.
func sampleReport() *models.AuditReport {
	iamScore, s3Score := 85, 100
	return &models.AuditReport{
		ReportID:    "11111111-2222-4333-8444-555555555555",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Profile:     "prod",
		AccountID:   "123456789012",
		Regions:     []string{"us-east-1"},
		Checks: map[models.Category]models.CheckResult{
			models.CategoryIAM: {Category: models.CategoryIAM, Status: models.CheckStatusFindings, ResourcesChecked: 3, Findings: 2, Score: &iamScore},
			models.CategoryS3:  {Category: models.CategoryS3, Status: models.CheckStatusPassed, ResourcesChecked: 4, Score: &s3Score},
		},
		Summary: models.AuditSummary{TotalFindings: 2, CriticalFindings: 1, MediumFindings: 1},
		Score: models.SecurityScore{
			Overall:    92,
			Categories: map[models.Category]int{models.CategoryIAM: 85, models.CategoryS3: 100},
		},
		Findings: []models.Finding{
			{
				ID: "ROOT_ACCOUNT_MFA_DISABLED-123456789012", RuleID: "ROOT_ACCOUNT_MFA_DISABLED",
				ResourceID: "123456789012", Region: "global", Category: models.CategoryIAM,
				Severity: models.SeverityCritical, Explanation: "Root account has no MFA device.",
			},
			{
				ID: "IAM_USER_NO_MFA-alice", RuleID: "IAM_USER_NO_MFA",
				ResourceID: "alice", Region: "global", Category: models.CategoryIAM,
				Severity: models.SeverityMedium, Explanation: "Console user has no MFA device.",
			},
		},
		Compliance: &models.ComplianceReport{
			Frameworks: []models.FrameworkSummary{
				{Framework: "cis", Name: "CIS AWS Foundations Benchmark v3.0", Passed: 1, Failed: 1, Percent: 50},
			},
			Controls: []models.ControlResult{
				{
					Framework: "cis", ControlID: "1.10", Title: "Ensure MFA is enabled for all IAM users with console access",
					Status: models.ControlFail, RuleIDs: []string{"IAM_USER_NO_MFA"}, FindingIDs: []string{"IAM_USER_NO_MFA-alice"},
				},
				{
					Framework: "cis", ControlID: "2.1.4", Title: "Ensure S3 Block Public Access is enabled",
					Status: models.ControlPass, RuleIDs: []string{"S3_PUBLIC_ACCESS_BLOCK_MISSING"},
				},
			},
		},
	}
}
