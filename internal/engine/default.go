package engine

import (
	"fmt"
	"slices"
	"sort"

	"github.com/paws-sec/paws/internal/models"
	awssecurity "github.com/paws-sec/paws/internal/providers/aws/security"
)

// dedupeFindings collapses findings sharing the same ID into one, keeping the
// first occurrence and upgrading its severity to the highest seen. Insertion
// order is preserved so sortFindings controls final order. The result is
// never nil.
func dedupeFindings(raw []models.Finding) []models.Finding {
	index := make(map[string]int, len(raw))
	result := make([]models.Finding, 0, len(raw))
	for _, f := range raw {
		pos, exists := index[f.ID]
		if !exists {
			index[f.ID] = len(result)
			result = append(result, f)
			continue
		}
		if severityRank[f.Severity] < severityRank[result[pos].Severity] {
			result[pos].Severity = f.Severity
		}
	}
	return result
}

// severityRank maps Severity values to sort keys (lower = higher priority).
var severityRank = map[models.Severity]int{
	models.SeverityCritical: 0,
	models.SeverityHigh:     1,
	models.SeverityMedium:   2,
	models.SeverityLow:      3,
	models.SeverityInfo:     4,
}

// categoryRank orders categories by execution order.
var categoryRank = func() map[models.Category]int {
	m := make(map[models.Category]int, len(models.AllCategories))
	for i, c := range models.AllCategories {
		m[c] = i
	}
	return m
}()

// sortFindings sorts findings in-place: severity descending (CRITICAL first),
// then category execution order, then rule ID and finding ID.
func sortFindings(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if ra, rb := severityRank[a.Severity], severityRank[b.Severity]; ra != rb {
			return ra < rb
		}
		if ca, cb := categoryRank[a.Category], categoryRank[b.Category]; ca != cb {
			return ca < cb
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.ID < b.ID
	})
}

// computeSummary aggregates finding counts across all severity levels.
func computeSummary(findings []models.Finding) models.AuditSummary {
	var s models.AuditSummary
	s.TotalFindings = len(findings)
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityCritical:
			s.CriticalFindings++
		case models.SeverityHigh:
			s.HighFindings++
		case models.SeverityMedium:
			s.MediumFindings++
		case models.SeverityLow:
			s.LowFindings++
		case models.SeverityInfo:
			s.InfoFindings++
		}
	}
	return s
}

// buildChecks derives one CheckResult per category. Categories that were not
// requested are reported as skipped. A category is in error when its data
// could not be collected at all; partial failures become warnings.
func buildChecks(
	data *models.SecurityData,
	requested []models.Category,
	regions []string,
	findings []models.Finding,
) map[models.Category]models.CheckResult {
	counts := make(map[models.Category]int)
	for _, f := range findings {
		counts[f.Category]++
	}

	checks := make(map[models.Category]models.CheckResult, len(models.AllCategories))
	for _, cat := range models.AllCategories {
		c := models.CheckResult{Category: cat, Status: models.CheckStatusSkipped}
		if slices.Contains(requested, cat) {
			c = categoryResult(cat, data, regions)
			c.Category = cat
			if c.Status != models.CheckStatusError {
				c.Findings = counts[cat]
				c.Status = models.CheckStatusPassed
				if c.Findings > 0 {
					c.Status = models.CheckStatusFindings
				}
			}
		}
		checks[cat] = c
	}
	return checks
}

func categoryResult(cat models.Category, data *models.SecurityData, regions []string) models.CheckResult {
	var c models.CheckResult
	switch cat {
	case models.CategoryIAM:
		if data.IAM == nil {
			return errorResult("iam data not collected")
		}
		if data.IAM.Error != "" {
			return errorResult(data.IAM.Error)
		}
		c.ResourcesChecked = len(data.IAM.Users)
		if n := mfaUnknownUsers(data.IAM.Users); n > 0 {
			c.Warnings = append(c.Warnings, fmt.Sprintf("MFA state unknown for %d user(s); MFA check skipped for them", n))
		}
		if !data.IAM.PasswordPolicy.Known {
			c.Warnings = append(c.Warnings, "password policy could not be read")
		}
		if !data.IAM.Root.DataAvailable {
			c.Warnings = append(c.Warnings, "account summary could not be read; root checks skipped")
		}

	case models.CategoryS3:
		if data.S3 == nil {
			return errorResult("s3 data not collected")
		}
		if data.S3.Error != "" {
			return errorResult(data.S3.Error)
		}
		c.ResourcesChecked = len(data.S3.Buckets)
		for _, b := range data.S3.Buckets {
			for _, check := range []string{models.S3CheckPublicAccessBlock, models.S3CheckPolicyStatus, models.S3CheckEncryption} {
				if msg, failed := b.Errors[check]; failed {
					c.Warnings = append(c.Warnings, fmt.Sprintf("%s %s: %s", b.Name, check, msg))
				}
			}
		}

	case models.CategoryEC2:
		if data.EC2 == nil {
			return errorResult("ec2 data not collected")
		}
		if len(regions) > 0 && len(data.EC2.RegionErrors) >= len(regions) {
			return errorResult(joinRegionErrors(data.EC2.RegionErrors))
		}
		c.ResourcesChecked = data.EC2.SecurityGroupsChecked
		for _, region := range regions {
			if msg, ok := data.EC2.RegionErrors[region]; ok {
				c.Warnings = append(c.Warnings, msg)
			}
		}

	case models.CategoryMonitoring:
		m := data.Monitoring
		if m == nil {
			return errorResult("monitoring data not collected")
		}
		var determined int
		if m.CloudTrail.Checked {
			determined++
		} else if m.CloudTrail.Error != "" {
			c.Warnings = append(c.Warnings, m.CloudTrail.Error)
		}
		for _, statuses := range [][]models.RegionalStatus{m.GuardDuty, m.Config, m.Alarms} {
			for _, s := range statuses {
				if s.Error != "" {
					c.Warnings = append(c.Warnings, s.Error)
					continue
				}
				determined++
			}
		}
		if determined == 0 {
			return errorResult(fmt.Sprintf("no monitoring status could be determined (%d errors)", len(c.Warnings)))
		}
		c.ResourcesChecked = determined

	case models.CategoryNetwork:
		n := data.Network
		if n == nil {
			return errorResult("network data not collected")
		}
		if len(n.Endpoints) == 0 && len(regions) > 0 && len(n.Errors) >= awssecurity.PublicEndpointSources*len(regions) {
			return errorResult(fmt.Sprintf("every endpoint lookup failed: %s", n.Errors[0]))
		}
		c.ResourcesChecked = len(n.Endpoints)
		c.Warnings = append(c.Warnings, n.Errors...)
	}
	return c
}

func errorResult(msg string) models.CheckResult {
	return models.CheckResult{Status: models.CheckStatusError, Error: msg}
}

func joinRegionErrors(errs map[string]string) string {
	regions := make([]string, 0, len(errs))
	for r := range errs {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	msg := errs[regions[0]]
	if len(regions) > 1 {
		msg = fmt.Sprintf("%s (and %d more regions)", msg, len(regions)-1)
	}
	return msg
}

// dedupeStrings removes repeated entries, preserving first-seen order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func mfaUnknownUsers(users []models.IAMUser) int {
	n := 0
	for _, u := range users {
		if u.MFAUnknown {
			n++
		}
	}
	return n
}
