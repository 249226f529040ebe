package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/paws-sec/paws/internal/models"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)

// AuditOptions configures a single audit run.
// It is the sole input to Engine.RunAudit.
type AuditOptions struct {
	// Profile is the named AWS profile to use. Empty means the default
	// credential chain.
	Profile string

	// Regions is an explicit list of regions to audit. The first entry is
	// also the home region used for global services.
	Regions []string

	// AllRegions audits every region enabled for the account. It takes
	// precedence over Regions for regional checks.
	AllRegions bool

	// DefaultRegion is the home region when Regions is empty. When both are
	// empty the profile's own region is used.
	DefaultRegion string

	// Categories selects the check categories. Empty means
	// models.DefaultCategories.
	Categories []models.Category

	// Frameworks selects the compliance frameworks to evaluate. Empty skips
	// compliance evaluation.
	Frameworks []string

	// Tools lists the external tools to run after the built-in checks.
	Tools []string
}

// Engine is the central orchestration interface.
// It coordinates provider collection, rule evaluation, scoring, compliance,
// and external tool runs, returning a fully populated AuditReport.
//
// Engine must not call the AWS SDK directly; it delegates to the provider
// and collector interfaces.
type Engine interface {
	RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error)
}

// ToolRunner runs external tools by key.
type ToolRunner interface {
	RunAll(ctx context.Context, keys []string) []models.ToolRun
}

// ParseCategories parses a comma-separated category list such as
// "iam,s3,ec2". "all" selects every category; an empty string selects
// models.DefaultCategories. Duplicates are dropped and the result follows
// models.AllCategories order.
func ParseCategories(s string) ([]models.Category, error) {
	if strings.TrimSpace(s) == "" {
		return models.DefaultCategories, nil
	}
	want := make(map[models.Category]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch name {
		case "":
			continue
		case "all":
			return models.AllCategories, nil
		}
		if _, ok := categoryRank[models.Category(name)]; !ok {
			return nil, fmt.Errorf("unknown check category %q (valid: iam, s3, ec2, monitoring, network, all)", name)
		}
		want[models.Category(name)] = true
	}
	if len(want) == 0 {
		return models.DefaultCategories, nil
	}
	out := make([]models.Category, 0, len(want))
	for _, c := range models.AllCategories {
		if want[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
