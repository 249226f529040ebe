package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paws-sec/paws/internal/compliance"
	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/policy"
	"github.com/paws-sec/paws/internal/providers/aws/common"
	awssecurity "github.com/paws-sec/paws/internal/providers/aws/security"
	"github.com/paws-sec/paws/internal/rules"
	"github.com/paws-sec/paws/internal/scoring"
)

// AuditEngine implements Engine for the AWS security audit.
// It never calls AWS SDK clients directly; all calls are delegated to the
// provider and the SecurityCollector.
type AuditEngine struct {
	provider  common.AWSClientProvider
	collector awssecurity.SecurityCollector
	registry  *rules.DefaultRuleRegistry
	policy    *policy.PolicyConfig
	tools     ToolRunner
	log       *zap.Logger

	// now is overridable for tests.
	now func() time.Time
}

// NewAuditEngine constructs an AuditEngine wired to the supplied provider,
// security collector, and rule registry. policyCfg and tools may be nil.
func NewAuditEngine(
	provider common.AWSClientProvider,
	collector awssecurity.SecurityCollector,
	registry *rules.DefaultRuleRegistry,
	policyCfg *policy.PolicyConfig,
	tools ToolRunner,
	log *zap.Logger,
) *AuditEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditEngine{
		provider:  provider,
		collector: collector,
		registry:  registry,
		policy:    policyCfg,
		tools:     tools,
		log:       log,
		now:       time.Now,
	}
}

// RunAudit implements Engine.
//
// A profile load or region discovery failure is fatal. Category collection
// failures are recorded on the report's check results and never abort the
// audit.
func (e *AuditEngine) RunAudit(ctx context.Context, opts AuditOptions) (*models.AuditReport, error) {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = models.DefaultCategories
	}
	categories = e.enabledCategories(categories)

	home := opts.DefaultRegion
	if len(opts.Regions) > 0 {
		home = opts.Regions[0]
	}
	profile, err := e.provider.LoadProfile(ctx, opts.Profile, home)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}
	e.log.Info("profile loaded",
		zap.String("profile", profile.ProfileName),
		zap.String("account_id", profile.AccountID),
		zap.String("region", profile.Region))

	regions, err := e.resolveRegions(ctx, profile, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve regions for profile %q: %w", profile.ProfileName, err)
	}

	data, err := e.collector.CollectAll(ctx, profile, e.provider, regions, categories)
	if err != nil {
		return nil, fmt.Errorf("collect security data for profile %q: %w", profile.ProfileName, err)
	}

	now := e.now().UTC()
	findings := e.evaluate(data, profile, categories, now)
	checks := buildChecks(data, categories, regions, findings)
	score := scoring.Compute(findings, checks, e.policy)
	for cat, s := range score.Categories {
		c := checks[cat]
		c.Score = &s
		checks[cat] = c
	}

	report := &models.AuditReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: now,
		Profile:     profile.ProfileName,
		AccountID:   profile.AccountID,
		Regions:     regions,
		Checks:      checks,
		Summary:     computeSummary(findings),
		Score:       score,
		Findings:    findings,
	}
	if data.Network != nil {
		report.PublicEndpoints = data.Network.Endpoints
	}
	if len(opts.Frameworks) > 0 {
		report.Compliance = compliance.Evaluate(opts.Frameworks, findings, checks)
	}
	if len(opts.Tools) > 0 && e.tools != nil {
		report.Tools = e.tools.RunAll(ctx, opts.Tools)
	}

	e.log.Info("audit complete",
		zap.Int("findings", len(findings)),
		zap.Int("score", score.Overall))
	return report, nil
}

// enabledCategories drops categories disabled by the policy file.
func (e *AuditEngine) enabledCategories(cats []models.Category) []models.Category {
	out := make([]models.Category, 0, len(cats))
	for _, c := range cats {
		if e.policy.CategoryEnabled(string(c)) {
			out = append(out, c)
		} else {
			e.log.Debug("category disabled by policy", zap.String("category", string(c)))
		}
	}
	return out
}

// resolveRegions returns the regions to audit: every enabled region with
// AllRegions, else the explicit list, else the profile's home region.
func (e *AuditEngine) resolveRegions(ctx context.Context, profile *common.ProfileConfig, opts AuditOptions) ([]string, error) {
	if opts.AllRegions {
		return e.provider.GetActiveRegions(ctx, profile)
	}
	if len(opts.Regions) > 0 {
		return dedupeStrings(opts.Regions), nil
	}
	return []string{profile.Region}, nil
}

// evaluate runs the rules of the collected categories against the snapshot
// and applies the policy. A single RuleContext is used because IAM and S3
// data are account-level; regional entries carry their own Region.
func (e *AuditEngine) evaluate(
	data *models.SecurityData,
	profile *common.ProfileConfig,
	categories []models.Category,
	now time.Time,
) []models.Finding {
	rctx := rules.RuleContext{
		AccountID: profile.AccountID,
		Profile:   profile.ProfileName,
		Data:      data,
		Policy:    e.policy,
		Now:       now,
	}
	raw := e.registry.ForCategories(categories).EvaluateAll(rctx)
	findings := policy.ApplyPolicy(dedupeFindings(raw), e.policy)
	sortFindings(findings)
	return findings
}
