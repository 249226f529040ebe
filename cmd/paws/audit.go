package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paws-sec/paws/internal/compliance"
	"github.com/paws-sec/paws/internal/engine"
	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/output"
	"github.com/paws-sec/paws/internal/policy"
	"github.com/paws-sec/paws/internal/providers/aws/common"
	awssecurity "github.com/paws-sec/paws/internal/providers/aws/security"
	"github.com/paws-sec/paws/internal/render"
	securitypack "github.com/paws-sec/paws/internal/rulepacks/aws_security"
	"github.com/paws-sec/paws/internal/rules"
	"github.com/paws-sec/paws/internal/tools"
)

// auditFlags are the flags of `paws audit`.
type auditFlags struct {
	profile     string
	regions     []string
	allRegions  bool
	checks      string
	tools       string
	pacuModules []string
	compliance  string
	output      string
	pdf         string
	format      string
	summary     bool
	policyPath  string
	noColor     bool
}

func newAuditCmd(g *globalOptions) *cobra.Command {
	f := &auditFlags{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit an AWS account: built-in checks, optional tools, score and compliance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.format != string(engine.ReportFormatTable) && f.format != string(engine.ReportFormatJSON) {
				return fmt.Errorf("invalid --format %q: must be table or json", f.format)
			}

			opts, err := f.auditOptions(g)
			if err != nil {
				return err
			}

			registry := newRegistry()
			policyCfg, err := loadPolicy(f.policyPath, registry.IDs())
			if err != nil {
				return err
			}

			colored := useColor(f.noColor)
			var runner engine.ToolRunner
			if len(opts.Tools) > 0 {
				runner = newToolRunner(g, f.profile, toolRegion(g, firstOr(opts.Regions, "")), f.pacuModules, cmd.ErrOrStderr())
			}

			eng := engine.NewAuditEngine(
				common.NewDefaultAWSClientProvider(),
				awssecurity.NewDefaultSecurityCollector(g.log),
				registry,
				policyCfg,
				runner,
				g.log,
			)

			progress(cmd, colored, "Auditing profile %s (checks: %s)", displayProfile(opts.Profile), joinCategories(opts.Categories))
			return runAudit(cmd.Context(), eng, opts, f, policyCfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), g.log)
		},
	}

	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "AWS profile name (default: config default_profile, then the credential chain)")
	cmd.Flags().StringSliceVarP(&f.regions, "region", "r", nil, "AWS region(s) to audit; repeatable (default: config default_region, then the profile region, then us-west-2)")
	cmd.Flags().BoolVar(&f.allRegions, "all-regions", false, "Audit every region enabled for the account")
	cmd.Flags().StringVar(&f.checks, "checks", "iam,s3,ec2", "Check categories: iam, s3, ec2, monitoring, network, or all")
	cmd.Flags().StringVar(&f.tools, "tools", "", "External tools to run: pacu, scout, cloudmapper, public-ips, or all")
	cmd.Flags().StringSliceVar(&f.pacuModules, "pacu-modules", nil, "PACU modules to run (default: config tools.pacu_modules)")
	cmd.Flags().StringVar(&f.compliance, "compliance", "", "Compliance frameworks to evaluate: cis, nist, pci, or all")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the full JSON report to this path")
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "Write a PDF summary to this path")
	cmd.Flags().StringVar(&f.format, "format", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "Print a compact summary instead of the full table")
	cmd.Flags().StringVar(&f.policyPath, "policy", "", "Policy file (default: ./paws.yaml when present)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable coloured output")

	return cmd
}

// auditOptions turns the flags and loaded config into engine options.
func (f *auditFlags) auditOptions(g *globalOptions) (engine.AuditOptions, error) {
	categories, err := engine.ParseCategories(f.checks)
	if err != nil {
		return engine.AuditOptions{}, err
	}

	var frameworks []string
	if strings.TrimSpace(f.compliance) != "" {
		if frameworks, err = compliance.ParseFrameworks(f.compliance); err != nil {
			return engine.AuditOptions{}, err
		}
	}

	var toolKeys []string
	if strings.TrimSpace(f.tools) != "" {
		if toolKeys, err = tools.ParseKeys(f.tools); err != nil {
			return engine.AuditOptions{}, err
		}
	}

	return engine.AuditOptions{
		Profile:       g.cfg.ResolveProfile(f.profile),
		Regions:       f.regions,
		AllRegions:    f.allRegions,
		DefaultRegion: g.cfg.AWS.DefaultRegion,
		Categories:    categories,
		Frameworks:    frameworks,
		Tools:         toolKeys,
	}, nil
}

// runAudit executes the audit through eng, writes the requested report files,
// prints the report to stdout, and applies policy enforcement.
func runAudit(
	ctx context.Context,
	eng engine.Engine,
	opts engine.AuditOptions,
	f *auditFlags,
	policyCfg *policy.PolicyConfig,
	stdout, stderr io.Writer,
	log *zap.Logger,
) error {
	if log == nil {
		log = zap.NewNop()
	}
	colored := useColor(f.noColor)

	start := time.Now()
	report, err := eng.RunAudit(ctx, opts)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}
	log.Info("audit finished",
		zap.String("report_id", report.ReportID),
		zap.Int("findings", len(report.Findings)),
		zap.Int("score", report.Score.Overall),
		zap.Duration("elapsed", time.Since(start)))

	if f.output != "" {
		if err := output.WriteJSONFile(f.output, report); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "JSON report written to %s\n", f.output)
	}
	if f.pdf != "" {
		if err := render.WritePDFFile(f.pdf, report); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "PDF report written to %s\n", f.pdf)
	}

	switch {
	case f.format == string(engine.ReportFormatJSON):
		if err := output.WriteJSON(stdout, report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	case f.summary:
		output.RenderSummary(stdout, report, colored)
	default:
		printReport(stdout, report, colored)
	}

	if v := policy.Violations(report, policyCfg); len(v) > 0 {
		return fmt.Errorf("%w: %s", errPolicyViolation, strings.Join(v, "; "))
	}
	return nil
}

// printReport renders the full table view: header, check results, findings,
// compliance, and tool runs.
func printReport(w io.Writer, report *models.AuditReport, colored bool) {
	output.RenderHeader(w, report, colored)
	fmt.Fprintln(w)
	output.RenderChecks(w, report.Checks, colored)
	fmt.Fprintln(w)

	output.RenderTable(w, report.Findings, output.TableOptions{
		Colored:         colored,
		IncludeCategory: true,
	})

	if report.Compliance != nil {
		fmt.Fprintln(w)
		output.RenderCompliance(w, report.Compliance, colored)
	}
	if len(report.Tools) > 0 {
		fmt.Fprintln(w)
		output.RenderToolRuns(w, report.Tools, colored)
	}
}

// newRegistry returns a registry holding every built-in security rule.
func newRegistry() *rules.DefaultRuleRegistry {
	registry := rules.NewDefaultRuleRegistry()
	for _, r := range securitypack.New() {
		registry.Register(r)
	}
	return registry
}

// loadPolicy loads the policy file (or ./paws.yaml when present) and
// validates it against the known rule IDs. It returns nil when no policy
// applies.
func loadPolicy(path string, ruleIDs []string) (*policy.PolicyConfig, error) {
	cfg, err := policy.LoadOptional(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	if cfg == nil {
		return nil, nil
	}
	if errs := policy.Validate(cfg, ruleIDs); len(errs) > 0 {
		return nil, fmt.Errorf("invalid policy: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// newToolRunner builds the external tool runner from config and flags.
func newToolRunner(g *globalOptions, profile, region string, pacuModules []string, progressOut io.Writer) *tools.Runner {
	cfg := g.cfg
	if len(pacuModules) == 0 {
		pacuModules = cfg.Tools.PACUModules
	}
	return tools.NewRunner(tools.NewLocator(cfg.Tools.Dirs), tools.Options{
		Profile:            cfg.ResolveProfile(profile),
		Region:             region,
		OutputDir:          cfg.Output.Dir,
		Python:             cfg.Tools.Python,
		Timeout:            time.Duration(cfg.Tools.Timeout),
		PACUModules:        pacuModules,
		CloudMapperAccount: cfg.Tools.CloudMapperAccount,
		Progress:           progressOut,
	}, g.log)
}

// toolRegion resolves the AWS_DEFAULT_REGION handed to external tools. The
// tools run before any profile is loaded, so the chain ends at FallbackRegion
// and never yields "".
func toolRegion(g *globalOptions, flagRegion string) string {
	return g.cfg.ResolveRegion(flagRegion, "")
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 {
		return values[0]
	}
	return fallback
}

func displayProfile(p string) string {
	if p == "" {
		return "default"
	}
	return p
}

func joinCategories(cats []models.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}
