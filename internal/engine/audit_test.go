package engine

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/policy"
	"github.com/paws-sec/paws/internal/providers/aws/common"
	"github.com/paws-sec/paws/internal/rulepacks/aws_security"
	"github.com/paws-sec/paws/internal/rules"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeProvider struct {
	profileErr error
	regionsErr error
	active     []string

	gotProfile, gotRegion string
}

func (p *fakeProvider) LoadProfile(_ context.Context, profile, region string) (*common.ProfileConfig, error) {
	p.gotProfile, p.gotRegion = profile, region
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	if region == "" {
		region = "us-west-2"
	}
	name := profile
	if name == "" {
		name = "default"
	}
	return &common.ProfileConfig{ProfileName: name, AccountID: "111122223333", Region: region}, nil
}

func (p *fakeProvider) GetActiveRegions(context.Context, *common.ProfileConfig) ([]string, error) {
	return p.active, p.regionsErr
}

func (p *fakeProvider) ConfigForRegion(cfg *common.ProfileConfig, region string) aws.Config {
	return aws.Config{Region: region}
}

type fakeCollector struct {
	data *models.SecurityData
	err  error

	gotRegions    []string
	gotCategories []models.Category
}

func (c *fakeCollector) CollectAll(
	_ context.Context,
	_ *common.ProfileConfig,
	_ common.AWSClientProvider,
	regions []string,
	categories []models.Category,
) (*models.SecurityData, error) {
	c.gotRegions, c.gotCategories = regions, categories
	if c.err != nil {
		return nil, c.err
	}
	// Mirror the real collector: only requested categories are populated.
	out := &models.SecurityData{}
	if slices.Contains(categories, models.CategoryIAM) {
		out.IAM = c.data.IAM
	}
	if slices.Contains(categories, models.CategoryS3) {
		out.S3 = c.data.S3
	}
	if slices.Contains(categories, models.CategoryEC2) {
		out.EC2 = c.data.EC2
	}
	if slices.Contains(categories, models.CategoryMonitoring) {
		out.Monitoring = c.data.Monitoring
	}
	if slices.Contains(categories, models.CategoryNetwork) {
		out.Network = c.data.Network
	}
	return out, nil
}

type fakeRunner struct{ got []string }

func (r *fakeRunner) RunAll(_ context.Context, keys []string) []models.ToolRun {
	r.got = keys
	runs := make([]models.ToolRun, 0, len(keys))
	for _, k := range keys {
		runs = append(runs, models.ToolRun{Tool: k, Status: models.ToolRunNotFound})
	}
	return runs
}

func registry() *rules.DefaultRuleRegistry {
	reg := rules.NewDefaultRuleRegistry()
	for _, r := range aws_security.New() {
		reg.Register(r)
	}
	return reg
}

func snapshot() *models.SecurityData {
	return &models.SecurityData{
		IAM: &models.IAMData{
			Users: []models.IAMUser{
				{UserName: "alice", MFAEnabled: true},
				{UserName: "bob"},
			},
			PasswordPolicy: models.PasswordPolicyStatus{Known: true, Configured: true},
			Root:           models.RootAccountInfo{DataAvailable: true, MFAEnabled: false},
		},
		S3: &models.S3Data{Buckets: []models.S3Bucket{
			{Name: "logs", PublicAccessBlock: models.PublicAccessBlockFull, DefaultEncryptionEnabled: true},
		}},
		EC2: &models.EC2Data{
			SecurityGroupsChecked: 2,
			Rules: []models.SecurityGroupRule{
				{GroupID: "sg-1", Protocol: "tcp", FromPort: 22, ToPort: 22, CIDR: "0.0.0.0/0", Region: "us-west-2"},
			},
		},
		Monitoring: &models.MonitoringData{
			CloudTrail: models.CloudTrailStatus{Checked: true, TrailCount: 1, HasMultiRegionTrail: true},
			GuardDuty:  []models.RegionalStatus{{Region: "us-west-2", Enabled: true}},
			Config:     []models.RegionalStatus{{Region: "us-west-2", Enabled: true}},
			Alarms:     []models.RegionalStatus{{Region: "us-west-2", Enabled: true}},
		},
		Network: &models.NetworkData{Endpoints: []models.PublicEndpoint{
			{ResourceID: "i-1", ResourceType: models.ResourceEC2Instance, Region: "us-west-2", Address: "203.0.113.5"},
		}},
	}
}

func newTestEngine(p *fakeProvider, c *fakeCollector, cfg *policy.PolicyConfig, tools ToolRunner) *AuditEngine {
	e := NewAuditEngine(p, c, registry(), cfg, tools, nil)
	e.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	return e
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestRunAudit_DefaultCategories(t *testing.T) {
	p := &fakeProvider{}
	c := &fakeCollector{data: snapshot()}

	report, err := newTestEngine(p, c, nil, nil).RunAudit(context.Background(), AuditOptions{Profile: "prod"})
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}

	if report.ReportID == "" || report.AccountID != "111122223333" || report.Profile != "prod" {
		t.Errorf("report header = %q %q %q", report.ReportID, report.AccountID, report.Profile)
	}
	if !slices.Equal(c.gotCategories, models.DefaultCategories) {
		t.Errorf("categories = %v; want %v", c.gotCategories, models.DefaultCategories)
	}
	if !slices.Equal(report.Regions, []string{"us-west-2"}) {
		t.Errorf("regions = %v; want profile home region", report.Regions)
	}

	// root MFA (CRITICAL), SG 22 (HIGH), bob MFA (MEDIUM), policy configured (INFO).
	wantOrder := []string{"ROOT_ACCOUNT_MFA_DISABLED", "EC2_SG_SENSITIVE_PORT_OPEN", "IAM_USER_NO_MFA", "IAM_PASSWORD_POLICY_CONFIGURED"}
	if len(report.Findings) != len(wantOrder) {
		t.Fatalf("findings = %d; want %d: %+v", len(report.Findings), len(wantOrder), report.Findings)
	}
	for i, id := range wantOrder {
		if report.Findings[i].RuleID != id {
			t.Errorf("findings[%d] = %s; want %s", i, report.Findings[i].RuleID, id)
		}
	}

	if report.Summary.CriticalFindings != 1 || report.Summary.InfoFindings != 1 || report.Summary.TotalFindings != 4 {
		t.Errorf("summary = %+v", report.Summary)
	}

	if got := report.Checks[models.CategoryMonitoring].Status; got != models.CheckStatusSkipped {
		t.Errorf("monitoring status = %s; want skipped", got)
	}
	if got := report.Checks[models.CategoryS3]; got.Status != models.CheckStatusPassed || got.ResourcesChecked != 1 {
		t.Errorf("s3 check = %+v", got)
	}
	iam := report.Checks[models.CategoryIAM]
	if iam.Status != models.CheckStatusFindings || iam.Findings != 3 || iam.Score == nil || *iam.Score != 88 {
		t.Errorf("iam check = %+v", iam)
	}

	// iam 100-10-2=88, s3 100, ec2 95 → 94.
	if report.Score.Overall != 94 {
		t.Errorf("overall score = %d; want 94", report.Score.Overall)
	}
	if report.Compliance != nil || report.Tools != nil || report.PublicEndpoints != nil {
		t.Error("compliance, tools and public endpoints must be absent when not requested")
	}
}

func TestRunAudit_RegionSelection(t *testing.T) {
	tests := []struct {
		name        string
		opts        AuditOptions
		wantHome    string
		wantRegions []string
	}{
		{"explicit", AuditOptions{Regions: []string{"eu-west-1", "us-east-1", "eu-west-1"}}, "eu-west-1", []string{"eu-west-1", "us-east-1"}},
		{"config default", AuditOptions{DefaultRegion: "ap-south-1"}, "ap-south-1", []string{"ap-south-1"}},
		{"all regions", AuditOptions{AllRegions: true, Regions: []string{"eu-west-1"}}, "eu-west-1", []string{"us-east-1", "us-west-2"}},
	}
	for _, tc := range tests {
		p := &fakeProvider{active: []string{"us-east-1", "us-west-2"}}
		c := &fakeCollector{data: snapshot()}
		report, err := newTestEngine(p, c, nil, nil).RunAudit(context.Background(), tc.opts)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if p.gotRegion != tc.wantHome {
			t.Errorf("%s: home region = %q; want %q", tc.name, p.gotRegion, tc.wantHome)
		}
		if !slices.Equal(report.Regions, tc.wantRegions) || !slices.Equal(c.gotRegions, tc.wantRegions) {
			t.Errorf("%s: regions = %v; want %v", tc.name, report.Regions, tc.wantRegions)
		}
	}
}

func TestRunAudit_ProfileFailureIsFatal(t *testing.T) {
	p := &fakeProvider{profileErr: errors.New("no credentials")}
	_, err := newTestEngine(p, &fakeCollector{data: snapshot()}, nil, nil).RunAudit(context.Background(), AuditOptions{Profile: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunAudit_RegionDiscoveryFailureIsFatal(t *testing.T) {
	p := &fakeProvider{regionsErr: errors.New("UnauthorizedOperation")}
	_, err := newTestEngine(p, &fakeCollector{data: snapshot()}, nil, nil).RunAudit(context.Background(), AuditOptions{AllRegions: true})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunAudit_CategoryErrorRecorded(t *testing.T) {
	data := snapshot()
	data.S3 = &models.S3Data{Error: "list buckets: AccessDenied"}

	report, err := newTestEngine(&fakeProvider{}, &fakeCollector{data: data}, nil, nil).RunAudit(context.Background(), AuditOptions{})
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}
	s3 := report.Checks[models.CategoryS3]
	if s3.Status != models.CheckStatusError || s3.Error == "" || s3.Score != nil {
		t.Errorf("s3 check = %+v", s3)
	}
	if _, ok := report.Score.Categories[models.CategoryS3]; ok {
		t.Error("errored category must not be scored")
	}
	// iam 88, ec2 95 → 91.
	if report.Score.Overall != 91 {
		t.Errorf("overall = %d; want 91", report.Score.Overall)
	}
}

func TestRunAudit_AllCategoriesWithComplianceAndTools(t *testing.T) {
	runner := &fakeRunner{}
	opts := AuditOptions{
		Categories: models.AllCategories,
		Frameworks: []string{"cis", "pci"},
		Tools:      []string{"pacu", "scout"},
	}
	report, err := newTestEngine(&fakeProvider{}, &fakeCollector{data: snapshot()}, nil, runner).RunAudit(context.Background(), opts)
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}
	if report.Compliance == nil || len(report.Compliance.Frameworks) != 2 {
		t.Fatalf("compliance = %+v", report.Compliance)
	}
	if len(report.Tools) != 2 || !slices.Equal(runner.got, opts.Tools) {
		t.Errorf("tools = %+v", report.Tools)
	}
	if len(report.PublicEndpoints) != 1 {
		t.Errorf("public endpoints = %+v", report.PublicEndpoints)
	}
	if got := report.Checks[models.CategoryNetwork]; got.Status != models.CheckStatusFindings || got.Findings != 1 {
		t.Errorf("network check = %+v", got)
	}
	if got := report.Checks[models.CategoryMonitoring]; got.Status != models.CheckStatusPassed || got.ResourcesChecked != 4 {
		t.Errorf("monitoring check = %+v", got)
	}
}

func TestRunAudit_SameEndpointNameInTwoRegionsKept(t *testing.T) {
	data := snapshot()
	data.Network = &models.NetworkData{Endpoints: []models.PublicEndpoint{
		{ResourceID: "prod-db", ResourceType: models.ResourceRDSInstance, Region: "us-east-1", Address: "prod-db.a.rds.amazonaws.com"},
		{ResourceID: "prod-db", ResourceType: models.ResourceRDSInstance, Region: "eu-west-1", Address: "prod-db.b.rds.amazonaws.com"},
	}}
	opts := AuditOptions{Categories: []models.Category{models.CategoryNetwork}}
	report, err := newTestEngine(&fakeProvider{}, &fakeCollector{data: data}, nil, nil).RunAudit(context.Background(), opts)
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("findings = %d; want 2 (one per region): %+v", len(report.Findings), report.Findings)
	}
	if report.Findings[0].Region == report.Findings[1].Region {
		t.Errorf("both findings in %s", report.Findings[0].Region)
	}
	if got := report.Checks[models.CategoryNetwork]; got.Findings != 2 {
		t.Errorf("network check = %+v", got)
	}
}

func TestRunAudit_PolicyApplied(t *testing.T) {
	disabled := false
	cfg := &policy.PolicyConfig{
		Version:    1,
		Categories: map[string]policy.CategoryConfig{"ec2": {Enabled: &disabled}},
		Rules: map[string]policy.RuleConfig{
			"IAM_USER_NO_MFA": {Severity: "high"},
		},
	}
	c := &fakeCollector{data: snapshot()}
	report, err := newTestEngine(&fakeProvider{}, c, cfg, nil).RunAudit(context.Background(), AuditOptions{})
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}
	if slices.Contains(c.gotCategories, models.CategoryEC2) {
		t.Error("disabled category must not be collected")
	}
	for _, f := range report.Findings {
		if f.RuleID == "IAM_USER_NO_MFA" && f.Severity != models.SeverityHigh {
			t.Errorf("severity override not applied: %s", f.Severity)
		}
		if f.Category == models.CategoryEC2 {
			t.Errorf("unexpected ec2 finding %s", f.ID)
		}
	}
	if report.Checks[models.CategoryEC2].Status != models.CheckStatusSkipped {
		t.Errorf("ec2 status = %s; want skipped", report.Checks[models.CategoryEC2].Status)
	}
}

func TestRunAudit_SensitivePortsFromPolicy(t *testing.T) {
	data := snapshot()
	data.EC2.Rules = append(data.EC2.Rules, models.SecurityGroupRule{
		GroupID: "sg-2", Protocol: "tcp", FromPort: 8080, ToPort: 8080, CIDR: "0.0.0.0/0", Region: "us-west-2",
	})
	cfg := &policy.PolicyConfig{Version: 1, Rules: map[string]policy.RuleConfig{
		"EC2_SG_SENSITIVE_PORT_OPEN": {Ports: []int{8080}},
	}}
	opts := AuditOptions{Categories: []models.Category{models.CategoryEC2}}
	report, err := newTestEngine(&fakeProvider{}, &fakeCollector{data: data}, cfg, nil).RunAudit(context.Background(), opts)
	if err != nil {
		t.Fatalf("RunAudit: %v", err)
	}
	if len(report.Findings) != 1 || report.Findings[0].ID != "EC2_SG_SENSITIVE_PORT_OPEN-sg-2-8080" {
		t.Fatalf("findings = %+v; want only sg-2 on 8080", report.Findings)
	}
}

func TestRunAudit_CollectorErrorIsFatal(t *testing.T) {
	c := &fakeCollector{err: context.Canceled}
	_, err := newTestEngine(&fakeProvider{}, c, nil, nil).RunAudit(context.Background(), AuditOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
}
