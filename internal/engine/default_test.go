package engine

import (
	"strings"
	"testing"

	"github.com/paws-sec/paws/internal/models"
)

func TestDedupeFindings_KeepsHighestSeverity(t *testing.T) {
	raw := []models.Finding{
		{ID: "A", Severity: models.SeverityLow},
		{ID: "B", Severity: models.SeverityMedium},
		{ID: "A", Severity: models.SeverityHigh},
	}
	got := dedupeFindings(raw)
	if len(got) != 2 {
		t.Fatalf("len = %d; want 2", len(got))
	}
	if got[0].ID != "A" || got[0].Severity != models.SeverityHigh {
		t.Errorf("got[0] = %+v", got[0])
	}
}

func TestDedupeFindings_NeverNil(t *testing.T) {
	if got := dedupeFindings(nil); got == nil {
		t.Error("want empty non-nil slice")
	}
}

func TestSortFindings(t *testing.T) {
	f := []models.Finding{
		{ID: "3", RuleID: "S3_PUBLIC_BUCKET", Category: models.CategoryS3, Severity: models.SeverityHigh},
		{ID: "1", RuleID: "NETWORK_PUBLIC_ENDPOINT", Category: models.CategoryNetwork, Severity: models.SeverityInfo},
		{ID: "2", RuleID: "ROOT_ACCESS_KEY_EXISTS", Category: models.CategoryIAM, Severity: models.SeverityCritical},
		{ID: "4", RuleID: "GUARDDUTY_DISABLED", Category: models.CategoryMonitoring, Severity: models.SeverityHigh},
	}
	sortFindings(f)
	want := []string{"2", "3", "4", "1"}
	for i, id := range want {
		if f[i].ID != id {
			t.Errorf("f[%d] = %s; want %s", i, f[i].ID, id)
		}
	}
}

func TestBuildChecks_EC2PartialAndFullFailure(t *testing.T) {
	data := &models.SecurityData{EC2: &models.EC2Data{
		SecurityGroupsChecked: 3,
		RegionErrors:          map[string]string{"eu-west-1": "describe security groups in eu-west-1: AccessDenied"},
	}}
	req := []models.Category{models.CategoryEC2}

	partial := buildChecks(data, req, []string{"us-east-1", "eu-west-1"}, nil)[models.CategoryEC2]
	if partial.Status != models.CheckStatusPassed || len(partial.Warnings) != 1 || partial.ResourcesChecked != 3 {
		t.Errorf("partial = %+v", partial)
	}

	full := buildChecks(data, req, []string{"eu-west-1"}, nil)[models.CategoryEC2]
	if full.Status != models.CheckStatusError || full.Error == "" {
		t.Errorf("full = %+v", full)
	}
}

func TestBuildChecks_IAMUnknownMFAWarns(t *testing.T) {
	data := &models.SecurityData{IAM: &models.IAMData{
		Users: []models.IAMUser{
			{UserName: "alice", MFAEnabled: true},
			{UserName: "bob", MFAUnknown: true},
		},
		PasswordPolicy: models.PasswordPolicyStatus{Known: true},
		Root:           models.RootAccountInfo{DataAvailable: true},
	}}
	got := buildChecks(data, []models.Category{models.CategoryIAM}, []string{"us-east-1"}, nil)[models.CategoryIAM]
	if got.Status != models.CheckStatusPassed || got.ResourcesChecked != 2 {
		t.Errorf("check = %+v", got)
	}
	if len(got.Warnings) != 1 || !strings.Contains(got.Warnings[0], "MFA state unknown for 1 user") {
		t.Errorf("warnings = %v", got.Warnings)
	}
}

func TestBuildChecks_NetworkAllSourcesFailed(t *testing.T) {
	data := &models.SecurityData{Network: &models.NetworkData{
		Endpoints: []models.PublicEndpoint{},
		Errors:    []string{"a", "b", "c", "d"},
	}}
	got := buildChecks(data, []models.Category{models.CategoryNetwork}, []string{"us-east-1"}, nil)[models.CategoryNetwork]
	if got.Status != models.CheckStatusError {
		t.Errorf("status = %s; want error", got.Status)
	}
}

func TestBuildChecks_MonitoringNothingDetermined(t *testing.T) {
	data := &models.SecurityData{Monitoring: &models.MonitoringData{
		CloudTrail: models.CloudTrailStatus{Error: "denied"},
		GuardDuty:  []models.RegionalStatus{{Region: "us-east-1", Error: "denied"}},
	}}
	got := buildChecks(data, []models.Category{models.CategoryMonitoring}, []string{"us-east-1"}, nil)[models.CategoryMonitoring]
	if got.Status != models.CheckStatusError {
		t.Errorf("status = %s; want error", got.Status)
	}
}

func TestDedupeStrings(t *testing.T) {
	got := dedupeStrings([]string{"a", "", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v", got)
	}
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		in   string
		want []models.Category
	}{
		{"", models.DefaultCategories},
		{"all", models.AllCategories},
		{"s3, IAM", []models.Category{models.CategoryIAM, models.CategoryS3}},
		{"network,monitoring,network", []models.Category{models.CategoryMonitoring, models.CategoryNetwork}},
		{"iam,all", models.AllCategories},
		{" , ", models.DefaultCategories},
	}
	for _, tt := range tests {
		got, err := ParseCategories(tt.in)
		if err != nil {
			t.Errorf("ParseCategories(%q): %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParseCategories(%q) = %v; want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseCategories(%q) = %v; want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestParseCategories_Unknown(t *testing.T) {
	if _, err := ParseCategories("iam,lambda"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
