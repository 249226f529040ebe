package models

import "time"

// Severity represents the impact level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Category identifies the check category a finding or check result belongs to.
type Category string

const (
	CategoryIAM        Category = "iam"
	CategoryS3         Category = "s3"
	CategoryEC2        Category = "ec2"
	CategoryMonitoring Category = "monitoring"
	CategoryNetwork    Category = "network"
)

// AllCategories lists every supported check category in execution order.
var AllCategories = []Category{
	CategoryIAM,
	CategoryS3,
	CategoryEC2,
	CategoryMonitoring,
	CategoryNetwork,
}

// DefaultCategories are the categories audited when none are requested.
var DefaultCategories = []Category{
	CategoryIAM,
	CategoryS3,
	CategoryEC2,
}

// ResourceType identifies the kind of cloud resource a finding refers to.
type ResourceType string

const (
	ResourceIAMUser          ResourceType = "IAM_USER"
	ResourceIAMAccessKey     ResourceType = "IAM_ACCESS_KEY"
	ResourceIAMAccount       ResourceType = "IAM_ACCOUNT"
	ResourceRootAccount      ResourceType = "ROOT_ACCOUNT"
	ResourceS3Bucket         ResourceType = "S3_BUCKET"
	ResourceSecurityGroup    ResourceType = "SECURITY_GROUP"
	ResourceCloudTrail       ResourceType = "CLOUDTRAIL"
	ResourceGuardDuty        ResourceType = "GUARDDUTY_DETECTOR"
	ResourceConfigRecorder   ResourceType = "CONFIG_RECORDER"
	ResourceCloudWatchAlarms ResourceType = "CLOUDWATCH_ALARMS"
	ResourceEC2Instance      ResourceType = "EC2_INSTANCE"
	ResourceElasticIP        ResourceType = "ELASTIC_IP"
	ResourceLoadBalancer     ResourceType = "LOAD_BALANCER"
	ResourceRDSInstance      ResourceType = "RDS_INSTANCE"
)

// Finding is a single detected security issue.
// It is the atomic output unit of the rule engine.
type Finding struct {
	ID             string         `json:"id"`
	RuleID         string         `json:"rule_id"`
	Title          string         `json:"title"`
	ResourceID     string         `json:"resource_id"`
	ResourceType   ResourceType   `json:"resource_type"`
	Region         string         `json:"region"`
	AccountID      string         `json:"account_id"`
	Profile        string         `json:"profile"`
	Category       Category       `json:"category"`
	Severity       Severity       `json:"severity"`
	Explanation    string         `json:"explanation"`
	Recommendation string         `json:"recommendation"`
	DetectedAt     time.Time      `json:"detected_at"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// AuditSummary aggregates finding counts across all severity levels.
type AuditSummary struct {
	TotalFindings    int `json:"total_findings"`
	CriticalFindings int `json:"critical_findings"`
	HighFindings     int `json:"high_findings"`
	MediumFindings   int `json:"medium_findings"`
	LowFindings      int `json:"low_findings"`
	InfoFindings     int `json:"info_findings"`
}

// AuditReport is the top-level output of an audit run. It is serialised
// verbatim as the JSON report and is the sole input to the PDF renderer.
type AuditReport struct {
	ReportID        string                   `json:"report_id"`
	GeneratedAt     time.Time                `json:"generated_at"`
	Profile         string                   `json:"profile"`
	AccountID       string                   `json:"account_id"`
	Regions         []string                 `json:"regions"`
	Checks          map[Category]CheckResult `json:"checks"`
	Summary         AuditSummary             `json:"summary"`
	Score           SecurityScore            `json:"score"`
	Findings        []Finding                `json:"findings"`
	Compliance      *ComplianceReport        `json:"compliance,omitempty"`
	Tools           []ToolRun                `json:"tools,omitempty"`
	PublicEndpoints []PublicEndpoint         `json:"public_endpoints,omitempty"`
}
