package compliance

import "github.com/paws-sec/paws/internal/models"

// Framework identifiers accepted by --compliance.
const (
	FrameworkCIS  = "cis"
	FrameworkNIST = "nist"
	FrameworkPCI  = "pci"
)

// AllFrameworks lists every supported framework in report order.
var AllFrameworks = []string{FrameworkCIS, FrameworkNIST, FrameworkPCI}

// Control is a compliance requirement mapped onto rule IDs. Requires lists
// the categories whose data the control needs; when any of them was not
// collected the control cannot be evaluated.
type Control struct {
	ID       string
	Title    string
	RuleIDs  []string
	Requires []models.Category
}

// Framework is a named, ordered set of controls.
type Framework struct {
	Key      string
	Name     string
	Controls []Control
}

var (
	iam        = []models.Category{models.CategoryIAM}
	s3         = []models.Category{models.CategoryS3}
	ec2        = []models.Category{models.CategoryEC2}
	monitoring = []models.Category{models.CategoryMonitoring}
)

var frameworks = map[string]Framework{
	FrameworkCIS: {
		Key:  FrameworkCIS,
		Name: "CIS AWS Foundations Benchmark v3.0",
		Controls: []Control{
			{ID: "1.4", Title: "No root user access keys exist", RuleIDs: []string{"ROOT_ACCESS_KEY_EXISTS"}, Requires: iam},
			{ID: "1.5", Title: "MFA is enabled for the root user", RuleIDs: []string{"ROOT_ACCOUNT_MFA_DISABLED"}, Requires: iam},
			{ID: "1.8", Title: "IAM password policy is configured", RuleIDs: []string{"IAM_PASSWORD_POLICY_MISSING"}, Requires: iam},
			{ID: "1.10", Title: "MFA is enabled for all IAM users", RuleIDs: []string{"IAM_USER_NO_MFA"}, Requires: iam},
			{ID: "1.14", Title: "Access keys are rotated every 90 days or less", RuleIDs: []string{"IAM_ACCESS_KEY_OLD"}, Requires: iam},
			{ID: "2.1.4", Title: "S3 buckets are configured with Block Public Access", RuleIDs: []string{"S3_PUBLIC_ACCESS_BLOCK_MISSING", "S3_PUBLIC_ACCESS_BLOCK_PARTIAL", "S3_PUBLIC_BUCKET"}, Requires: s3},
			{ID: "3.1", Title: "CloudTrail is enabled in all regions", RuleIDs: []string{"CLOUDTRAIL_NOT_MULTI_REGION"}, Requires: monitoring},
			{ID: "3.3", Title: "AWS Config is enabled in all regions", RuleIDs: []string{"CONFIG_RECORDER_DISABLED"}, Requires: monitoring},
			{ID: "4.1", Title: "A log metric filter and alarm exist for unauthorized API calls", RuleIDs: []string{"CLOUDWATCH_NO_ALARMS"}, Requires: monitoring},
			{ID: "5.2", Title: "No security groups allow ingress from 0.0.0.0/0 or ::/0 to remote administration ports", RuleIDs: []string{"EC2_SG_SENSITIVE_PORT_OPEN"}, Requires: ec2},
		},
	},
	FrameworkNIST: {
		Key:  FrameworkNIST,
		Name: "NIST SP 800-53 Rev. 5",
		Controls: []Control{
			{ID: "AC-2", Title: "Account Management", RuleIDs: []string{"ROOT_ACCESS_KEY_EXISTS", "IAM_ACCESS_KEY_OLD"}, Requires: iam},
			{ID: "AC-3", Title: "Access Enforcement", RuleIDs: []string{"S3_PUBLIC_BUCKET", "S3_PUBLIC_ACCESS_BLOCK_MISSING"}, Requires: s3},
			{ID: "AU-2", Title: "Event Logging", RuleIDs: []string{"CLOUDTRAIL_NOT_MULTI_REGION"}, Requires: monitoring},
			{ID: "CM-8", Title: "System Component Inventory", RuleIDs: []string{"CONFIG_RECORDER_DISABLED"}, Requires: monitoring},
			{ID: "IA-2(1)", Title: "Multi-Factor Authentication to Privileged Accounts", RuleIDs: []string{"ROOT_ACCOUNT_MFA_DISABLED", "IAM_USER_NO_MFA"}, Requires: iam},
			{ID: "IA-5(1)", Title: "Password-Based Authentication", RuleIDs: []string{"IAM_PASSWORD_POLICY_MISSING"}, Requires: iam},
			{ID: "SC-7", Title: "Boundary Protection", RuleIDs: []string{"EC2_SG_SENSITIVE_PORT_OPEN"}, Requires: ec2},
			{ID: "SC-28", Title: "Protection of Information at Rest", RuleIDs: []string{"S3_DEFAULT_ENCRYPTION_MISSING"}, Requires: s3},
			{ID: "SI-4", Title: "System Monitoring", RuleIDs: []string{"GUARDDUTY_DISABLED", "CLOUDWATCH_NO_ALARMS"}, Requires: monitoring},
		},
	},
	FrameworkPCI: {
		Key:  FrameworkPCI,
		Name: "PCI DSS v4.0",
		Controls: []Control{
			{ID: "1.3.1", Title: "Inbound traffic to the cardholder data environment is restricted", RuleIDs: []string{"EC2_SG_SENSITIVE_PORT_OPEN"}, Requires: ec2},
			{ID: "1.4.1", Title: "Network controls between trusted and untrusted networks", RuleIDs: []string{"S3_PUBLIC_BUCKET", "S3_PUBLIC_ACCESS_BLOCK_MISSING"}, Requires: s3},
			{ID: "3.5.1", Title: "Stored account data is rendered unreadable", RuleIDs: []string{"S3_DEFAULT_ENCRYPTION_MISSING"}, Requires: s3},
			{ID: "8.3.6", Title: "Passwords meet minimum complexity", RuleIDs: []string{"IAM_PASSWORD_POLICY_MISSING"}, Requires: iam},
			{ID: "8.3.9", Title: "Authentication factors are changed periodically", RuleIDs: []string{"IAM_ACCESS_KEY_OLD"}, Requires: iam},
			{ID: "8.4.1", Title: "MFA for all non-console administrative access", RuleIDs: []string{"ROOT_ACCOUNT_MFA_DISABLED", "IAM_USER_NO_MFA"}, Requires: iam},
			{ID: "8.6.1", Title: "Use of system and application accounts is managed", RuleIDs: []string{"ROOT_ACCESS_KEY_EXISTS"}, Requires: iam},
			{ID: "10.2.1", Title: "Audit logs are enabled and active", RuleIDs: []string{"CLOUDTRAIL_NOT_MULTI_REGION"}, Requires: monitoring},
			{ID: "11.5.1", Title: "Intrusion-detection techniques are used", RuleIDs: []string{"GUARDDUTY_DISABLED"}, Requires: monitoring},
		},
	},
}

// Lookup returns the framework registered under key.
func Lookup(key string) (Framework, bool) {
	f, ok := frameworks[key]
	return f, ok
}
