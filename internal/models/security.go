package models

import "time"

// SecurityData holds the raw security posture snapshot collected from an AWS
// account. Each category pointer is nil when that category was not requested.
// IAM and S3 are global; EC2, monitoring, and network entries carry their own
// Region so rules can emit correctly attributed findings.
type SecurityData struct {
	IAM        *IAMData        `json:"iam,omitempty"`
	S3         *S3Data         `json:"s3,omitempty"`
	EC2        *EC2Data        `json:"ec2,omitempty"`
	Monitoring *MonitoringData `json:"monitoring,omitempty"`
	Network    *NetworkData    `json:"network,omitempty"`
}

// IAMData is the account-level identity snapshot.
// Error is set when the user listing itself failed; in that case Users is
// empty and IAM rules about users must not be trusted.
type IAMData struct {
	Users          []IAMUser            `json:"users"`
	PasswordPolicy PasswordPolicyStatus `json:"password_policy"`
	Root           RootAccountInfo      `json:"root"`
	Error          string               `json:"error,omitempty"`
}

// IAMUser represents an IAM user and its relevant security attributes.
// HasLoginProfile is true when the user has a console password.
// MFAUnknown is set when the MFA device lookup failed; MFAEnabled is then
// meaningless and must not be reported as "no MFA".
type IAMUser struct {
	UserName        string         `json:"user_name"`
	MFAEnabled      bool           `json:"mfa_enabled"`
	MFAUnknown      bool           `json:"mfa_unknown,omitempty"`
	HasLoginProfile bool           `json:"has_login_profile"`
	AccessKeys      []IAMAccessKey `json:"access_keys,omitempty"`
}

// IAMAccessKey is the metadata of a single access key owned by a user.
type IAMAccessKey struct {
	AccessKeyID string    `json:"access_key_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// PasswordPolicyStatus reports whether an account password policy exists.
// Known is false when the lookup failed for a reason other than "no policy",
// so rules can avoid flagging a policy they could not read.
type PasswordPolicyStatus struct {
	Known             bool  `json:"known"`
	Configured        bool  `json:"configured"`
	MinimumLength     int32 `json:"minimum_length,omitempty"`
	RequireSymbols    bool  `json:"require_symbols,omitempty"`
	RequireNumbers    bool  `json:"require_numbers,omitempty"`
	MaxPasswordAgeDay int32 `json:"max_password_age_days,omitempty"`
}

// RootAccountInfo captures relevant security attributes of the root account.
// DataAvailable is false when GetAccountSummary failed.
type RootAccountInfo struct {
	HasAccessKeys bool `json:"has_access_keys"`
	MFAEnabled    bool `json:"mfa_enabled"`
	DataAvailable bool `json:"data_available"`
}

// PublicAccessBlockState summarises the four S3 Block Public Access flags.
type PublicAccessBlockState string

const (
	PublicAccessBlockFull    PublicAccessBlockState = "full"
	PublicAccessBlockPartial PublicAccessBlockState = "partial"
	PublicAccessBlockMissing PublicAccessBlockState = "missing"
	PublicAccessBlockUnknown PublicAccessBlockState = "unknown"
)

// S3Data is the bucket inventory. Error is set when ListBuckets failed.
type S3Data struct {
	Buckets []S3Bucket `json:"buckets"`
	Error   string     `json:"error,omitempty"`
}

// S3 bucket lookups, used as keys of S3Bucket.Errors.
const (
	S3CheckPublicAccessBlock = "public_access_block"
	S3CheckPolicyStatus      = "policy_status"
	S3CheckEncryption        = "encryption"
)

// S3Bucket represents an S3 bucket and its security attributes.
// Public is true only when GetBucketPolicyStatus reports IsPublic.
// Errors maps a failed lookup (S3Check*) to its error; the matching
// attribute is then undetermined and must not be reported on.
type S3Bucket struct {
	Name                     string                 `json:"name"`
	Region                   string                 `json:"region,omitempty"`
	PublicAccessBlock        PublicAccessBlockState `json:"public_access_block"`
	Public                   bool                   `json:"public"`
	DefaultEncryptionEnabled bool                   `json:"default_encryption_enabled"`
	Errors                   map[string]string      `json:"errors,omitempty"`
}

// CheckFailed reports whether the named lookup failed for this bucket.
func (b S3Bucket) CheckFailed(check string) bool {
	_, failed := b.Errors[check]
	return failed
}

// EC2Data aggregates security group ingress rules from every audited region.
// RegionErrors maps a region to the DescribeSecurityGroups failure seen there.
type EC2Data struct {
	SecurityGroupsChecked int                 `json:"security_groups_checked"`
	Rules                 []SecurityGroupRule `json:"rules"`
	RegionErrors          map[string]string   `json:"region_errors,omitempty"`
}

// SecurityGroupRule is one inbound CIDR grant of a security group.
// Protocol "-1" means all protocols; FromPort/ToPort are -1 when unset.
type SecurityGroupRule struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name,omitempty"`
	Protocol  string `json:"protocol"`
	FromPort  int    `json:"from_port"`
	ToPort    int    `json:"to_port"`
	CIDR      string `json:"cidr"`
	Region    string `json:"region"`
}

// MonitoringData holds logging and detection posture.
type MonitoringData struct {
	CloudTrail CloudTrailStatus `json:"cloud_trail"`
	GuardDuty  []RegionalStatus `json:"guard_duty"`
	Config     []RegionalStatus `json:"config"`
	Alarms     []RegionalStatus `json:"alarms"`
}

// CloudTrailStatus holds the CloudTrail configuration for the account.
// Checked is false when DescribeTrails failed.
type CloudTrailStatus struct {
	Checked             bool   `json:"checked"`
	TrailCount          int    `json:"trail_count"`
	HasMultiRegionTrail bool   `json:"has_multi_region_trail"`
	Error               string `json:"error,omitempty"`
}

// RegionalStatus is an on/off service state in one region.
// Entries with a non-empty Error were not determined and must be skipped.
type RegionalStatus struct {
	Region  string `json:"region"`
	Enabled bool   `json:"enabled"`
	Error   string `json:"error,omitempty"`
}

// NetworkData is the inventory of internet-reachable resources.
type NetworkData struct {
	Endpoints []PublicEndpoint `json:"endpoints"`
	Errors    []string         `json:"errors,omitempty"`
}

// PublicEndpoint is a resource that can be reached from the internet.
type PublicEndpoint struct {
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`
	Region       string       `json:"region"`
	Address      string       `json:"address"`
}
