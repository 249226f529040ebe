// Package aws_security provides the built-in AWS security audit rule pack.
// It groups all security rules into a single New() function that the CLI
// wires into a DefaultRuleRegistry before invoking the audit engine.
//
// Convention: every rule pack lives in internal/rulepacks/<domain>/pack.go
// and exposes a single New() func returning []rules.Rule.
package aws_security

import "github.com/paws-sec/paws/internal/rules"

// New returns the default AWS security audit rule pack, grouped by category.
func New() []rules.Rule {
	return []rules.Rule{
		// iam
		rules.RootAccessKeyRule{},               // CRITICAL
		rules.RootMFADisabledRule{},             // CRITICAL
		rules.IAMUserWithoutMFARule{},           // MEDIUM
		rules.IAMAccessKeyOldRule{},             // MEDIUM
		rules.IAMPasswordPolicyMissingRule{},    // LOW
		rules.IAMPasswordPolicyConfiguredRule{}, // INFO

		// s3
		rules.S3PublicBucketRule{},
		rules.S3PublicAccessBlockMissingRule{},
		rules.S3PublicAccessBlockPartialRule{},
		rules.S3DefaultEncryptionMissingRule{},

		// ec2
		rules.SecurityGroupSensitivePortRule{},

		// monitoring
		rules.CloudTrailNotMultiRegionRule{},
		rules.GuardDutyDisabledRule{},
		rules.ConfigRecorderDisabledRule{},
		rules.CloudWatchNoAlarmsRule{},

		// network
		rules.PublicEndpointRule{},
	}
}
