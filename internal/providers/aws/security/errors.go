// Package awssecurity collects the raw security posture of an AWS account:
// IAM users and account settings, S3 bucket controls, EC2 security group
// ingress, monitoring services, and internet-facing resources.
//
// Collected types live in internal/models so the engine, rules, and renderers
// share them without import cycles. The collector never produces findings.
package awssecurity

import (
	"errors"

	"github.com/aws/smithy-go"
)

// apiErrorCode returns the AWS error code carried by err, or "".
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
