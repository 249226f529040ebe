package awssecurity

import (
	"context"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/providers/aws/common"
)

// SecurityCollector collects raw security posture data from an AWS account.
// Only the requested categories are populated in the returned SecurityData.
//
// Implementations must never apply business logic or produce findings.
// A failure inside one category is recorded on that category's data and
// never aborts the others; only context cancellation is returned as an error.
type SecurityCollector interface {
	CollectAll(
		ctx context.Context,
		profile *common.ProfileConfig,
		provider common.AWSClientProvider,
		regions []string,
		categories []models.Category,
	) (*models.SecurityData, error)
}
