package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"

	"github.com/paws-sec/paws/internal/models"
)

// collectCloudTrailStatus calls DescribeTrails to determine whether at least
// one multi-region trail covers the account. Shadow trails are included so a
// multi-region trail whose home region differs from the client's is seen.
func collectCloudTrailStatus(ctx context.Context, client cloudTrailAPIClient) models.CloudTrailStatus {
	out, err := client.DescribeTrails(ctx, &cloudtrailsvc.DescribeTrailsInput{
		IncludeShadowTrails: aws.Bool(true),
	})
	if err != nil {
		return models.CloudTrailStatus{Error: fmt.Sprintf("describe trails: %v", err)}
	}

	status := models.CloudTrailStatus{Checked: true, TrailCount: len(out.TrailList)}
	for _, trail := range out.TrailList {
		if aws.ToBool(trail.IsMultiRegionTrail) {
			status.HasMultiRegionTrail = true
			break
		}
	}
	return status
}
