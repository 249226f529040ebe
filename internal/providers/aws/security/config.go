package awssecurity

import (
	"context"
	"fmt"

	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"

	"github.com/paws-sec/paws/internal/models"
)

// collectConfigStatus reports whether AWS Config has at least one recorder
// actively recording in region.
func collectConfigStatus(ctx context.Context, client awsConfigAPIClient, region string) models.RegionalStatus {
	out, err := client.DescribeConfigurationRecorderStatus(ctx, &configsvc.DescribeConfigurationRecorderStatusInput{})
	if err != nil {
		return models.RegionalStatus{Region: region, Error: fmt.Sprintf("describe configuration recorder status: %v", err)}
	}

	for _, status := range out.ConfigurationRecordersStatus {
		if status.Recording {
			return models.RegionalStatus{Region: region, Enabled: true}
		}
	}
	return models.RegionalStatus{Region: region}
}
