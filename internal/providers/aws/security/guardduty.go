package awssecurity

import (
	"context"
	"fmt"

	guardduty "github.com/aws/aws-sdk-go-v2/service/guardduty"
	guarddutytype "github.com/aws/aws-sdk-go-v2/service/guardduty/types"

	"github.com/paws-sec/paws/internal/models"
)

// collectGuardDutyStatus reports whether region has an enabled GuardDuty
// detector. No detector means disabled; a failed call leaves Error set.
func collectGuardDutyStatus(ctx context.Context, client guardDutyAPIClient, region string) models.RegionalStatus {
	listOut, err := client.ListDetectors(ctx, &guardduty.ListDetectorsInput{})
	if err != nil {
		return models.RegionalStatus{Region: region, Error: fmt.Sprintf("list detectors: %v", err)}
	}

	for i := range listOut.DetectorIds {
		detOut, err := client.GetDetector(ctx, &guardduty.GetDetectorInput{
			DetectorId: &listOut.DetectorIds[i],
		})
		if err != nil {
			return models.RegionalStatus{Region: region, Error: fmt.Sprintf("get detector: %v", err)}
		}
		if detOut.Status == guarddutytype.DetectorStatusEnabled {
			return models.RegionalStatus{Region: region, Enabled: true}
		}
	}
	return models.RegionalStatus{Region: region}
}
