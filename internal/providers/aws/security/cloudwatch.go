package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/paws-sec/paws/internal/models"
)

// collectAlarmStatus reports whether region has any CloudWatch alarm. One
// record is enough to answer the question.
func collectAlarmStatus(ctx context.Context, client cloudWatchAPIClient, region string) models.RegionalStatus {
	out, err := client.DescribeAlarms(ctx, &cloudwatchsvc.DescribeAlarmsInput{
		MaxRecords: aws.Int32(1),
	})
	if err != nil {
		return models.RegionalStatus{Region: region, Error: fmt.Sprintf("describe alarms: %v", err)}
	}
	return models.RegionalStatus{
		Region:  region,
		Enabled: len(out.MetricAlarms)+len(out.CompositeAlarms) > 0,
	}
}
