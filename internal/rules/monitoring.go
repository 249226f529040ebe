package rules

import (
	"fmt"

	"github.com/paws-sec/paws/internal/models"
)

// CloudTrailNotMultiRegionRule flags accounts without a multi-region trail.
type CloudTrailNotMultiRegionRule struct{}

func (r CloudTrailNotMultiRegionRule) ID() string                { return "CLOUDTRAIL_NOT_MULTI_REGION" }
func (r CloudTrailNotMultiRegionRule) Name() string              { return "CloudTrail Not Multi-Region" }
func (r CloudTrailNotMultiRegionRule) Category() models.Category { return models.CategoryMonitoring }

func (r CloudTrailNotMultiRegionRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.Monitoring == nil {
		return nil
	}
	ct := ctx.Data.Monitoring.CloudTrail
	if !ct.Checked || ct.HasMultiRegionTrail {
		return nil
	}
	explanation := "No multi-region CloudTrail trail is configured; API activity in other regions is not recorded."
	if ct.TrailCount == 0 {
		explanation = "No CloudTrail trail is configured for the account."
	}
	return []models.Finding{newFinding(r, ctx, finding{
		resourceID:     ctx.AccountID,
		resourceType:   models.ResourceCloudTrail,
		region:         globalRegion,
		severity:       models.SeverityHigh,
		explanation:    explanation,
		recommendation: "Create a multi-region trail delivering to a protected S3 bucket.",
		metadata:       map[string]any{"trail_count": ct.TrailCount},
	})}
}

// regionalDisabled emits one finding per region whose service is known to be
// off. Regions with a lookup error are skipped.
func regionalDisabled(r Rule, ctx RuleContext, statuses []models.RegionalStatus, f func(region string) finding) []models.Finding {
	var findings []models.Finding
	for _, s := range statuses {
		if s.Error != "" || s.Enabled {
			continue
		}
		findings = append(findings, newFinding(r, ctx, f(s.Region)))
	}
	return findings
}

// GuardDutyDisabledRule flags regions without an enabled GuardDuty detector.
type GuardDutyDisabledRule struct{}

func (r GuardDutyDisabledRule) ID() string                { return "GUARDDUTY_DISABLED" }
func (r GuardDutyDisabledRule) Name() string              { return "GuardDuty Disabled" }
func (r GuardDutyDisabledRule) Category() models.Category { return models.CategoryMonitoring }

func (r GuardDutyDisabledRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.Monitoring == nil {
		return nil
	}
	return regionalDisabled(r, ctx, ctx.Data.Monitoring.GuardDuty, func(region string) finding {
		return finding{
			resourceID:     region,
			resourceType:   models.ResourceGuardDuty,
			region:         region,
			severity:       models.SeverityHigh,
			explanation:    fmt.Sprintf("GuardDuty is not enabled in %s.", region),
			recommendation: "Enable GuardDuty in every region, ideally through a delegated administrator account.",
		}
	})
}

// ConfigRecorderDisabledRule flags regions where AWS Config is not recording.
type ConfigRecorderDisabledRule struct{}

func (r ConfigRecorderDisabledRule) ID() string                { return "CONFIG_RECORDER_DISABLED" }
func (r ConfigRecorderDisabledRule) Name() string              { return "AWS Config Recorder Disabled" }
func (r ConfigRecorderDisabledRule) Category() models.Category { return models.CategoryMonitoring }

func (r ConfigRecorderDisabledRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.Monitoring == nil {
		return nil
	}
	return regionalDisabled(r, ctx, ctx.Data.Monitoring.Config, func(region string) finding {
		return finding{
			resourceID:     region,
			resourceType:   models.ResourceConfigRecorder,
			region:         region,
			severity:       models.SeverityMedium,
			explanation:    fmt.Sprintf("AWS Config is not recording resource changes in %s.", region),
			recommendation: "Create and start a configuration recorder covering all resource types.",
		}
	})
}

// CloudWatchNoAlarmsRule flags regions with no CloudWatch alarm at all.
type CloudWatchNoAlarmsRule struct{}

func (r CloudWatchNoAlarmsRule) ID() string                { return "CLOUDWATCH_NO_ALARMS" }
func (r CloudWatchNoAlarmsRule) Name() string              { return "No CloudWatch Alarms" }
func (r CloudWatchNoAlarmsRule) Category() models.Category { return models.CategoryMonitoring }

func (r CloudWatchNoAlarmsRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.Monitoring == nil {
		return nil
	}
	return regionalDisabled(r, ctx, ctx.Data.Monitoring.Alarms, func(region string) finding {
		return finding{
			resourceID:     region,
			resourceType:   models.ResourceCloudWatchAlarms,
			region:         region,
			severity:       models.SeverityLow,
			explanation:    fmt.Sprintf("No CloudWatch alarms are defined in %s.", region),
			recommendation: "Add alarms for root account use, unauthorized API calls, and IAM policy changes.",
		}
	})
}
