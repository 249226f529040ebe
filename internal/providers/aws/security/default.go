package awssecurity

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/providers/aws/common"
)

// DefaultSecurityCollector is the production SecurityCollector.
// IAM, S3, and CloudTrail are collected once through the profile's home
// region. Security groups, GuardDuty, AWS Config, CloudWatch alarms, and the
// public endpoint inventory are collected per region and aggregated.
type DefaultSecurityCollector struct {
	factory secClientFactory
	log     *zap.Logger
}

// NewDefaultSecurityCollector returns a collector wired to production AWS SDK
// clients. A nil logger disables logging.
func NewDefaultSecurityCollector(log *zap.Logger) *DefaultSecurityCollector {
	return NewDefaultSecurityCollectorWithFactory(newDefaultSecClients, log)
}

// NewDefaultSecurityCollectorWithFactory returns a collector that uses the
// supplied factory, allowing tests to inject fake clients.
func NewDefaultSecurityCollectorWithFactory(f secClientFactory, log *zap.Logger) *DefaultSecurityCollector {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultSecurityCollector{factory: f, log: log}
}

// CollectAll gathers the requested categories for profile. Per-category
// failures are recorded on the returned data; the only error returned is
// context cancellation.
func (c *DefaultSecurityCollector) CollectAll(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
	categories []models.Category,
) (*models.SecurityData, error) {
	data := &models.SecurityData{}
	clients := newRegionalClients(c.factory, provider, profile)
	global := clients.get(profile.Region)

	if slices.Contains(categories, models.CategoryIAM) {
		c.log.Debug("collecting iam")
		data.IAM = collectIAM(ctx, global.IAM, c.log)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if slices.Contains(categories, models.CategoryS3) {
		c.log.Debug("collecting s3")
		data.S3 = collectS3(ctx, global.S3, func(region string) s3APIClient {
			return clients.get(region).S3
		}, c.log)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if slices.Contains(categories, models.CategoryEC2) {
		data.EC2 = &models.EC2Data{Rules: []models.SecurityGroupRule{}}
		for _, region := range regions {
			c.log.Debug("collecting security groups", zap.String("region", region))
			groups, rules, err := collectSecurityGroupRules(ctx, clients.get(region).EC2, region)
			data.EC2.SecurityGroupsChecked += groups
			data.EC2.Rules = append(data.EC2.Rules, rules...)
			if err != nil {
				c.log.Warn("security group collection failed", zap.String("region", region), zap.Error(err))
				if data.EC2.RegionErrors == nil {
					data.EC2.RegionErrors = make(map[string]string)
				}
				data.EC2.RegionErrors[region] = err.Error()
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	if slices.Contains(categories, models.CategoryMonitoring) {
		c.log.Debug("collecting monitoring")
		mon := &models.MonitoringData{
			CloudTrail: collectCloudTrailStatus(ctx, global.CloudTrail),
		}
		for _, region := range regions {
			rc := clients.get(region)
			mon.GuardDuty = append(mon.GuardDuty, collectGuardDutyStatus(ctx, rc.GuardDuty, region))
			mon.Config = append(mon.Config, collectConfigStatus(ctx, rc.Config, region))
			mon.Alarms = append(mon.Alarms, collectAlarmStatus(ctx, rc.CloudWatch, region))
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		c.logRegionalErrors("guardduty", mon.GuardDuty)
		c.logRegionalErrors("config", mon.Config)
		c.logRegionalErrors("cloudwatch", mon.Alarms)
		data.Monitoring = mon
	}

	if slices.Contains(categories, models.CategoryNetwork) {
		net := &models.NetworkData{Endpoints: []models.PublicEndpoint{}}
		for _, region := range regions {
			c.log.Debug("collecting public endpoints", zap.String("region", region))
			endpoints, errs := collectPublicEndpoints(ctx, clients.get(region), region)
			net.Endpoints = append(net.Endpoints, endpoints...)
			for _, e := range errs {
				c.log.Warn("public endpoint collection failed", zap.String("region", region), zap.String("error", e))
			}
			net.Errors = append(net.Errors, errs...)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		data.Network = net
	}

	return data, nil
}

func (c *DefaultSecurityCollector) logRegionalErrors(service string, statuses []models.RegionalStatus) {
	for _, s := range statuses {
		if s.Error != "" {
			c.log.Warn(fmt.Sprintf("%s status unavailable", service), zap.String("region", s.Region), zap.String("error", s.Error))
		}
	}
}

// regionalClients builds secClients lazily, once per region.
type regionalClients struct {
	factory  secClientFactory
	provider common.AWSClientProvider
	profile  *common.ProfileConfig
	byRegion map[string]*secClients
}

func newRegionalClients(f secClientFactory, provider common.AWSClientProvider, profile *common.ProfileConfig) *regionalClients {
	return &regionalClients{
		factory:  f,
		provider: provider,
		profile:  profile,
		byRegion: make(map[string]*secClients),
	}
}

func (r *regionalClients) get(region string) *secClients {
	if c, ok := r.byRegion[region]; ok {
		return c
	}
	c := r.factory(r.provider.ConfigForRegion(r.profile, region))
	r.byRegion[region] = c
	return c
}
