package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/paws-sec/paws/internal/models"
)

// PublicEndpointSources is the number of independent lookups made per region
// by the public endpoint inventory.
const PublicEndpointSources = 4

// collectPublicEndpoints inventories internet-reachable resources in region:
// EC2 public IPs, Elastic IPs, internet-facing load balancers, and publicly
// accessible RDS instances. Each source fails independently; its error is
// returned in errs and the others are still collected.
func collectPublicEndpoints(ctx context.Context, clients *secClients, region string) (endpoints []models.PublicEndpoint, errs []string) {
	seen := make(map[string]bool)
	add := func(e models.PublicEndpoint) {
		if e.Address == "" || seen[e.Address] {
			return
		}
		seen[e.Address] = true
		endpoints = append(endpoints, e)
	}

	if err := instancePublicIPs(ctx, clients.EC2, region, add); err != nil {
		errs = append(errs, err.Error())
	}
	if err := elasticIPs(ctx, clients.EC2, region, add); err != nil {
		errs = append(errs, err.Error())
	}
	if err := internetFacingLoadBalancers(ctx, clients.ELBv2, region, add); err != nil {
		errs = append(errs, err.Error())
	}
	if err := publicRDSInstances(ctx, clients.RDS, region, add); err != nil {
		errs = append(errs, err.Error())
	}
	return endpoints, errs
}

func instancePublicIPs(ctx context.Context, client ec2APIClient, region string, add func(models.PublicEndpoint)) error {
	paginator := ec2svc.NewDescribeInstancesPaginator(client, &ec2svc.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("describe instances in %s: %w", region, err)
		}
		for _, res := range page.Reservations {
			for _, inst := range res.Instances {
				add(models.PublicEndpoint{
					ResourceID:   aws.ToString(inst.InstanceId),
					ResourceType: models.ResourceEC2Instance,
					Region:       region,
					Address:      aws.ToString(inst.PublicIpAddress),
				})
			}
		}
	}
	return nil
}

// elasticIPs runs after instancePublicIPs, so an EIP attached to an instance
// is already recorded under the instance.
func elasticIPs(ctx context.Context, client ec2APIClient, region string, add func(models.PublicEndpoint)) error {
	out, err := client.DescribeAddresses(ctx, &ec2svc.DescribeAddressesInput{})
	if err != nil {
		return fmt.Errorf("describe addresses in %s: %w", region, err)
	}
	for _, a := range out.Addresses {
		id := aws.ToString(a.AllocationId)
		if id == "" {
			id = aws.ToString(a.PublicIp)
		}
		add(models.PublicEndpoint{
			ResourceID:   id,
			ResourceType: models.ResourceElasticIP,
			Region:       region,
			Address:      aws.ToString(a.PublicIp),
		})
	}
	return nil
}

func internetFacingLoadBalancers(ctx context.Context, client elbv2APIClient, region string, add func(models.PublicEndpoint)) error {
	paginator := elbv2svc.NewDescribeLoadBalancersPaginator(client, &elbv2svc.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("describe load balancers in %s: %w", region, err)
		}
		for _, lb := range page.LoadBalancers {
			if lb.Scheme != elbv2types.LoadBalancerSchemeEnumInternetFacing {
				continue
			}
			add(models.PublicEndpoint{
				ResourceID:   aws.ToString(lb.LoadBalancerName),
				ResourceType: models.ResourceLoadBalancer,
				Region:       region,
				Address:      aws.ToString(lb.DNSName),
			})
		}
	}
	return nil
}

func publicRDSInstances(ctx context.Context, client rdsAPIClient, region string, add func(models.PublicEndpoint)) error {
	paginator := rdssvc.NewDescribeDBInstancesPaginator(client, &rdssvc.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("describe db instances in %s: %w", region, err)
		}
		for _, db := range page.DBInstances {
			if !aws.ToBool(db.PubliclyAccessible) || db.Endpoint == nil {
				continue
			}
			add(models.PublicEndpoint{
				ResourceID:   aws.ToString(db.DBInstanceIdentifier),
				ResourceType: models.ResourceRDSInstance,
				Region:       region,
				Address:      aws.ToString(db.Endpoint.Address),
			})
		}
	}
	return nil
}
