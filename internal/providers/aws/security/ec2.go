package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/paws-sec/paws/internal/models"
)

// collectSecurityGroupRules lists all security groups in region and returns
// the number of groups plus one SecurityGroupRule per inbound CIDR grant.
// Both IPv4 and IPv6 ranges are included; grants to other security groups or
// prefix lists are not internet exposure and are skipped.
func collectSecurityGroupRules(ctx context.Context, client ec2APIClient, region string) (int, []models.SecurityGroupRule, error) {
	paginator := ec2svc.NewDescribeSecurityGroupsPaginator(client, &ec2svc.DescribeSecurityGroupsInput{})

	var (
		groups int
		rules  []models.SecurityGroupRule
	)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return groups, rules, fmt.Errorf("describe security groups in %s: %w", region, err)
		}
		for _, sg := range page.SecurityGroups {
			groups++
			rules = append(rules, ingressRules(sg, region)...)
		}
	}
	return groups, rules, nil
}

func ingressRules(sg ec2types.SecurityGroup, region string) []models.SecurityGroupRule {
	groupID := aws.ToString(sg.GroupId)
	groupName := aws.ToString(sg.GroupName)

	var rules []models.SecurityGroupRule
	for _, perm := range sg.IpPermissions {
		base := models.SecurityGroupRule{
			GroupID:   groupID,
			GroupName: groupName,
			Protocol:  aws.ToString(perm.IpProtocol),
			FromPort:  portOrUnset(perm.FromPort),
			ToPort:    portOrUnset(perm.ToPort),
			Region:    region,
		}
		for _, r := range perm.IpRanges {
			rule := base
			rule.CIDR = aws.ToString(r.CidrIp)
			rules = append(rules, rule)
		}
		for _, r := range perm.Ipv6Ranges {
			rule := base
			rule.CIDR = aws.ToString(r.CidrIpv6)
			rules = append(rules, rule)
		}
	}
	return rules
}

func portOrUnset(p *int32) int {
	if p == nil {
		return -1
	}
	return int(*p)
}
