package rules

import (
	"fmt"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/policy"
)

// DefaultSensitivePorts are SSH, RDP, MySQL, and PostgreSQL.
var DefaultSensitivePorts = []int{22, 3389, 3306, 5432}

var internetCIDRs = map[string]bool{
	"0.0.0.0/0": true,
	"::/0":      true,
}

// SecurityGroupSensitivePortRule flags security groups that allow inbound
// traffic from the whole internet to a sensitive port. A grant matches when
// its protocol is "-1" (all traffic) or its port range covers the port.
// One finding is produced per group and port, whatever the number of
// matching IPv4/IPv6 grants. The port list comes from the rule's policy
// "ports" entry, falling back to DefaultSensitivePorts.
type SecurityGroupSensitivePortRule struct {
	// Ports takes precedence over the policy and the defaults when non-empty.
	Ports []int
}

func (r SecurityGroupSensitivePortRule) ID() string                { return "EC2_SG_SENSITIVE_PORT_OPEN" }
func (r SecurityGroupSensitivePortRule) Name() string              { return "Security Group Exposes Sensitive Port" }
func (r SecurityGroupSensitivePortRule) Category() models.Category { return models.CategoryEC2 }

func (r SecurityGroupSensitivePortRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.EC2 == nil {
		return nil
	}
	ports := r.Ports
	if len(ports) == 0 {
		ports = policy.GetPorts(r.ID(), DefaultSensitivePorts, ctx.Policy)
	}

	type key struct {
		region, group string
		port          int
	}
	seen := make(map[key]bool)

	var findings []models.Finding
	for _, sg := range ctx.Data.EC2.Rules {
		if !internetCIDRs[sg.CIDR] {
			continue
		}
		for _, port := range ports {
			if !grantCoversPort(sg, port) {
				continue
			}
			k := key{sg.Region, sg.GroupID, port}
			if seen[k] {
				continue
			}
			seen[k] = true

			f := newFinding(r, ctx, finding{
				resourceID:     sg.GroupID,
				resourceType:   models.ResourceSecurityGroup,
				region:         sg.Region,
				severity:       models.SeverityHigh,
				explanation:    fmt.Sprintf("Security group %s allows inbound port %d from %s.", sg.GroupID, port, sg.CIDR),
				recommendation: "Restrict the rule to trusted address ranges, or use Systems Manager Session Manager or a VPN for administrative access.",
				metadata: map[string]any{
					"group_name": sg.GroupName,
					"port":       port,
					"protocol":   sg.Protocol,
					"open_cidr":  sg.CIDR,
				},
			})
			f.ID = fmt.Sprintf("%s-%s-%d", r.ID(), sg.GroupID, port)
			findings = append(findings, f)
		}
	}
	return findings
}

// grantCoversPort reports whether the grant admits TCP/UDP traffic on port.
// ICMP grants use the port fields for type and code and never match.
func grantCoversPort(sg models.SecurityGroupRule, port int) bool {
	switch sg.Protocol {
	case "-1":
		return true
	case "icmp", "icmpv6", "1", "58":
		return false
	}
	if sg.FromPort < 0 || sg.ToPort < 0 {
		return false
	}
	return sg.FromPort <= port && port <= sg.ToPort
}
