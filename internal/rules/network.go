package rules

import (
	"fmt"

	"github.com/paws-sec/paws/internal/models"
)

// PublicEndpointRule records each internet-reachable resource as INFO. It
// is an inventory, not a problem; the findings never affect the score.
// Resource names such as RDS identifiers repeat across regions, so the
// finding ID carries the region.
type PublicEndpointRule struct{}

func (r PublicEndpointRule) ID() string                { return "NETWORK_PUBLIC_ENDPOINT" }
func (r PublicEndpointRule) Name() string              { return "Internet-Reachable Resource" }
func (r PublicEndpointRule) Category() models.Category { return models.CategoryNetwork }

func (r PublicEndpointRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.Network == nil {
		return nil
	}
	var findings []models.Finding
	for _, e := range ctx.Data.Network.Endpoints {
		f := newFinding(r, ctx, finding{
			resourceID:     e.ResourceID,
			resourceType:   e.ResourceType,
			region:         e.Region,
			severity:       models.SeverityInfo,
			explanation:    fmt.Sprintf("%s %s is reachable from the internet at %s.", e.ResourceType, e.ResourceID, e.Address),
			recommendation: "Confirm the exposure is intended and restricted by security groups.",
			metadata:       map[string]any{"address": e.Address},
		})
		f.ID = fmt.Sprintf("%s-%s-%s", r.ID(), e.Region, e.ResourceID)
		findings = append(findings, f)
	}
	return findings
}
