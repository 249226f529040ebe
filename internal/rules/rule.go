package rules

import (
	"fmt"
	"time"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/policy"
)

// RuleContext carries the collected security snapshot for one account.
// It is the sole input to Rule.Evaluate and must contain everything a rule
// needs; rules must never make network calls or read external state.
type RuleContext struct {
	// AccountID is the AWS account being evaluated.
	AccountID string

	// Profile is the AWS profile name for this evaluation run.
	Profile string

	// Data is the collected snapshot. Categories that were not requested are
	// nil and rules must skip them.
	Data *models.SecurityData

	// Policy holds the active PolicyConfig for threshold overrides. May be nil
	// when no policy file is loaded; rules must treat nil as "use defaults".
	Policy *policy.PolicyConfig

	// Now is the evaluation time used for ages and DetectedAt. Zero means
	// time.Now().
	Now time.Time
}

func (c RuleContext) now() time.Time {
	if c.Now.IsZero() {
		return time.Now().UTC()
	}
	return c.Now.UTC()
}

// Rule is a single deterministic security check.
// Rules must be stateless and safe to call concurrently.
// They must never call the AWS SDK or any external service.
type Rule interface {
	// ID returns the unique, stable identifier for this rule (e.g. "IAM_USER_NO_MFA").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Category is the check category whose data the rule reads.
	Category() models.Category

	// Evaluate inspects the provided context and returns zero or more findings.
	Evaluate(ctx RuleContext) []models.Finding
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) []models.Finding
}

// finding is the common constructor used by every rule. The finding ID is
// "<rule>-<resource>" so that it is stable across runs.
type finding struct {
	resourceID     string
	resourceType   models.ResourceType
	region         string
	severity       models.Severity
	explanation    string
	recommendation string
	metadata       map[string]any
}

func newFinding(r Rule, ctx RuleContext, f finding) models.Finding {
	return models.Finding{
		ID:             fmt.Sprintf("%s-%s", r.ID(), f.resourceID),
		RuleID:         r.ID(),
		Title:          r.Name(),
		ResourceID:     f.resourceID,
		ResourceType:   f.resourceType,
		Region:         f.region,
		AccountID:      ctx.AccountID,
		Profile:        ctx.Profile,
		Category:       r.Category(),
		Severity:       f.severity,
		Explanation:    f.explanation,
		Recommendation: f.recommendation,
		DetectedAt:     ctx.now(),
		Metadata:       f.metadata,
	}
}

// globalRegion is the Region of findings about account-wide resources.
const globalRegion = "global"
