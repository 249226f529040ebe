// Package scoring turns audit findings into the 0-100 security score.
//
// Each rule has a weight (points per finding) and a cap (maximum points the
// rule can remove from its category). A category score is 100 minus the sum
// of its rule deductions, clamped to 0..100. The overall score is the integer
// mean of the scores of categories that were collected successfully.
// Network is an inventory of INFO findings and is never scored.
package scoring

import (
	"sort"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/policy"
)

// MaxScore is the score of a category with no deductions.
const MaxScore = 100

// Weight is the deduction entry of a single rule.
type Weight struct {
	PerFinding int
	Cap        int
}

// unscored lists categories that receive no score and stay out of the
// overall mean. Their findings are INFO only, so a score would always be 100.
var unscored = map[models.Category]bool{
	models.CategoryNetwork: true,
}

// DefaultWeights is the built-in deduction table. Rules not listed here
// never deduct.
var DefaultWeights = map[string]Weight{
	"IAM_USER_NO_MFA":                {PerFinding: 2, Cap: 10},
	"IAM_ACCESS_KEY_OLD":             {PerFinding: 1, Cap: 10},
	"IAM_PASSWORD_POLICY_MISSING":    {PerFinding: 5, Cap: 5},
	"ROOT_ACCESS_KEY_EXISTS":         {PerFinding: 10, Cap: 10},
	"ROOT_ACCOUNT_MFA_DISABLED":      {PerFinding: 10, Cap: 10},
	"S3_PUBLIC_ACCESS_BLOCK_MISSING": {PerFinding: 5, Cap: 25},
	"S3_PUBLIC_ACCESS_BLOCK_PARTIAL": {PerFinding: 3, Cap: 15},
	"S3_PUBLIC_BUCKET":               {PerFinding: 10, Cap: 30},
	"S3_DEFAULT_ENCRYPTION_MISSING":  {PerFinding: 2, Cap: 10},
	"EC2_SG_SENSITIVE_PORT_OPEN":     {PerFinding: 5, Cap: 40},
	"CLOUDTRAIL_NOT_MULTI_REGION":    {PerFinding: 15, Cap: 15},
	"GUARDDUTY_DISABLED":             {PerFinding: 5, Cap: 20},
	"CONFIG_RECORDER_DISABLED":       {PerFinding: 3, Cap: 15},
	"CLOUDWATCH_NO_ALARMS":           {PerFinding: 2, Cap: 10},
}

// WeightFor returns the deduction entry for ruleID with policy overrides of
// the "weight" and "cap" params applied. cfg may be nil.
func WeightFor(ruleID string, cfg *policy.PolicyConfig) Weight {
	w := DefaultWeights[ruleID]
	return Weight{
		PerFinding: policy.GetIntThreshold(ruleID, "weight", w.PerFinding, cfg),
		Cap:        policy.GetIntThreshold(ruleID, "cap", w.Cap, cfg),
	}
}

// Compute scores findings against the per-category check results. Only
// categories whose CheckResult is Scored() receive a score and count towards
// the overall mean; findings of other categories are ignored. Network is
// never scored.
func Compute(findings []models.Finding, checks map[models.Category]models.CheckResult, cfg *policy.PolicyConfig) models.SecurityScore {
	type ruleKey struct {
		category models.Category
		ruleID   string
	}
	counts := make(map[ruleKey]int)
	for _, f := range findings {
		if f.Severity == models.SeverityInfo {
			continue
		}
		counts[ruleKey{f.Category, f.RuleID}]++
	}

	score := models.SecurityScore{Categories: make(map[models.Category]int)}
	deducted := make(map[models.Category]int)

	for k, n := range counts {
		if !scored(k.category, checks) {
			continue
		}
		w := WeightFor(k.ruleID, cfg)
		points := min(n*w.PerFinding, w.Cap)
		if points <= 0 {
			continue
		}
		deducted[k.category] += points
		score.Deductions = append(score.Deductions, models.ScoreDeduction{
			RuleID:   k.ruleID,
			Category: k.category,
			Findings: n,
			Weight:   w.PerFinding,
			Cap:      w.Cap,
			Points:   points,
		})
	}
	sortDeductions(score.Deductions)

	total, n := 0, 0
	for _, cat := range models.AllCategories {
		if !scored(cat, checks) {
			continue
		}
		s := clamp(MaxScore - deducted[cat])
		score.Categories[cat] = s
		total += s
		n++
	}
	if n > 0 {
		score.Overall = total / n
	}
	return score
}

func scored(cat models.Category, checks map[models.Category]models.CheckResult) bool {
	if unscored[cat] {
		return false
	}
	check, ok := checks[cat]
	return ok && check.Scored()
}

func clamp(v int) int {
	return max(0, min(MaxScore, v))
}

// sortDeductions orders deductions by category execution order, then by
// points descending, then rule ID.
func sortDeductions(d []models.ScoreDeduction) {
	order := make(map[models.Category]int, len(models.AllCategories))
	for i, c := range models.AllCategories {
		order[c] = i
	}
	sort.Slice(d, func(i, j int) bool {
		if d[i].Category != d[j].Category {
			return order[d[i].Category] < order[d[j].Category]
		}
		if d[i].Points != d[j].Points {
			return d[i].Points > d[j].Points
		}
		return d[i].RuleID < d[j].RuleID
	})
}
