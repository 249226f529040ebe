package rules

import (
	"fmt"
	"math"

	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/policy"
)

// DefaultAccessKeyMaxAgeDays is the age past which an active key is flagged.
const DefaultAccessKeyMaxAgeDays = 90

// IAMUserWithoutMFARule flags every IAM user without an MFA device. Users
// without a console password are flagged too; has_login_profile in the
// metadata lets reviewers triage API-only identities. Users whose MFA
// lookup failed are skipped.
type IAMUserWithoutMFARule struct{}

func (r IAMUserWithoutMFARule) ID() string                { return "IAM_USER_NO_MFA" }
func (r IAMUserWithoutMFARule) Name() string              { return "IAM User Without MFA" }
func (r IAMUserWithoutMFARule) Category() models.Category { return models.CategoryIAM }

func (r IAMUserWithoutMFARule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.IAM == nil {
		return nil
	}
	var findings []models.Finding
	for _, u := range ctx.Data.IAM.Users {
		if u.MFAEnabled || u.MFAUnknown {
			continue
		}
		findings = append(findings, newFinding(r, ctx, finding{
			resourceID:     u.UserName,
			resourceType:   models.ResourceIAMUser,
			region:         globalRegion,
			severity:       models.SeverityMedium,
			explanation:    fmt.Sprintf("IAM user %q has no MFA device registered.", u.UserName),
			recommendation: "Enable MFA for the user, or remove the user if it is no longer needed.",
			metadata:       map[string]any{"has_login_profile": u.HasLoginProfile},
		}))
	}
	return findings
}

// IAMAccessKeyOldRule flags active access keys older than max_age_days
// (policy param, default 90).
type IAMAccessKeyOldRule struct{}

func (r IAMAccessKeyOldRule) ID() string                { return "IAM_ACCESS_KEY_OLD" }
func (r IAMAccessKeyOldRule) Name() string              { return "IAM Access Key Not Rotated" }
func (r IAMAccessKeyOldRule) Category() models.Category { return models.CategoryIAM }

func (r IAMAccessKeyOldRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.IAM == nil {
		return nil
	}
	maxAge := policy.GetThreshold(r.ID(), "max_age_days", DefaultAccessKeyMaxAgeDays, ctx.Policy)
	now := ctx.now()

	var findings []models.Finding
	for _, u := range ctx.Data.IAM.Users {
		for _, k := range u.AccessKeys {
			if k.Status != "Active" || k.CreatedAt.IsZero() {
				continue
			}
			days := int(math.Floor(now.Sub(k.CreatedAt).Hours() / 24))
			if float64(days) <= maxAge {
				continue
			}
			findings = append(findings, newFinding(r, ctx, finding{
				resourceID:     k.AccessKeyID,
				resourceType:   models.ResourceIAMAccessKey,
				region:         globalRegion,
				severity:       models.SeverityMedium,
				explanation:    fmt.Sprintf("Access key %s of IAM user %q is %d days old.", k.AccessKeyID, u.UserName, days),
				recommendation: "Rotate the access key and deactivate the old one.",
				metadata: map[string]any{
					"user_name":    u.UserName,
					"age_days":     days,
					"max_age_days": int(maxAge),
				},
			}))
		}
	}
	return findings
}

// IAMPasswordPolicyMissingRule flags accounts without a password policy.
// It stays silent when the policy could not be read.
type IAMPasswordPolicyMissingRule struct{}

func (r IAMPasswordPolicyMissingRule) ID() string                { return "IAM_PASSWORD_POLICY_MISSING" }
func (r IAMPasswordPolicyMissingRule) Name() string              { return "Account Password Policy Missing" }
func (r IAMPasswordPolicyMissingRule) Category() models.Category { return models.CategoryIAM }

func (r IAMPasswordPolicyMissingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.IAM == nil {
		return nil
	}
	pp := ctx.Data.IAM.PasswordPolicy
	if !pp.Known || pp.Configured {
		return nil
	}
	return []models.Finding{newFinding(r, ctx, finding{
		resourceID:     ctx.AccountID,
		resourceType:   models.ResourceIAMAccount,
		region:         globalRegion,
		severity:       models.SeverityLow,
		explanation:    "The account has no IAM password policy; console passwords fall back to AWS defaults.",
		recommendation: "Configure an account password policy with a minimum length of 14 and complexity requirements.",
	})}
}

// IAMPasswordPolicyConfiguredRule records, as INFO, that a password policy
// exists along with its main settings.
type IAMPasswordPolicyConfiguredRule struct{}

func (r IAMPasswordPolicyConfiguredRule) ID() string                { return "IAM_PASSWORD_POLICY_CONFIGURED" }
func (r IAMPasswordPolicyConfiguredRule) Name() string              { return "Account Password Policy Configured" }
func (r IAMPasswordPolicyConfiguredRule) Category() models.Category { return models.CategoryIAM }

func (r IAMPasswordPolicyConfiguredRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.IAM == nil {
		return nil
	}
	pp := ctx.Data.IAM.PasswordPolicy
	if !pp.Known || !pp.Configured {
		return nil
	}
	return []models.Finding{newFinding(r, ctx, finding{
		resourceID:     ctx.AccountID,
		resourceType:   models.ResourceIAMAccount,
		region:         globalRegion,
		severity:       models.SeverityInfo,
		explanation:    fmt.Sprintf("An account password policy is configured (minimum length %d).", pp.MinimumLength),
		recommendation: "Review the policy periodically against current guidance.",
		metadata: map[string]any{
			"minimum_length":        pp.MinimumLength,
			"require_symbols":       pp.RequireSymbols,
			"require_numbers":       pp.RequireNumbers,
			"max_password_age_days": pp.MaxPasswordAgeDay,
		},
	})}
}

// RootAccessKeyRule flags root accounts that still own access keys.
type RootAccessKeyRule struct{}

func (r RootAccessKeyRule) ID() string                { return "ROOT_ACCESS_KEY_EXISTS" }
func (r RootAccessKeyRule) Name() string              { return "Root Account Has Access Keys" }
func (r RootAccessKeyRule) Category() models.Category { return models.CategoryIAM }

func (r RootAccessKeyRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.IAM == nil {
		return nil
	}
	root := ctx.Data.IAM.Root
	if !root.DataAvailable || !root.HasAccessKeys {
		return nil
	}
	return []models.Finding{newFinding(r, ctx, finding{
		resourceID:     "root",
		resourceType:   models.ResourceRootAccount,
		region:         globalRegion,
		severity:       models.SeverityCritical,
		explanation:    "The root account has active access keys. Root keys grant unrestricted access to every resource.",
		recommendation: "Delete the root access keys and use IAM roles or users with least privilege instead.",
	})}
}

// RootMFADisabledRule flags root accounts without MFA.
type RootMFADisabledRule struct{}

func (r RootMFADisabledRule) ID() string                { return "ROOT_ACCOUNT_MFA_DISABLED" }
func (r RootMFADisabledRule) Name() string              { return "Root Account MFA Disabled" }
func (r RootMFADisabledRule) Category() models.Category { return models.CategoryIAM }

func (r RootMFADisabledRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.IAM == nil {
		return nil
	}
	root := ctx.Data.IAM.Root
	if !root.DataAvailable || root.MFAEnabled {
		return nil
	}
	return []models.Finding{newFinding(r, ctx, finding{
		resourceID:     "root",
		resourceType:   models.ResourceRootAccount,
		region:         globalRegion,
		severity:       models.SeverityCritical,
		explanation:    "The root account does not have MFA enabled.",
		recommendation: "Enable a hardware or virtual MFA device on the root account.",
	})}
}
