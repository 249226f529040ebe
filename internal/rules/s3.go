package rules

import (
	"fmt"

	"github.com/paws-sec/paws/internal/models"
)

func bucketRegion(b models.S3Bucket) string {
	if b.Region == "" {
		return globalRegion
	}
	return b.Region
}

// S3PublicAccessBlockMissingRule flags buckets with no Block Public Access
// configuration at all.
type S3PublicAccessBlockMissingRule struct{}

func (r S3PublicAccessBlockMissingRule) ID() string                { return "S3_PUBLIC_ACCESS_BLOCK_MISSING" }
func (r S3PublicAccessBlockMissingRule) Name() string              { return "S3 Public Access Block Missing" }
func (r S3PublicAccessBlockMissingRule) Category() models.Category { return models.CategoryS3 }

func (r S3PublicAccessBlockMissingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.S3 == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Data.S3.Buckets {
		if b.PublicAccessBlock != models.PublicAccessBlockMissing {
			continue
		}
		findings = append(findings, newFinding(r, ctx, finding{
			resourceID:     b.Name,
			resourceType:   models.ResourceS3Bucket,
			region:         bucketRegion(b),
			severity:       models.SeverityHigh,
			explanation:    fmt.Sprintf("Bucket %q has no public access block configuration.", b.Name),
			recommendation: "Enable all four Block Public Access settings on the bucket.",
		}))
	}
	return findings
}

// S3PublicAccessBlockPartialRule flags buckets where only some of the four
// Block Public Access settings are enabled.
type S3PublicAccessBlockPartialRule struct{}

func (r S3PublicAccessBlockPartialRule) ID() string                { return "S3_PUBLIC_ACCESS_BLOCK_PARTIAL" }
func (r S3PublicAccessBlockPartialRule) Name() string              { return "S3 Public Access Block Partially Enabled" }
func (r S3PublicAccessBlockPartialRule) Category() models.Category { return models.CategoryS3 }

func (r S3PublicAccessBlockPartialRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.S3 == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Data.S3.Buckets {
		if b.PublicAccessBlock != models.PublicAccessBlockPartial {
			continue
		}
		findings = append(findings, newFinding(r, ctx, finding{
			resourceID:     b.Name,
			resourceType:   models.ResourceS3Bucket,
			region:         bucketRegion(b),
			severity:       models.SeverityMedium,
			explanation:    fmt.Sprintf("Bucket %q does not enable all four public access block settings.", b.Name),
			recommendation: "Enable BlockPublicAcls, IgnorePublicAcls, BlockPublicPolicy and RestrictPublicBuckets.",
		}))
	}
	return findings
}

// S3PublicBucketRule flags buckets whose bucket policy makes them public.
type S3PublicBucketRule struct{}

func (r S3PublicBucketRule) ID() string                { return "S3_PUBLIC_BUCKET" }
func (r S3PublicBucketRule) Name() string              { return "S3 Bucket Publicly Accessible" }
func (r S3PublicBucketRule) Category() models.Category { return models.CategoryS3 }

func (r S3PublicBucketRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.S3 == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Data.S3.Buckets {
		if !b.Public {
			continue
		}
		findings = append(findings, newFinding(r, ctx, finding{
			resourceID:     b.Name,
			resourceType:   models.ResourceS3Bucket,
			region:         bucketRegion(b),
			severity:       models.SeverityHigh,
			explanation:    fmt.Sprintf("The bucket policy of %q grants public access.", b.Name),
			recommendation: "Remove public principals from the bucket policy or serve content through CloudFront with origin access control.",
		}))
	}
	return findings
}

// S3DefaultEncryptionMissingRule flags buckets without default server-side
// encryption. Buckets whose encryption lookup failed are skipped.
type S3DefaultEncryptionMissingRule struct{}

func (r S3DefaultEncryptionMissingRule) ID() string                { return "S3_DEFAULT_ENCRYPTION_MISSING" }
func (r S3DefaultEncryptionMissingRule) Name() string              { return "S3 Default Encryption Missing" }
func (r S3DefaultEncryptionMissingRule) Category() models.Category { return models.CategoryS3 }

func (r S3DefaultEncryptionMissingRule) Evaluate(ctx RuleContext) []models.Finding {
	if ctx.Data == nil || ctx.Data.S3 == nil {
		return nil
	}
	var findings []models.Finding
	for _, b := range ctx.Data.S3.Buckets {
		if b.DefaultEncryptionEnabled || b.CheckFailed(models.S3CheckEncryption) {
			continue
		}
		findings = append(findings, newFinding(r, ctx, finding{
			resourceID:     b.Name,
			resourceType:   models.ResourceS3Bucket,
			region:         bucketRegion(b),
			severity:       models.SeverityLow,
			explanation:    fmt.Sprintf("Bucket %q has no default server-side encryption.", b.Name),
			recommendation: "Enable default encryption with SSE-S3 or SSE-KMS.",
		}))
	}
	return findings
}
