package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/paws-sec/paws/internal/models"
)

// s3ClientFor returns a client for the bucket's home region. Bucket-level
// calls against another region's endpoint fail with PermanentRedirect.
type s3ClientFor func(region string) s3APIClient

// collectS3 lists all buckets and inspects each one's public access block,
// policy status, and default encryption. A ListBuckets failure is recorded in
// S3Data.Error.
func collectS3(ctx context.Context, client s3APIClient, clientFor s3ClientFor, log *zap.Logger) *models.S3Data {
	data := &models.S3Data{Buckets: []models.S3Bucket{}}

	paginator := s3svc.NewListBucketsPaginator(client, &s3svc.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			log.Warn("s3 bucket listing failed", zap.Error(err))
			data.Error = fmt.Sprintf("list S3 buckets: %v", err)
			return data
		}
		for _, b := range page.Buckets {
			data.Buckets = append(data.Buckets, inspectBucket(ctx, b, client, clientFor, log))
		}
	}
	return data
}

func inspectBucket(ctx context.Context, b s3types.Bucket, fallback s3APIClient, clientFor s3ClientFor, log *zap.Logger) models.S3Bucket {
	name := aws.ToString(b.Name)
	region := aws.ToString(b.BucketRegion)

	client := fallback
	if region != "" && clientFor != nil {
		client = clientFor(region)
	}

	bucket := models.S3Bucket{Name: name, Region: region}
	fail := func(check string, err error) {
		if bucket.Errors == nil {
			bucket.Errors = make(map[string]string)
		}
		bucket.Errors[check] = err.Error()
		log.Debug("s3 bucket lookup failed", zap.String("bucket", name), zap.String("check", check), zap.Error(err))
	}

	state, err := publicAccessBlockState(ctx, client, name)
	bucket.PublicAccessBlock = state
	if err != nil {
		fail(models.S3CheckPublicAccessBlock, err)
	}

	public, err := isBucketPublic(ctx, client, name)
	bucket.Public = public
	if err != nil {
		fail(models.S3CheckPolicyStatus, err)
	}

	encrypted, err := isBucketEncryptionEnabled(ctx, client, name)
	bucket.DefaultEncryptionEnabled = encrypted
	if err != nil {
		fail(models.S3CheckEncryption, err)
	}

	return bucket
}

// publicAccessBlockState classifies the bucket's Block Public Access
// configuration. Only NoSuchPublicAccessBlockConfiguration means "missing";
// any other error yields PublicAccessBlockUnknown.
func publicAccessBlockState(ctx context.Context, client s3APIClient, name string) (models.PublicAccessBlockState, error) {
	out, err := client.GetPublicAccessBlock(ctx, &s3svc.GetPublicAccessBlockInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if apiErrorCode(err) == "NoSuchPublicAccessBlockConfiguration" {
			return models.PublicAccessBlockMissing, nil
		}
		return models.PublicAccessBlockUnknown, fmt.Errorf("get public access block for %s: %w", name, err)
	}

	cfg := out.PublicAccessBlockConfiguration
	if cfg == nil {
		return models.PublicAccessBlockMissing, nil
	}
	if aws.ToBool(cfg.BlockPublicAcls) &&
		aws.ToBool(cfg.IgnorePublicAcls) &&
		aws.ToBool(cfg.BlockPublicPolicy) &&
		aws.ToBool(cfg.RestrictPublicBuckets) {
		return models.PublicAccessBlockFull, nil
	}
	return models.PublicAccessBlockPartial, nil
}

// isBucketPublic returns true only when GetBucketPolicyStatus reports the
// bucket's policy as public. A bucket without a policy (NoSuchBucketPolicy)
// is not public.
func isBucketPublic(ctx context.Context, client s3APIClient, name string) (bool, error) {
	out, err := client.GetBucketPolicyStatus(ctx, &s3svc.GetBucketPolicyStatusInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if apiErrorCode(err) == "NoSuchBucketPolicy" {
			return false, nil
		}
		return false, fmt.Errorf("get bucket policy status for %s: %w", name, err)
	}
	if out.PolicyStatus == nil {
		return false, nil
	}
	return aws.ToBool(out.PolicyStatus.IsPublic), nil
}

// isBucketEncryptionEnabled returns true when the bucket has a default
// server-side encryption rule.
func isBucketEncryptionEnabled(ctx context.Context, client s3APIClient, name string) (bool, error) {
	out, err := client.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if apiErrorCode(err) == "ServerSideEncryptionConfigurationNotFoundError" {
			return false, nil
		}
		return false, fmt.Errorf("get bucket encryption for %s: %w", name, err)
	}
	cfg := out.ServerSideEncryptionConfiguration
	return cfg != nil && len(cfg.Rules) > 0, nil
}
