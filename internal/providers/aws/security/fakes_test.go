package awssecurity

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudtrailtypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	guardduty "github.com/aws/aws-sdk-go-v2/service/guardduty"
	guarddutytype "github.com/aws/aws-sdk-go-v2/service/guardduty/types"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/paws-sec/paws/internal/providers/aws/common"
)

func apiErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

// ── S3 ────────────────────────────────────────────────────────────────────────

type fakeS3Bucket struct {
	region     string
	pab        *s3types.PublicAccessBlockConfiguration
	pabErr     error
	public     bool
	policyErr  error
	encrypted  bool
	encryptErr error
}

type fakeS3 struct {
	buckets map[string]fakeS3Bucket
	order   []string
	listErr error
	calls   int
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3svc.ListBucketsInput, _ ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &s3svc.ListBucketsOutput{}
	for _, name := range f.order {
		b := f.buckets[name]
		out.Buckets = append(out.Buckets, s3types.Bucket{Name: aws.String(name), BucketRegion: aws.String(b.region)})
	}
	return out, nil
}

func (f *fakeS3) GetPublicAccessBlock(_ context.Context, in *s3svc.GetPublicAccessBlockInput, _ ...func(*s3svc.Options)) (*s3svc.GetPublicAccessBlockOutput, error) {
	f.calls++
	b := f.buckets[aws.ToString(in.Bucket)]
	if b.pabErr != nil {
		return nil, b.pabErr
	}
	return &s3svc.GetPublicAccessBlockOutput{PublicAccessBlockConfiguration: b.pab}, nil
}

func (f *fakeS3) GetBucketPolicyStatus(_ context.Context, in *s3svc.GetBucketPolicyStatusInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketPolicyStatusOutput, error) {
	b := f.buckets[aws.ToString(in.Bucket)]
	if b.policyErr != nil {
		return nil, b.policyErr
	}
	return &s3svc.GetBucketPolicyStatusOutput{PolicyStatus: &s3types.PolicyStatus{IsPublic: aws.Bool(b.public)}}, nil
}

func (f *fakeS3) GetBucketEncryption(_ context.Context, in *s3svc.GetBucketEncryptionInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error) {
	b := f.buckets[aws.ToString(in.Bucket)]
	if b.encryptErr != nil {
		return nil, b.encryptErr
	}
	if !b.encrypted {
		return nil, apiErr("ServerSideEncryptionConfigurationNotFoundError")
	}
	return &s3svc.GetBucketEncryptionOutput{
		ServerSideEncryptionConfiguration: &s3types.ServerSideEncryptionConfiguration{
			Rules: []s3types.ServerSideEncryptionRule{{}},
		},
	}, nil
}

func fullPAB() *s3types.PublicAccessBlockConfiguration {
	return &s3types.PublicAccessBlockConfiguration{
		BlockPublicAcls:       aws.Bool(true),
		IgnorePublicAcls:      aws.Bool(true),
		BlockPublicPolicy:     aws.Bool(true),
		RestrictPublicBuckets: aws.Bool(true),
	}
}

// ── EC2 ───────────────────────────────────────────────────────────────────────

type fakeEC2 struct {
	sgOut        *ec2svc.DescribeSecurityGroupsOutput
	sgErr        error
	instancesOut *ec2svc.DescribeInstancesOutput
	instancesErr error
	addressesOut *ec2svc.DescribeAddressesOutput
}

func (f *fakeEC2) DescribeSecurityGroups(_ context.Context, _ *ec2svc.DescribeSecurityGroupsInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error) {
	if f.sgErr != nil {
		return nil, f.sgErr
	}
	if f.sgOut == nil {
		return &ec2svc.DescribeSecurityGroupsOutput{}, nil
	}
	return f.sgOut, nil
}

func (f *fakeEC2) DescribeInstances(_ context.Context, _ *ec2svc.DescribeInstancesInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeInstancesOutput, error) {
	if f.instancesErr != nil {
		return nil, f.instancesErr
	}
	if f.instancesOut == nil {
		return &ec2svc.DescribeInstancesOutput{}, nil
	}
	return f.instancesOut, nil
}

func (f *fakeEC2) DescribeAddresses(_ context.Context, _ *ec2svc.DescribeAddressesInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeAddressesOutput, error) {
	if f.addressesOut == nil {
		return &ec2svc.DescribeAddressesOutput{}, nil
	}
	return f.addressesOut, nil
}

// ── IAM ───────────────────────────────────────────────────────────────────────

type fakeIAMUser struct {
	mfa          bool
	loginProfile bool
	keys         []iamtypes.AccessKeyMetadata
}

type fakeIAM struct {
	users      map[string]fakeIAMUser
	order      []string
	listErr    error
	mfaErr     map[string]error
	policy     *iamtypes.PasswordPolicy
	policyErr  error
	summary    map[string]int32
	summaryErr error
}

func (f *fakeIAM) ListUsers(_ context.Context, _ *iamsvc.ListUsersInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListUsersOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &iamsvc.ListUsersOutput{}
	for _, name := range f.order {
		out.Users = append(out.Users, iamtypes.User{UserName: aws.String(name)})
	}
	return out, nil
}

func (f *fakeIAM) ListMFADevices(_ context.Context, in *iamsvc.ListMFADevicesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListMFADevicesOutput, error) {
	if err := f.mfaErr[aws.ToString(in.UserName)]; err != nil {
		return nil, err
	}
	out := &iamsvc.ListMFADevicesOutput{}
	if f.users[aws.ToString(in.UserName)].mfa {
		out.MFADevices = []iamtypes.MFADevice{{SerialNumber: aws.String("arn:mfa")}}
	}
	return out, nil
}

func (f *fakeIAM) GetLoginProfile(_ context.Context, in *iamsvc.GetLoginProfileInput, _ ...func(*iamsvc.Options)) (*iamsvc.GetLoginProfileOutput, error) {
	if !f.users[aws.ToString(in.UserName)].loginProfile {
		return nil, apiErr("NoSuchEntity")
	}
	return &iamsvc.GetLoginProfileOutput{}, nil
}

func (f *fakeIAM) ListAccessKeys(_ context.Context, in *iamsvc.ListAccessKeysInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListAccessKeysOutput, error) {
	return &iamsvc.ListAccessKeysOutput{AccessKeyMetadata: f.users[aws.ToString(in.UserName)].keys}, nil
}

func (f *fakeIAM) GetAccountPasswordPolicy(_ context.Context, _ *iamsvc.GetAccountPasswordPolicyInput, _ ...func(*iamsvc.Options)) (*iamsvc.GetAccountPasswordPolicyOutput, error) {
	if f.policyErr != nil {
		return nil, f.policyErr
	}
	if f.policy == nil {
		return nil, apiErr("NoSuchEntity")
	}
	return &iamsvc.GetAccountPasswordPolicyOutput{PasswordPolicy: f.policy}, nil
}

func (f *fakeIAM) GetAccountSummary(_ context.Context, _ *iamsvc.GetAccountSummaryInput, _ ...func(*iamsvc.Options)) (*iamsvc.GetAccountSummaryOutput, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return &iamsvc.GetAccountSummaryOutput{SummaryMap: f.summary}, nil
}

// ── monitoring ────────────────────────────────────────────────────────────────

type fakeCloudTrail struct {
	trails []bool
	err    error
}

func (f *fakeCloudTrail) DescribeTrails(_ context.Context, _ *cloudtrailsvc.DescribeTrailsInput, _ ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.DescribeTrailsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &cloudtrailsvc.DescribeTrailsOutput{}
	for _, multi := range f.trails {
		out.TrailList = append(out.TrailList, cloudtrailtypes.Trail{IsMultiRegionTrail: aws.Bool(multi)})
	}
	return out, nil
}

type fakeGuardDuty struct {
	detectors []string
	status    guarddutytype.DetectorStatus
	err       error
}

func (f *fakeGuardDuty) ListDetectors(_ context.Context, _ *guardduty.ListDetectorsInput, _ ...func(*guardduty.Options)) (*guardduty.ListDetectorsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &guardduty.ListDetectorsOutput{DetectorIds: f.detectors}, nil
}

func (f *fakeGuardDuty) GetDetector(_ context.Context, _ *guardduty.GetDetectorInput, _ ...func(*guardduty.Options)) (*guardduty.GetDetectorOutput, error) {
	return &guardduty.GetDetectorOutput{Status: f.status}, nil
}

type fakeConfig struct {
	recording bool
	err       error
}

func (f *fakeConfig) DescribeConfigurationRecorderStatus(_ context.Context, _ *configsvc.DescribeConfigurationRecorderStatusInput, _ ...func(*configsvc.Options)) (*configsvc.DescribeConfigurationRecorderStatusOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &configsvc.DescribeConfigurationRecorderStatusOutput{
		ConfigurationRecordersStatus: []configtypes.ConfigurationRecorderStatus{{Recording: f.recording}},
	}, nil
}

type fakeCloudWatch struct {
	alarms int
}

func (f *fakeCloudWatch) DescribeAlarms(_ context.Context, _ *cloudwatchsvc.DescribeAlarmsInput, _ ...func(*cloudwatchsvc.Options)) (*cloudwatchsvc.DescribeAlarmsOutput, error) {
	out := &cloudwatchsvc.DescribeAlarmsOutput{}
	for i := 0; i < f.alarms; i++ {
		out.MetricAlarms = append(out.MetricAlarms, cwtypes.MetricAlarm{})
	}
	return out, nil
}

// ── network ───────────────────────────────────────────────────────────────────

type fakeELBv2 struct {
	out *elbv2svc.DescribeLoadBalancersOutput
	err error
}

func (f *fakeELBv2) DescribeLoadBalancers(_ context.Context, _ *elbv2svc.DescribeLoadBalancersInput, _ ...func(*elbv2svc.Options)) (*elbv2svc.DescribeLoadBalancersOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.out == nil {
		return &elbv2svc.DescribeLoadBalancersOutput{}, nil
	}
	return f.out, nil
}

type fakeRDS struct {
	out *rdssvc.DescribeDBInstancesOutput
}

func (f *fakeRDS) DescribeDBInstances(_ context.Context, _ *rdssvc.DescribeDBInstancesInput, _ ...func(*rdssvc.Options)) (*rdssvc.DescribeDBInstancesOutput, error) {
	if f.out == nil {
		return &rdssvc.DescribeDBInstancesOutput{}, nil
	}
	return f.out, nil
}

// ── provider ──────────────────────────────────────────────────────────────────

type fakeProvider struct{}

func (fakeProvider) LoadProfile(_ context.Context, _, _ string) (*common.ProfileConfig, error) {
	return nil, errors.New("not used")
}

func (fakeProvider) GetActiveRegions(_ context.Context, _ *common.ProfileConfig) ([]string, error) {
	return nil, errors.New("not used")
}

func (fakeProvider) ConfigForRegion(_ *common.ProfileConfig, region string) aws.Config {
	return aws.Config{Region: region}
}

// emptyClients returns a secClients where every service answers with empty data.
func emptyClients() *secClients {
	return &secClients{
		S3:         &fakeS3{},
		EC2:        &fakeEC2{},
		IAM:        &fakeIAM{},
		CloudTrail: &fakeCloudTrail{},
		GuardDuty:  &fakeGuardDuty{},
		Config:     &fakeConfig{},
		CloudWatch: &fakeCloudWatch{},
		ELBv2:      &fakeELBv2{},
		RDS:        &fakeRDS{},
	}
}

// regionFactory returns the clients registered for cfg.Region, or empty
// clients for any other region.
func regionFactory(byRegion map[string]*secClients) secClientFactory {
	return func(cfg aws.Config) *secClients {
		if c, ok := byRegion[cfg.Region]; ok {
			return c
		}
		return emptyClients()
	}
}

func partialPAB() *s3types.PublicAccessBlockConfiguration {
	return &s3types.PublicAccessBlockConfiguration{
		BlockPublicAcls:   aws.Bool(true),
		BlockPublicPolicy: aws.Bool(false),
	}
}
