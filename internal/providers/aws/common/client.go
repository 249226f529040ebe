package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS profile: its SDK configuration, the account
// it authenticates to, and the clients needed before any per-service
// collection starts.
type ProfileConfig struct {
	// ProfileName is the shared-config profile name, or "default".
	ProfileName string

	// AccountID is the AWS account ID resolved through STS.
	AccountID string

	// Region is the home region used for global calls.
	Region string

	// Config is the loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients are scoped to Region.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configurations and resolves active regions.
// All AWS credential and region handling goes through it; the aws CLI is
// never invoked.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named profile. An empty
	// profile uses the default credential chain; an empty region keeps the
	// profile's own region.
	LoadProfile(ctx context.Context, profile, region string) (*ProfileConfig, error)

	// GetActiveRegions returns the regions enabled for the account.
	GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error)

	// ConfigForRegion clones cfg with the target region set.
	ConfigForRegion(cfg *ProfileConfig, region string) aws.Config
}
