// Package awsconf loads the shared AWS SDK configuration for service clients
package awsconf

import (
	"context"

	perr "callrec/internal/platform/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// Load resolves credentials and region from the default chain
// region overrides the environment when non empty
func Load(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, perr.Wrap(err, perr.ErrorCodeUpstream, "load aws config")
	}
	return cfg, nil
}
