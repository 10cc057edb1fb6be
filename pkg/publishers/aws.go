package publishers

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const (
	// Shared by SQS SendMessageBatch and SNS PublishBatch.
	awsMaxBatchEntries = 10
	awsMaxBatchBytes   = 256 * 1024

	stringAttributeType = "String"
)

// loadAWSConfig resolves the SDK config, preferring static credentials when given.
func loadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(c.Region)}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// batchFailure is a per-entry failure reported by an AWS batch API.
type batchFailure struct {
	ID      string
	Code    string
	Message string
}

func joinBatchFailures(sink string, failures []batchFailure) error {
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, fmt.Errorf("%s entry %s: %s: %s", sink, f.ID, f.Code, f.Message))
	}
	return errors.Join(errs...)
}
