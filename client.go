package athenamcp

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/rs/zerolog"
)

// Client is the Athena API surface the engine depends on. *athena.Client
// satisfies it; tests substitute a stub.
type Client interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
	ListDatabases(ctx context.Context, params *athena.ListDatabasesInput, optFns ...func(*athena.Options)) (*athena.ListDatabasesOutput, error)
}

// ClientOptions controls credential resolution for NewClient.
// Resolution order: explicit key pair, named profile, SDK default chain.
type ClientOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string
}

// NewClient creates an Athena client from the given options. Credential
// absence is not detected here — the default chain is lazy, so a
// misconfigured identity surfaces on the first API call, not at startup.
func NewClient(ctx context.Context, opts ClientOptions, logger zerolog.Logger) (*athena.Client, error) {
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	switch {
	case opts.AccessKeyID != "" && opts.SecretAccessKey != "":
		logger.Info().Msg("using explicit AWS credentials")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	case opts.Profile != "":
		logger.Info().Str("profile", opts.Profile).Msg("using AWS profile")
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	default:
		logger.Info().Msg("using default AWS credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return athena.NewFromConfig(awsCfg), nil
}
