package secrets

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// AWSConfig configures the AWS Secrets Manager provider.
type AWSConfig struct {
	Region          string
	Profile         string
	Endpoint        string // e.g. a LocalStack URL
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

type awsProvider struct {
	client *secretsmanager.Client
}

func newAWSProvider(ctx context.Context, cfg AWSConfig) (provider, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("secrets: aws provider requires region")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
		opts = append(opts, config.WithCredentialsProvider(aws.NewCredentialsCache(static)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secrets: failed to load aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &awsProvider{client: client}, nil
}

func (a *awsProvider) Name() ProviderType { return ProviderAWS }

func (a *awsProvider) Close() error { return nil }

func (a *awsProvider) Fetch(ctx context.Context, ref Reference) (Secret, error) {
	input := &secretsmanager.GetSecretValueInput{SecretId: aws.String(ref.Path)}
	if ref.Version != "" {
		input.VersionId = aws.String(ref.Version)
	}

	out, err := a.client.GetSecretValue(ctx, input)
	if err != nil {
		return Secret{}, fmt.Errorf("secrets: aws fetch failed for %s: %w", ref.Path, err)
	}

	var data map[string]string
	switch {
	case out.SecretString != nil:
		data = decodePayload([]byte(aws.ToString(out.SecretString)))
	case out.SecretBinary != nil:
		data = map[string]string{"binary": base64.StdEncoding.EncodeToString(out.SecretBinary)}
	default:
		data = map[string]string{}
	}

	meta := Metadata{Version: aws.ToString(out.VersionId)}
	if out.CreatedDate != nil {
		meta.CreatedAt = *out.CreatedDate
	}
	return Secret{Data: data, Metadata: meta}, nil
}
