package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultAWSRegion is used when no region is configured.
const DefaultAWSRegion = "us-east-1"

// callerIdentityAPI is the slice of the STS client the prober needs.
type callerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// STSIdentityProber verifies AWS credentials with sts:GetCallerIdentity.
// The credential passed to Ping is the access key id; the rest of the key
// material comes from the prober itself. Shared config files are ignored so
// the result depends only on explicit configuration.
type STSIdentityProber struct {
	SecretAccessKey string
	SessionToken    string
	Region          string

	// Endpoint overrides the STS endpoint (tests, private endpoints)
	Endpoint string

	newClient func(cfg aws.Config) callerIdentityAPI
}

// NewSTSIdentityProber creates a prober for the given key material.
func NewSTSIdentityProber(secretAccessKey, sessionToken, region string) *STSIdentityProber {
	return &STSIdentityProber{
		SecretAccessKey: secretAccessKey,
		SessionToken:    sessionToken,
		Region:          region,
	}
}

// Ping implements IdentityProber.
func (p *STSIdentityProber) Ping(ctx context.Context, accessKeyID string) error {
	if p.SecretAccessKey == "" {
		return errors.New("aws secret access key is not set")
	}

	region := p.Region
	if region == "" {
		region = DefaultAWSRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, p.SecretAccessKey, p.SessionToken)),
		awsconfig.WithSharedConfigFiles([]string{}),
		awsconfig.WithSharedCredentialsFiles([]string{}),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}

	client := p.client(cfg)
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("sts get-caller-identity: %w", err)
	}
	if aws.ToString(out.Account) == "" {
		return errors.New("sts get-caller-identity: empty account")
	}
	return nil
}

func (p *STSIdentityProber) client(cfg aws.Config) callerIdentityAPI {
	if p.newClient != nil {
		return p.newClient(cfg)
	}
	return sts.NewFromConfig(cfg, func(o *sts.Options) {
		if p.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.Endpoint)
		}
	})
}
