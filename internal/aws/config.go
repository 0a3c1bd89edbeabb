package aws

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"vinr.eu/kubesecrets/internal/errs"
)

var (
	ErrInvalidMode = errors.New("aws/config: mode must be 'local' or 'server'")
)

const (
	emulatorRegion = "us-east-1"
	emulatorKey    = "test"
)

// LoadServiceConfig builds an SDK config. Variables named PREFIX_KEY win over
// plain KEY. Static emulator credentials are only used in local mode with an
// endpoint set; otherwise the default credential chain applies.
func LoadServiceConfig(ctx context.Context, mode, prefix string) (aws.Config, error) {
	if mode != "local" && mode != "server" && mode != "" {
		return aws.Config{}, errs.WrapMsg(ErrInvalidMode, "got "+mode)
	}

	var opts []func(*config.LoadOptions) error
	region := serviceEnv(prefix, "AWS_REGION")

	if endpoint := serviceEnv(prefix, "AWS_ENDPOINT_URL"); endpoint != "" && mode != "server" {
		if region == "" {
			region = emulatorRegion
		}
		opts = append(opts,
			config.WithBaseEndpoint(endpoint),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				orDefault(serviceEnv(prefix, "AWS_ACCESS_KEY_ID"), emulatorKey),
				orDefault(serviceEnv(prefix, "AWS_SECRET_ACCESS_KEY"), emulatorKey),
				"",
			)),
		)
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	return config.LoadDefaultConfig(ctx, opts...)
}

// serviceEnv returns the first non-empty value of PREFIX_KEY and KEY.
func serviceEnv(prefix, key string) string {
	if v := os.Getenv(prefix + "_" + key); v != "" {
		return v
	}
	return os.Getenv(key)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
