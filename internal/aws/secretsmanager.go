package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"vinr.eu/kubesecrets/internal/errs"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/secret"
)

// PlainValueKey names the single field of a secret whose payload is not a
// JSON object.
const PlainValueKey = "value"

type secretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type SecretsManagerClient struct {
	client secretValueGetter
}

func NewSecretsManagerClient(cfg aws.Config) *SecretsManagerClient {
	return &SecretsManagerClient{
		client: secretsmanager.NewFromConfig(cfg),
	}
}

// GetSecret returns the raw payload, preferring SecretString over
// SecretBinary.
func (s *SecretsManagerClient) GetSecret(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return nil, errs.WrapMsgErr(secret.ErrLookupFailed, name, err)
	}
	if out.SecretString != nil {
		return []byte(*out.SecretString), nil
	}
	return out.SecretBinary, nil
}

func (s *SecretsManagerClient) Fetch(ctx context.Context, name string) (secret.Decoded, error) {
	payload, err := s.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	return decodePayload(ctx, name, payload)
}

func decodePayload(ctx context.Context, name string, payload []byte) (secret.Decoded, error) {
	var entries map[string]any
	if err := json.Unmarshal(payload, &entries); err != nil || entries == nil {
		logger.Debug(ctx, "secret is not a json object", "name", name)
		text, err := secret.Text(PlainValueKey, payload)
		if err != nil {
			return nil, err
		}
		return secret.Decoded{PlainValueKey: text}, nil
	}
	out := make(secret.Decoded, len(entries))
	for key, value := range entries {
		switch v := value.(type) {
		case string:
			out[key] = v
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprintf("%v", v)
		}
	}
	return out, nil
}
