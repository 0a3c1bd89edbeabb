package kubectl

import (
	"context"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"vinr.eu/kubesecrets/internal/errs"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/secret"
)

const kindSecret = "Secret"

func decodeSecret(ctx context.Context, data []byte) (*Secret, error) {
	logger.Debug(ctx, "Starting decode", "size_bytes", len(data))
	var header metav1.TypeMeta
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, errs.WrapMsgErr(secret.ErrMalformedOutput, "could not parse header", err)
	}

	if header.Kind != kindSecret {
		return nil, errs.WrapMsg(secret.ErrMalformedOutput, fmt.Sprintf("unexpected kind %q", header.Kind))
	}

	var s Secret
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errs.WrapMsgErr(secret.ErrMalformedOutput, "invalid Secret", err)
	}

	logger.Debug(ctx, "Successfully decoded resource", "name", s.Metadata.Name, "fields", len(s.Data))
	return &s, nil
}
