// Package v1 is the wire contract of the Citadel secret broker: request and
// response types, an HTTP client and a gin server binding.
package v1

import "time"

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type SecretEntry struct {
	Key   *string `json:"key,omitempty"`
	Value *string `json:"value,omitempty"`
}

// GetAwsSecretResponse carries either key/value entries or a single plain
// text payload.
type GetAwsSecretResponse struct {
	Entries   *[]SecretEntry `json:"entries,omitempty"`
	PlainText *string        `json:"plainText,omitempty"`
}

type PingResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   *string   `json:"version,omitempty"`
}
