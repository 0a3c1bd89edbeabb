// Package citadel reads secrets through the Citadel broker HTTP API.
package citadel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	gen "vinr.eu/kubesecrets/api/citadel/v1"
	"vinr.eu/kubesecrets/internal/errs"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/secret"
)

var (
	ErrInitFailed   = errors.New("citadel: client init failed")
	ErrNetwork      = errors.New("citadel: network error")
	ErrPayloadNil   = errors.New("citadel: payload nil")
	ErrUnauthorized = errors.New("citadel: unauthorized")
	ErrNotFound     = errors.New("citadel: not found")
	ErrApiFailure   = errors.New("citadel: unexpected api response")
)

// PlainValueKey names the single field of a plain text secret.
const PlainValueKey = "value"

const defaultTimeout = 10 * time.Second

type Client struct {
	api     *gen.ClientWithResponses
	apiKey  string
	timeout time.Duration
}

type Option func(*Client)

func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout bounds each HTTP round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	api, err := gen.NewClientWithResponses(
		baseURL,
		gen.WithHTTPClient(&http.Client{Timeout: c.timeout}),
		gen.WithRequestEditorFn(func(_ context.Context, req *http.Request) error {
			if c.apiKey != "" {
				req.Header.Set("x-api-key", c.apiKey)
			}
			return nil
		}),
	)
	if err != nil {
		return nil, errs.Wrap(ErrInitFailed, err)
	}
	c.api = api
	return c, nil
}

func (c *Client) String() string {
	return "citadel.Client{redacted}"
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.api.GetPingWithResponse(ctx)
	if err != nil {
		return classify(err)
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		return err
	}
	if resp.JSON200 == nil {
		return ErrPayloadNil
	}
	return nil
}

// Fetch reads the broker secret called name. Entries without a key are
// skipped and a plain text secret becomes a single PlainValueKey field.
func (c *Client) Fetch(ctx context.Context, name string) (secret.Decoded, error) {
	logger.Debug(ctx, "requesting secret from citadel", "name", name)
	resp, err := c.api.GetAwsSecretsIdWithResponse(ctx, name)
	if err != nil {
		return nil, errs.WrapMsgErr(secret.ErrLookupFailed, name, classify(err))
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		if resp.JSON404 != nil {
			err = errs.WrapMsg(err, resp.JSON404.Message)
		}
		return nil, errs.WrapMsgErr(secret.ErrLookupFailed, name, err)
	}
	body := resp.JSON200
	if body == nil {
		return nil, errs.WrapMsgErr(secret.ErrLookupFailed, name, ErrPayloadNil)
	}

	out := secret.Decoded{}
	switch {
	case body.Entries != nil:
		for _, e := range *body.Entries {
			if e.Key == nil {
				continue
			}
			value := ""
			if e.Value != nil {
				value = *e.Value
			}
			out[*e.Key] = value
		}
	case body.PlainText != nil:
		out[PlainValueKey] = *body.PlainText
	}
	return out, nil
}

// classify separates transport failures from responses the client could not
// read.
func classify(err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return errs.Wrap(ErrNetwork, err)
	}
	return errs.Wrap(ErrApiFailure, err)
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return errs.WrapMsg(ErrApiFailure, http.StatusText(code))
	}
}
