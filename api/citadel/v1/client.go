package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// HttpRequestDoer performs HTTP requests. *http.Client satisfies it.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn may modify a request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

type Client struct {
	Server         string
	Client         HttpRequestDoer
	RequestEditors []RequestEditorFn
}

type ClientOption func(*Client) error

func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.Client = doer
		return nil
	}
}

func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

func NewClient(server string, opts ...ClientOption) (*Client, error) {
	c := Client{Server: server}
	for _, o := range opts {
		if err := o(&c); err != nil {
			return nil, err
		}
	}
	if !strings.HasSuffix(c.Server, "/") {
		c.Server += "/"
	}
	if c.Client == nil {
		c.Client = &http.Client{}
	}
	return &c, nil
}

func NewGetAwsSecretsIdRequest(server string, id string) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, err
	}
	return newGetRequest(server, fmt.Sprintf("/aws/secrets/%s", pathParam0))
}

func NewGetPingRequest(server string) (*http.Request, error) {
	return newGetRequest(server, "/ping")
}

func newGetRequest(server, operationPath string) (*http.Request, error) {
	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}
	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}
	queryURL, err := serverURL.Parse(operationPath)
	if err != nil {
		return nil, err
	}
	return http.NewRequest(http.MethodGet, queryURL.String(), nil)
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	for _, edit := range c.RequestEditors {
		if err := edit(ctx, req); err != nil {
			return nil, err
		}
	}
	return c.Client.Do(req)
}

type ClientWithResponses struct {
	*Client
}

func NewClientWithResponses(server string, opts ...ClientOption) (*ClientWithResponses, error) {
	client, err := NewClient(server, opts...)
	if err != nil {
		return nil, err
	}
	return &ClientWithResponses{client}, nil
}

type GetAwsSecretsIdResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *GetAwsSecretResponse
	JSON404      *ErrorResponse
}

func (r GetAwsSecretsIdResponse) StatusCode() int {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.StatusCode
	}
	return 0
}

type GetPingResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *PingResponse
}

func (r GetPingResponse) StatusCode() int {
	if r.HTTPResponse != nil {
		return r.HTTPResponse.StatusCode
	}
	return 0
}

func (c *ClientWithResponses) GetAwsSecretsIdWithResponse(ctx context.Context, id string) (*GetAwsSecretsIdResponse, error) {
	req, err := NewGetAwsSecretsIdRequest(c.Server, id)
	if err != nil {
		return nil, err
	}
	rsp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := readBody(rsp)
	if err != nil {
		return nil, err
	}
	response := &GetAwsSecretsIdResponse{Body: body, HTTPResponse: rsp}
	switch {
	case isJSON(rsp) && rsp.StatusCode == http.StatusOK:
		var dest GetAwsSecretResponse
		if err := json.Unmarshal(body, &dest); err != nil {
			return nil, err
		}
		response.JSON200 = &dest
	case isJSON(rsp) && rsp.StatusCode == http.StatusNotFound:
		var dest ErrorResponse
		if err := json.Unmarshal(body, &dest); err != nil {
			return nil, err
		}
		response.JSON404 = &dest
	}
	return response, nil
}

func (c *ClientWithResponses) GetPingWithResponse(ctx context.Context) (*GetPingResponse, error) {
	req, err := NewGetPingRequest(c.Server)
	if err != nil {
		return nil, err
	}
	rsp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := readBody(rsp)
	if err != nil {
		return nil, err
	}
	response := &GetPingResponse{Body: body, HTTPResponse: rsp}
	if isJSON(rsp) && rsp.StatusCode == http.StatusOK {
		var dest PingResponse
		if err := json.Unmarshal(body, &dest); err != nil {
			return nil, err
		}
		response.JSON200 = &dest
	}
	return response, nil
}

func readBody(rsp *http.Response) ([]byte, error) {
	defer func() { _ = rsp.Body.Close() }()
	return io.ReadAll(rsp.Body)
}

func isJSON(rsp *http.Response) bool {
	return strings.Contains(rsp.Header.Get("Content-Type"), "json")
}
