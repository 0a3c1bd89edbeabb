// Package kubectl fetches secrets by running the kubectl binary and parsing
// its JSON output.
package kubectl

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"vinr.eu/kubesecrets/internal/errs"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/secret"
)

const DefaultPath = "kubectl"

// waitDelay caps how long a cancelled kubectl may hold its output pipes open.
const waitDelay = 2 * time.Second

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

type Client struct {
	path       string
	namespace  string
	context    string
	kubeconfig string
	run        Runner
}

type Option func(*Client)

func WithPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.path = path
		}
	}
}

func WithNamespace(namespace string) Option {
	return func(c *Client) {
		c.namespace = namespace
	}
}

func WithContext(kubeContext string) Option {
	return func(c *Client) {
		c.context = kubeContext
	}
}

func WithKubeconfig(path string) Option {
	return func(c *Client) {
		c.kubeconfig = path
	}
}

func WithRunner(run Runner) Option {
	return func(c *Client) {
		c.run = run
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		path: DefaultPath,
		run:  execRunner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) String() string {
	return "kubectl.Client{path=" + c.path + "}"
}

// Args returns the kubectl arguments used to fetch the named secret.
func (c *Client) Args(name string) []string {
	args := []string{"get", "secret", name}
	if c.namespace != "" {
		args = append(args, "-n", c.namespace)
	}
	if c.context != "" {
		args = append(args, "--context", c.context)
	}
	if c.kubeconfig != "" {
		args = append(args, "--kubeconfig", c.kubeconfig)
	}
	return append(args, "-o", "json")
}

func (c *Client) GetSecret(ctx context.Context, name string) (*Secret, error) {
	logger.Debug(ctx, "running kubectl", "path", c.path, "secret", name)
	output, err := c.run(ctx, c.path, c.Args(name)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errs.WrapMsgErr(secret.ErrLookupFailed, name, ctxErr)
		}
		return nil, errs.WrapMsg(secret.ErrLookupFailed, failureDetail(err))
	}
	return decodeSecret(ctx, output)
}

func (c *Client) Fetch(ctx context.Context, name string) (secret.Decoded, error) {
	s, err := c.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	return secret.Decode(s.Data)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	return cmd.Output()
}

// failureDetail prefers what kubectl printed on stderr over the bare exit
// status.
func failureDetail(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderr := strings.TrimSpace(string(exitErr.Stderr)); stderr != "" {
			return stderr
		}
	}
	return err.Error()
}
