// Package kube fetches secrets straight from the Kubernetes API server.
package kube

import (
	"context"
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"vinr.eu/kubesecrets/internal/errs"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/secret"
)

var (
	ErrConfigFailed = errors.New("kube: client config failed")
	ErrInitFailed   = errors.New("kube: client init failed")
)

type Config struct {
	Kubeconfig string
	Context    string
	Namespace  string
}

type Client struct {
	clientset kubernetes.Interface
	namespace string
}

// NewClient loads the kubeconfig the same way kubectl does.
func NewClient(cfg Config) (*Client, error) {
	restCfg, namespace, err := loadConfig(cfg)
	if err != nil {
		return nil, err
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, errs.Wrap(ErrInitFailed, err)
	}
	return NewClientFromInterface(clientset, namespace), nil
}

func NewClientFromInterface(clientset kubernetes.Interface, namespace string) *Client {
	if namespace == "" {
		namespace = metav1.NamespaceDefault
	}
	return &Client{
		clientset: clientset,
		namespace: namespace,
	}
}

func loadConfig(cfg Config) (*rest.Config, string, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if cfg.Kubeconfig != "" {
		rules.ExplicitPath = cfg.Kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: cfg.Context}
	clientCfg := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	// Falls back to the in-cluster config when no kubeconfig is present.
	restCfg, err := clientCfg.ClientConfig()
	if err != nil {
		return nil, "", errs.Wrap(ErrConfigFailed, err)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		if ns, _, err := clientCfg.Namespace(); err == nil {
			namespace = ns
		}
	}
	return restCfg, namespace, nil
}

func (c *Client) String() string {
	return "kube.Client{namespace=" + c.namespace + "}"
}

func (c *Client) Fetch(ctx context.Context, name string) (secret.Decoded, error) {
	logger.Debug(ctx, "reading secret from api server", "namespace", c.namespace, "name", name)
	s, err := c.clientset.CoreV1().Secrets(c.namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			logger.Debug(ctx, "secret not found", "namespace", c.namespace, "name", name)
		}
		return nil, errs.Wrap(secret.ErrLookupFailed, err)
	}

	// The API client has already base64 decoded Data.
	out := make(secret.Decoded, len(s.Data))
	for key, raw := range s.Data {
		text, err := secret.Text(key, raw)
		if err != nil {
			return nil, err
		}
		out[key] = text
	}
	return out, nil
}
