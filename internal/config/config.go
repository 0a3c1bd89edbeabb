package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	BackendKubectl    = "kubectl"
	BackendKubernetes = "kubernetes"
	BackendAWS        = "aws"
	BackendCitadel    = "citadel"

	OutputRepr = "repr"
	OutputJSON = "json"
	OutputYAML = "yaml"

	EnvPrefix = "KUBESECRETS"

	defaultTimeout = 30 * time.Second
)

// Target is one secret to print, with the label shown before its data.
type Target struct {
	Label string `yaml:"label"`
	Name  string `yaml:"name"`
}

func DefaultTargets() []Target {
	return []Target{
		{Label: "Keycloak Secret", Name: "keycloak-secret"},
		{Label: "Postgres Credentials", Name: "keycloak.smo-postgres.credentials"},
	}
}

type Config struct {
	Mode          string        `yaml:"mode"`
	Backend       string        `yaml:"backend"`
	Namespace     string        `yaml:"namespace"`
	KubeContext   string        `yaml:"context"`
	Kubeconfig    string        `yaml:"kubeconfig"`
	KubectlPath   string        `yaml:"kubectl"`
	Timeout       time.Duration `yaml:"timeout"`
	Output        string        `yaml:"output"`
	CitadelURL    string        `yaml:"citadelURL"`
	CitadelAPIKey string        `yaml:"citadelAPIKey"`
	Targets       []Target      `yaml:"targets"`
}

// Load reads the optional YAML file at path and lets environment variables
// override it. Call Validate once flags have been applied.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Mode:        "local",
		Backend:     BackendKubectl,
		KubectlPath: "kubectl",
		Timeout:     defaultTimeout,
		Output:      OutputRepr,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = DefaultTargets()
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Mode = getEnv(EnvPrefix+"_MODE", c.Mode)
	c.Backend = getEnv(EnvPrefix+"_BACKEND", c.Backend)
	c.Namespace = getEnv(EnvPrefix+"_NAMESPACE", c.Namespace)
	c.KubeContext = getEnv(EnvPrefix+"_CONTEXT", c.KubeContext)
	// KUBECONFIG stays with kubectl and client-go, which both accept a path list.
	c.KubectlPath = getEnv("KUBECTL_PATH", c.KubectlPath)
	c.Output = getEnv(EnvPrefix+"_OUTPUT", c.Output)
	c.CitadelURL = getEnv("CITADEL_URL", c.CitadelURL)
	c.CitadelAPIKey = getEnv("CITADEL_API_KEY", c.CitadelAPIKey)

	if raw, ok := os.LookupEnv(EnvPrefix + "_TIMEOUT"); ok {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s_TIMEOUT must be a duration, got %q", EnvPrefix, raw)
		}
		c.Timeout = d
	}
	return nil
}

// Validate fills remaining defaults and rejects inconsistent settings.
// Mode only matters to the aws and citadel backends.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendKubectl, BackendKubernetes:
	case BackendAWS, BackendCitadel:
		if c.Mode != "local" && c.Mode != "server" {
			return fmt.Errorf("%s_MODE must be 'local' or 'server', got %q", EnvPrefix, c.Mode)
		}
	default:
		return fmt.Errorf("backend must be one of kubectl, kubernetes, aws, citadel; got %q", c.Backend)
	}

	switch c.Output {
	case OutputRepr, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be one of repr, json, yaml; got %q", c.Output)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}

	if c.Backend == BackendKubectl && c.KubectlPath == "" {
		c.KubectlPath = "kubectl"
	}

	if c.Backend == BackendCitadel {
		if c.Mode == "local" && c.CitadelURL == "" {
			c.CitadelURL = "http://localhost:9080"
		}
		if c.Mode == "server" {
			if c.CitadelURL == "" {
				return fmt.Errorf("CITADEL_URL must be set in server mode")
			}
			if c.CitadelAPIKey == "" {
				return fmt.Errorf("CITADEL_API_KEY must be set in server mode")
			}
		}
	}

	for i, t := range c.Targets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("target %d has an empty name", i)
		}
		if t.Label == "" {
			c.Targets[i].Label = t.Name
		}
	}

	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Mode=%s Backend=%s Namespace=%s Context=%s Kubeconfig=%s Kubectl=%s Timeout=%s Output=%s CitadelURL=%s Targets=%d",
		c.Mode, c.Backend, c.Namespace, c.KubeContext, c.Kubeconfig, c.KubectlPath, c.Timeout, c.Output, c.CitadelURL, len(c.Targets),
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
