package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"MODE", "KUBESECRETS_MODE", "KUBESECRETS_BACKEND", "KUBESECRETS_NAMESPACE", "KUBESECRETS_CONTEXT",
	"KUBECONFIG", "KUBECTL_PATH", "KUBESECRETS_OUTPUT", "KUBESECRETS_TIMEOUT",
	"CITADEL_URL", "CITADEL_API_KEY",
}

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		if prev, ok := os.LookupEnv(key); ok {
			t.Setenv(key, prev)
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "local", cfg.Mode)
	assert.Equal(t, BackendKubectl, cfg.Backend)
	assert.Equal(t, "kubectl", cfg.KubectlPath)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, OutputRepr, cfg.Output)
	assert.Equal(t, DefaultTargets(), cfg.Targets)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "kubesecrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: kubernetes
namespace: smo
timeout: 5s
output: json
targets:
  - label: Realm Admin
    name: keycloak-admin
  - name: grafana
`), 0o600))
	t.Setenv("KUBESECRETS_NAMESPACE", "override")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendKubernetes, cfg.Backend)
	assert.Equal(t, "override", cfg.Namespace)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, []Target{
		{Label: "Realm Admin", Name: "keycloak-admin"},
		{Label: "grafana", Name: "grafana"},
	}, cfg.Targets)
}

func TestLoadIgnoresAmbientShellVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBECONFIG", "/home/dev/.kube/a:/home/dev/.kube/b")
	t.Setenv("MODE", "production")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Empty(t, cfg.Kubeconfig)
	assert.Equal(t, "local", cfg.Mode)
}

func TestLoadMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("KUBESECRETS_MODE", "server")
	t.Setenv("KUBESECRETS_BACKEND", BackendAWS)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "server", cfg.Mode)

	t.Setenv("KUBESECRETS_MODE", "production")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "KUBESECRETS_MODE")

	cfg.Backend = BackendKubectl
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("targets: [\n"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("KUBESECRETS_TIMEOUT", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "KUBESECRETS_TIMEOUT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Mode: "local", Backend: BackendKubectl, Output: OutputRepr, Targets: DefaultTargets()}
	}

	cases := map[string]func(*Config){
		"aws mode":     func(c *Config) { c.Backend, c.Mode = BackendAWS, "cloud" },
		"citadel mode": func(c *Config) { c.Backend, c.Mode = BackendCitadel, "" },
		"backend":      func(c *Config) { c.Backend = "vault" },
		"output":       func(c *Config) { c.Output = "xml" },
		"timeout":      func(c *Config) { c.Timeout = -time.Second },
		"target name":  func(c *Config) { c.Targets = []Target{{Label: "x", Name: " "}} },
		"citadel url":  func(c *Config) { c.Backend, c.Mode = BackendCitadel, "server" },
		"citadel key":  func(c *Config) {
			c.Backend, c.Mode, c.CitadelURL = BackendCitadel, "server", "https://citadel"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := valid()
	cfg.Backend = BackendCitadel
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:9080", cfg.CitadelURL)

	cfg = valid()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "kubectl", cfg.KubectlPath)

	cfg = valid()
	cfg.Mode = "cloud"
	assert.NoError(t, cfg.Validate())
}
