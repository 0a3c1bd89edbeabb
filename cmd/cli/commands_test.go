package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKubectl answers like kubectl for two known secrets and fails for any
// other name.
const fakeKubectl = `#!/bin/sh
case "$3" in
keycloak-secret)
  echo '{"kind":"Secret","metadata":{"name":"keycloak-secret"},"data":{"password":"cGFzczEyMw=="}}'
  ;;
keycloak.smo-postgres.credentials)
  echo '{"kind":"Secret","metadata":{"name":"keycloak.smo-postgres.credentials"},"data":{"username":"YWRtaW4=","password":"c2VjcmV0"}}'
  ;;
*)
  echo "Error from server (NotFound): secrets \"$3\" not found" >&2
  exit 1
  ;;
esac
`

// envKeys lists every variable config.Load reads, plus the ones kubectl and
// client-go read on their own.
var envKeys = []string{
	"MODE", "KUBESECRETS_MODE", "KUBESECRETS_BACKEND", "KUBESECRETS_NAMESPACE", "KUBESECRETS_CONTEXT",
	"KUBECONFIG", "KUBECTL_PATH", "KUBESECRETS_OUTPUT", "KUBESECRETS_TIMEOUT",
	"CITADEL_URL", "CITADEL_API_KEY",
}

func setup(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	for _, key := range envKeys {
		if prev, ok := os.LookupEnv(key); ok {
			t.Setenv(key, prev)
			require.NoError(t, os.Unsetenv(key))
		}
	}
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "kubectl")
	require.NoError(t, os.WriteFile(path, []byte(fakeKubectl), 0o755))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestDefaultTargets(t *testing.T) {
	kubectl := setup(t)

	stdout, stderr, err := execute(t, "--kubectl", kubectl)

	require.NoError(t, err)
	assert.Equal(t,
		"Keycloak Secret Data: {'password': 'pass123'}\n"+
			"Postgres Credentials Data: {'password': 'secret', 'username': 'admin'}\n",
		stdout,
	)
	assert.Empty(t, stderr)
}

func TestDefaultTargetsWithAmbientShellVariables(t *testing.T) {
	kubectl := setup(t)
	t.Setenv("KUBECONFIG", filepath.Join(t.TempDir(), "a")+":"+filepath.Join(t.TempDir(), "b"))
	t.Setenv("MODE", "production")

	stdout, stderr, err := execute(t, "--kubectl", kubectl)

	require.NoError(t, err)
	assert.Equal(t,
		"Keycloak Secret Data: {'password': 'pass123'}\n"+
			"Postgres Credentials Data: {'password': 'secret', 'username': 'admin'}\n",
		stdout,
	)
	assert.Empty(t, stderr)
}

func TestGetMissingSecretStillSucceeds(t *testing.T) {
	kubectl := setup(t)

	stdout, stderr, err := execute(t, "--kubectl", kubectl, "get", "missing-secret", "keycloak-secret", "-o", "json")

	require.NoError(t, err)
	assert.Equal(t, "missing-secret Data: {}\nkeycloak-secret Data: {\"password\":\"pass123\"}\n", stdout)
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, `An error occurred: secret: lookup failed: Error from server (NotFound): secrets "missing-secret" not found`, lines[0])
}

func TestGetKey(t *testing.T) {
	kubectl := setup(t)

	stdout, _, err := execute(t, "--kubectl", kubectl, "get", "keycloak.smo-postgres.credentials", "--key", "username")

	require.NoError(t, err)
	assert.Equal(t, "admin\n", stdout)
}

func TestConfigFileTargets(t *testing.T) {
	kubectl := setup(t)
	cfgPath := filepath.Join(t.TempDir(), "kubesecrets.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: yaml\ntargets:\n  - label: Admin\n    name: keycloak-secret\n"), 0o600))

	stdout, _, err := execute(t, "--kubectl", kubectl, "--config", cfgPath)

	require.NoError(t, err)
	assert.Equal(t, "Admin Data: {password: pass123}\n", stdout)
}

func TestInvalidConfiguration(t *testing.T) {
	setup(t)

	_, stderr, err := execute(t, "--backend", "vault")

	require.Error(t, err)
	assert.Contains(t, stderr, "backend must be one of")
}

func TestGetRequiresName(t *testing.T) {
	setup(t)

	_, _, err := execute(t, "get")

	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	setup(t)

	stdout, _, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "kubesecrets "+version+"\n", stdout)
}
