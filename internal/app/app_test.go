package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vinr.eu/kubesecrets/internal/config"
	"vinr.eu/kubesecrets/internal/render"
	"vinr.eu/kubesecrets/internal/secret"
)

func newReporter(diag *bytes.Buffer) *secret.Reporter {
	return secret.NewReporter(secret.NewStaticFetcher(map[string]secret.Record{
		"keycloak-secret": {"password": "cGFzczEyMw=="},
		"keycloak.smo-postgres.credentials": {
			"username": "YWRtaW4=",
			"password": "c2VjcmV0",
		},
	}), diag)
}

func TestRunDefaultTargets(t *testing.T) {
	var out, diag bytes.Buffer

	err := Run(context.Background(), newReporter(&diag), config.DefaultTargets(), render.RendererFunc(render.Repr), &out)

	require.NoError(t, err)
	assert.Equal(t,
		"Keycloak Secret Data: {'password': 'pass123'}\n"+
			"Postgres Credentials Data: {'password': 'secret', 'username': 'admin'}\n",
		out.String(),
	)
	assert.Empty(t, diag.String())
}

func TestRunContinuesAfterFailure(t *testing.T) {
	var out, diag bytes.Buffer
	targets := []config.Target{
		{Label: "Missing", Name: "missing-secret"},
		{Label: "Keycloak Secret", Name: "keycloak-secret"},
	}

	err := Run(context.Background(), newReporter(&diag), targets, render.RendererFunc(render.JSON), &out)

	require.NoError(t, err)
	assert.Equal(t,
		"Missing Data: {}\n"+
			`Keycloak Secret Data: {"password":"pass123"}`+"\n",
		out.String(),
	)
	assert.Equal(t, 1, strings.Count(diag.String(), "An error occurred: "))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	err := Run(ctx, newReporter(&bytes.Buffer{}), config.DefaultTargets(), render.RendererFunc(render.Repr), &out)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestRunKey(t *testing.T) {
	var out, diag bytes.Buffer

	err := RunKey(context.Background(), newReporter(&diag), config.DefaultTargets(), "username", &out)

	require.NoError(t, err)
	assert.Equal(t, "\nadmin\n", out.String())
}
