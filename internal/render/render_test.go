package render

import (
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vinr.eu/kubesecrets/internal/secret"
)

func TestRepr(t *testing.T) {
	cases := []struct {
		name string
		in   secret.Decoded
		want string
	}{
		{"empty", secret.Decoded{}, "{}"},
		{"nil", nil, "{}"},
		{"single", secret.Decoded{"password": "pass123"}, "{'password': 'pass123'}"},
		{"sorted", secret.Decoded{"username": "admin", "password": "secret"}, "{'password': 'secret', 'username': 'admin'}"},
		{"single quote", secret.Decoded{"p": "it's"}, `{'p': "it's"}`},
		{"both quotes", secret.Decoded{"p": `it's "x"`}, `{'p': 'it\'s "x"'}`},
		{"escapes", secret.Decoded{"cert": "a\nb\tc\\d"}, `{'cert': 'a\nb\tc\\d'}`},
		{"control", secret.Decoded{"c": "\x00\x7f"}, `{'c': '\x00\x7f'}`},
		{"unicode", secret.Decoded{"u": "pässwörd"}, "{'u': 'pässwörd'}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Repr(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSON(t *testing.T) {
	got, err := JSON(secret.Decoded{"username": "admin", "password": "secret"})
	require.NoError(t, err)
	assert.Equal(t, `{"password":"secret","username":"admin"}`, got)

	got, err = JSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestYAML(t *testing.T) {
	in := secret.Decoded{"username": "admin", "password": "secret: with colon"}
	got, err := YAML(in)
	require.NoError(t, err)
	assert.NotContains(t, got, "\n")

	var back map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(got), &back))
	assert.Equal(t, map[string]string(in), back)
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "repr", "json", "yaml"} {
		r, err := New(format)
		require.NoError(t, err, format)
		assert.NotNil(t, r)
	}

	_, err := New("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
