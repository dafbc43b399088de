package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func clearEnv(t *testing.T) {
	for _, key := range []string{"CONFIG", "PORT", "LOG_LEVEL", "AUTH_PROVIDER_URL", "AUTH_REDIRECT_URL", "DISABLE_AUTH"} {
		t.Setenv("CORE_NOTES_"+key, "")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestServeRequiresAuthSettings(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "serve", "--env-file", "")
	assert.ErrorContains(t, err, "auth.provider_url")
}

func TestServeFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORE_NOTES_PORT", "5000")
	t.Setenv("CORE_NOTES_LOG_LEVEL", "debug")

	_, err := execute(t, "serve", "--env-file", "", "--disable-auth", "--port", "70000")
	assert.ErrorContains(t, err, "invalid port: 70000")

	_, err = execute(t, "serve", "--env-file", "", "--disable-auth", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestServeRejectsMissingConfigFile(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "serve", "--env-file", "", "--config", t.TempDir()+"/missing.yaml")
	assert.ErrorContains(t, err, "missing.yaml")
}
