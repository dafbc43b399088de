package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	l := Loader{Fs: afero.NewMemMapFs(), Getenv: envMap(nil)}
	cfg, err := l.Load("", DefaultEnvFile)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3334, cfg.Port)
	assert.Equal(t, "http://localhost:3333", cfg.APIURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "core-notes", cfg.Auth.ClientID)
}

func TestLoadPrecedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/core-notes.yaml", []byte(`
port: 4000
api_url: http://yaml:3333
session_ttl: 5m
log_level: debug
auth:
  provider_url: https://id.example.com/realms/notes
  client_id: from-yaml
`), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env", []byte(`
CORE_NOTES_PORT=5000
CORE_NOTES_API_URL=http://dotenv:3333
CORE_NOTES_AUTH_REDIRECT_URL=http://localhost:5000/auth/callback
`), 0644))

	l := Loader{Fs: fs, Getenv: envMap(map[string]string{
		"CORE_NOTES_PORT": "6000",
	})}
	cfg, err := l.Load("/etc/core-notes.yaml", ".env")
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Port, "environment beats .env and yaml")
	assert.Equal(t, "http://dotenv:3333", cfg.APIURL, ".env beats yaml")
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.MaxSessions, "unset keys keep defaults")
	assert.Equal(t, "from-yaml", cfg.Auth.ClientID)
	assert.Equal(t, "https://id.example.com/realms/notes", cfg.Auth.ProviderURL)
	assert.Equal(t, "http://localhost:5000/auth/callback", cfg.Auth.RedirectURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadIgnoresInvalidEnvValues(t *testing.T) {
	l := Loader{Fs: afero.NewMemMapFs(), Getenv: envMap(map[string]string{
		"CORE_NOTES_PORT":         "not-a-port",
		"CORE_NOTES_SESSION_TTL":  "forever",
		"CORE_NOTES_MAX_SESSIONS": "-3",
		"CORE_NOTES_DISABLE_AUTH": "1",
	})}
	cfg, err := l.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, DefaultMaxSessions, cfg.MaxSessions)
	assert.True(t, cfg.Auth.Disabled)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("port: [1, 2]\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "unknown.yaml", []byte("colour: red\n"), 0644))
	l := Loader{Fs: fs, Getenv: envMap(nil)}

	_, err := l.Load("missing.yaml", "")
	assert.ErrorContains(t, err, "missing.yaml")

	_, err = l.Load("bad.yaml", "")
	assert.ErrorContains(t, err, "error parsing config file")

	_, err = l.Load("unknown.yaml", "")
	assert.Error(t, err)
}

func TestEmptyYAMLKeepsDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "empty.yaml", nil, 0644))
	cfg, err := Loader{Fs: fs, Getenv: envMap(nil)}.Load("empty.yaml", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"auth required", func(c *Config) {}, "auth.provider_url"},
		{"redirect required", func(c *Config) { c.Auth.ProviderURL = "https://id" }, "auth.redirect_url"},
		{"auth disabled", func(c *Config) { c.Auth.Disabled = true }, ""},
		{"bad port", func(c *Config) { c.Auth.Disabled = true; c.Port = 70000 }, "invalid port"},
		{"bad level", func(c *Config) { c.Auth.Disabled = true; c.LogLevel = "loud" }, "invalid log level"},
		{"no api", func(c *Config) { c.Auth.Disabled = true; c.APIURL = "" }, "api_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.errMsg)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLogLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLogLevel("")
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "/etc/cn.yaml", ConfigPath(envMap(map[string]string{"CORE_NOTES_CONFIG": " /etc/cn.yaml "})))
	assert.Equal(t, "", ConfigPath(envMap(nil)))
}
