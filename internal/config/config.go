// Package config resolves the server settings from defaults, an optional
// YAML file, an optional .env file and CORE_NOTES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "CORE_NOTES_"

var (
	DefaultPort        int           = 3334
	DefaultAPIURL      string        = "http://localhost:3333"
	DefaultSessionTTL  time.Duration = 30 * time.Minute
	DefaultMaxSessions int           = 1000
	DefaultLogLevel    string        = "info"
	DefaultClientID    string        = "core-notes"
	DefaultEnvFile     string        = ".env"
)

type AuthConfig struct {
	ProviderURL string `yaml:"provider_url"`
	RedirectURL string `yaml:"redirect_url"`
	ClientID    string `yaml:"client_id"`
	Disabled    bool   `yaml:"disabled"`
}

type Config struct {
	Port        int           `yaml:"port"`
	APIURL      string        `yaml:"api_url"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	MaxSessions int           `yaml:"max_sessions"`
	LogLevel    string        `yaml:"log_level"`
	Auth        AuthConfig    `yaml:"auth"`
}

func Default() *Config {
	return &Config{
		Port:        DefaultPort,
		APIURL:      DefaultAPIURL,
		SessionTTL:  DefaultSessionTTL,
		MaxSessions: DefaultMaxSessions,
		LogLevel:    DefaultLogLevel,
		Auth: AuthConfig{
			ClientID: DefaultClientID,
		},
	}
}

// Loader reads configuration sources. Fs and Getenv default to the OS.
type Loader struct {
	Fs     afero.Fs
	Getenv func(string) string
}

// Load layers defaults, the YAML file at path (skipped when empty) and the
// environment. Values from the .env file at envFile only apply to keys the
// real environment leaves unset; a missing .env file is not an error.
func (l Loader) Load(path string, envFile string) (*Config, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := Default()
	if path != "" {
		if err := readYAML(fs, path, cfg); err != nil {
			return nil, err
		}
	}

	dotenv, err := readDotEnv(fs, envFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if v := getenv(EnvPrefix + key); v != "" {
			return v
		}
		return dotenv[EnvPrefix+key]
	}
	applyEnv(cfg, lookup)
	return cfg, nil
}

// ConfigPath returns the YAML file named by CORE_NOTES_CONFIG, if any.
func ConfigPath(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	return strings.TrimSpace(getenv(EnvPrefix + "CONFIG"))
}

func readYAML(fs afero.Fs, path string, cfg *Config) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("error opening config file %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

func readDotEnv(fs afero.Fs, path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error opening env file %s: %w", path, err)
	}
	defer f.Close()

	values, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing env file %s: %w", path, err)
	}
	slog.Debug("loaded env file", "path", path, "keys", len(values))
	return values, nil
}

// applyEnv overrides cfg with every set variable. Values that do not parse
// are logged and ignored.
func applyEnv(cfg *Config, lookup func(string) string) {
	if v := lookup("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		} else {
			slog.Warn("ignoring invalid port", "var", EnvPrefix+"PORT", "value", v)
		}
	}
	if v := lookup("API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := lookup("SESSION_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil && ttl > 0 {
			cfg.SessionTTL = ttl
		} else {
			slog.Warn("ignoring invalid session TTL", "var", EnvPrefix+"SESSION_TTL", "value", v)
		}
	}
	if v := lookup("MAX_SESSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSessions = n
		} else {
			slog.Warn("ignoring invalid session limit", "var", EnvPrefix+"MAX_SESSIONS", "value", v)
		}
	}
	if v := lookup("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := lookup("AUTH_PROVIDER_URL"); v != "" {
		cfg.Auth.ProviderURL = v
	}
	if v := lookup("AUTH_REDIRECT_URL"); v != "" {
		cfg.Auth.RedirectURL = v
	}
	if v := lookup("AUTH_CLIENT_ID"); v != "" {
		cfg.Auth.ClientID = v
	}
	if strings.TrimSpace(lookup("DISABLE_AUTH")) != "" {
		cfg.Auth.Disabled = true
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid session_ttl: %s", c.SessionTTL)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Auth.Disabled {
		return nil
	}
	if c.Auth.ProviderURL == "" {
		return fmt.Errorf("auth.provider_url (%sAUTH_PROVIDER_URL) is required unless auth is disabled", EnvPrefix)
	}
	if c.Auth.RedirectURL == "" {
		return fmt.Errorf("auth.redirect_url (%sAUTH_REDIRECT_URL) is required unless auth is disabled", EnvPrefix)
	}
	return nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
