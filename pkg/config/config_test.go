package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RIGHTS_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendAPI, cfg.Backend)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "default", cfg.Source("port"))
	assert.Equal(t, "127.0.0.1:8080", cfg.Address())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := writeConfig(t, `
backend: database
database_url: postgres://localhost/rights
port: 9090
session_ttl: 5m
read_only: false
log_level: debug
`)
	t.Setenv("RIGHTS_CONFIG_PATH", dir)
	t.Setenv("PORT", "9191")
	t.Setenv("RIGHTS_REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	assert.Equal(t, BackendDatabase, cfg.Backend)
	assert.Equal(t, "file", cfg.Source("backend"))
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "environment", cfg.Source("port"))
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.ReadOnly)
	assert.Equal(t, "file", cfg.Source("read_only"), "explicit false in the file is tracked")
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Setenv("RIGHTS_CONFIG_PATH", writeConfig(t, "port: [not an int"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("RIGHTS_CONFIG_PATH", t.TempDir())
	t.Setenv("RIGHTS_SESSION_TTL", "forever")

	_, err := Load()
	assert.ErrorContains(t, err, "RIGHTS_SESSION_TTL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"api without url", func(c *Config) { c.APIURL = "" }, "api_url is required"},
		{"database without url", func(c *Config) { c.Backend = BackendDatabase }, "database_url is required"},
		{"unknown backend", func(c *Config) { c.Backend = "ldap" }, "invalid backend"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "invalid port"},
		{"bad ttl", func(c *Config) { c.SessionTTL = 0 }, "invalid session_ttl"},
		{"bad cache size", func(c *Config) { c.SessionCacheSize = 0 }, "invalid session_cache_size"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"valid", func(c *Config) {}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newDefault()
			c.APIURL = "https://api.example.com"
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestAttributes_MaskSecrets(t *testing.T) {
	t.Setenv("RIGHTS_CONFIG_PATH", t.TempDir())
	t.Setenv("RIGHTS_API_TOKEN", "super-secret")

	cfg, err := Load()
	require.NoError(t, err)

	text := cfg.FormatText()
	assert.NotContains(t, text, "super-secret")
	assert.Contains(t, text, "api_token")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret")

	var decoded struct {
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Attributes, len(attributeNames()))
}
