// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/devflow/internal/transport"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvConfig, "")

	cfg, err := Load(Options{EnvFile: filepath.Join(dir, "missing.env"), Getenv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "https://mapi.storyblok.com/v1", cfg.APIURL)
	assert.Equal(t, 3.0, cfg.MaxRPS)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, transport.DefaultRetryPolicy(), cfg.Retry)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
token = "file-token"
api_url = "https://api-us.storyblok.com/v1/"
space = "100"
max_rps = 5
timeout = "10s"
state_dir = "state"

[retry]
base = "50ms"
max_retries = 2
`)

	cfg, err := Load(Options{Path: path, EnvFile: filepath.Join(dir, "none.env"), Getenv: envMap(map[string]string{
		EnvToken: "env-token",
		EnvSpace: "200",
	})})
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "https://api-us.storyblok.com/v1", cfg.APIURL)
	assert.Equal(t, "200", cfg.Space)
	assert.Equal(t, 5.0, cfg.MaxRPS)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "state", cfg.StateDir)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.Base)
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.Equal(t, transport.DefaultRetryPolicy().MaxJitter, cfg.Retry.MaxJitter)
	assert.Equal(t, Default().PendingPath, cfg.PendingPath)
}

func TestLoad_MaxRPSEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want float64
	}{
		{"legacy", map[string]string{EnvMaxRPSOld: "1"}, 1},
		{"current wins", map[string]string{EnvMaxRPSOld: "1", EnvMaxRPS: "2.5"}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("XDG_CONFIG_HOME", dir)
			t.Setenv(EnvConfig, "")
			cfg, err := Load(Options{EnvFile: filepath.Join(dir, "none.env"), Getenv: envMap(tt.env)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.MaxRPS)
		})
	}

	_, err := Load(Options{Path: writeFile(t, t.TempDir(), "c.toml", ""), EnvFile: "none.env", Getenv: envMap(map[string]string{EnvMaxRPS: "fast"})})
	require.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvToken, "")
	require.NoError(t, os.Unsetenv(EnvToken))
	envFile := writeFile(t, dir, ".env", "STORYBLOK_TOKEN=dotenv-token\n")

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.Token)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "token = "},
		{"bad timeout", `timeout = "soon"`},
		{"bad retry base", "[retry]\nbase = \"x\""},
		{"negative retries", "[retry]\nmax_retries = -1"},
		{"unknown key", `tokn = "typo"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "c.toml", tt.content)
			_, err := Load(Options{Path: path, EnvFile: filepath.Join(dir, "none.env"), Getenv: envMap(nil)})
			require.Error(t, err)
		})
	}

	_, err := Load(Options{Path: filepath.Join(dir, "absent.toml"), EnvFile: filepath.Join(dir, "none.env"), Getenv: envMap(nil)})
	require.Error(t, err, "an explicit config path must exist")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "devflow", "config.toml"), DefaultPath())

	t.Setenv(EnvConfig, "/etc/devflow.toml")
	assert.Equal(t, "/etc/devflow.toml", DefaultPath())
}

func TestClient_RequiresToken(t *testing.T) {
	_, err := Default().Client()
	require.Error(t, err)

	cfg := Default()
	cfg.Token = "t"
	c, err := cfg.Client()
	require.NoError(t, err)
	assert.NotNil(t, c)
}
