// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config resolves devflow settings from defaults, a TOML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/bartekus/devflow/internal/reconcile"
	"github.com/bartekus/devflow/internal/source"
	"github.com/bartekus/devflow/internal/storyblok"
	"github.com/bartekus/devflow/internal/transport"
)

const (
	EnvToken     = "STORYBLOK_TOKEN"
	EnvAPIURL    = "DEVFLOW_API_URL"
	EnvSpace     = "DEVFLOW_SPACE"
	EnvMaxRPS    = "DEVFLOW_MAX_RPS"
	EnvMaxRPSOld = "DF_MAX_RPS"
	EnvConfig    = "DEVFLOW_CONFIG"
)

// Config is the resolved configuration.
type Config struct {
	Token       string
	APIURL      string
	Space       string
	MaxRPS      float64
	Timeout     time.Duration
	StateDir    string
	PendingPath string
	Retry       transport.RetryPolicy
}

type fileConfig struct {
	Token       string    `toml:"token"`
	APIURL      string    `toml:"api_url"`
	Space       string    `toml:"space"`
	MaxRPS      float64   `toml:"max_rps"`
	Timeout     string    `toml:"timeout"`
	StateDir    string    `toml:"state_dir"`
	PendingPath string    `toml:"pending_path"`
	Retry       fileRetry `toml:"retry"`
}

type fileRetry struct {
	Base       string `toml:"base"`
	MaxRetries int    `toml:"max_retries"`
	MaxJitter  string `toml:"max_jitter"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:      storyblok.DefaultBaseURL,
		MaxRPS:      transport.DefaultMaxRPS,
		Timeout:     transport.DefaultTimeout,
		StateDir:    reconcile.DefaultStateDir,
		PendingPath: source.DefaultPendingPath,
		Retry:       transport.DefaultRetryPolicy(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/devflow/config.toml, falling back to ~/.config.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "devflow", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devflow", "config.toml")
}

// Options selects the inputs of Load.
type Options struct {
	// Path is the TOML file; empty uses DefaultPath. A missing default file is ignored.
	Path string
	// EnvFile is loaded without overriding variables already set. Empty means ".env".
	EnvFile string
	// Getenv reads the environment; nil uses os.Getenv.
	Getenv func(string) string
}

// Load resolves the configuration.
func Load(opts Options) (Config, error) {
	cfg := Default()

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				err = nil
			}
			if err != nil {
				return Config{}, err
			}
		}
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("token") {
		cfg.Token = strings.TrimSpace(raw.Token)
	}
	if meta.IsDefined("api_url") {
		cfg.APIURL = strings.TrimRight(strings.TrimSpace(raw.APIURL), "/")
	}
	if meta.IsDefined("space") {
		cfg.Space = strings.TrimSpace(raw.Space)
	}
	if meta.IsDefined("max_rps") {
		cfg.MaxRPS = raw.MaxRPS
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("state_dir") {
		cfg.StateDir = strings.TrimSpace(raw.StateDir)
	}
	if meta.IsDefined("pending_path") {
		cfg.PendingPath = strings.TrimSpace(raw.PendingPath)
	}
	if meta.IsDefined("retry", "base") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Retry.Base))
		if err != nil {
			return fmt.Errorf("parse retry.base: %w", err)
		}
		cfg.Retry.Base = d
	}
	if meta.IsDefined("retry", "max_retries") {
		if raw.Retry.MaxRetries < 0 {
			return fmt.Errorf("retry.max_retries must not be negative, got %d", raw.Retry.MaxRetries)
		}
		cfg.Retry.MaxRetries = raw.Retry.MaxRetries
	}
	if meta.IsDefined("retry", "max_jitter") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Retry.MaxJitter))
		if err != nil {
			return fmt.Errorf("parse retry.max_jitter: %w", err)
		}
		cfg.Retry.MaxJitter = d
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvToken)); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(getenv(EnvSpace)); v != "" {
		cfg.Space = v
	}
	for _, key := range []string{EnvMaxRPSOld, EnvMaxRPS} {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		cfg.MaxRPS = rps
	}
	return nil
}

// Transport builds the shared transport described by cfg.
func (c Config) Transport(opts ...transport.Option) *transport.Transport {
	base := []transport.Option{
		transport.WithTimeout(c.Timeout),
		transport.WithLimiter(transport.NewLimiter(c.MaxRPS)),
		transport.WithRetryPolicy(c.Retry),
	}
	return transport.New(append(base, opts...)...)
}

// Client builds a management API client. It fails without a token.
func (c Config) Client(opts ...transport.Option) (*storyblok.Client, error) {
	if c.Token == "" {
		return nil, fmt.Errorf("no API token: set %s or token in the config file", EnvToken)
	}
	return storyblok.NewClient(c.APIURL, c.Token, c.Transport(opts...)), nil
}
