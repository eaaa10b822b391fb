// Copyright (c) Microsoft. All rights reserved.

// Package config resolves the settings an agentloop process needs: the API
// credential, the endpoint, the default model, and the tool loop limits.
//
// Precedence, highest first: explicit options passed to [Load], process
// environment, the config file, .env files, built-in defaults. Loading never
// modifies the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentloop/agentloop-go/agentloop"
)

// Defaults.
const (
	DefaultBaseURL           = "https://api.openai.com/v1"
	DefaultModel             = "gpt-4o-mini"
	DefaultMaxToolIterations = agentloop.DefaultMaxIterations
)

// Setting keys, as used in config files.
const (
	KeyAPIKey            = "api_key"
	KeyBaseURL           = "base_url"
	KeyModel             = "model"
	KeyMaxToolIterations = "max_tool_iterations"
	KeyParallelToolCalls = "parallel_tool_calls"
)

// envBindings lists, per key, the environment variables consulted in order.
var envBindings = map[string][]string{
	KeyAPIKey:            {"AGENTLOOP_API_KEY", "OPENAI_API_KEY"},
	KeyBaseURL:           {"AGENTLOOP_BASE_URL", "OPENAI_BASE_URL"},
	KeyModel:             {"AGENTLOOP_MODEL"},
	KeyMaxToolIterations: {"AGENTLOOP_MAX_TOOL_ITERATIONS"},
	KeyParallelToolCalls: {"AGENTLOOP_PARALLEL_TOOL_CALLS"},
}

// ErrInvalidConfig is returned when the resolved settings fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved configuration.
type Config struct {
	APIKey            string `mapstructure:"api_key"`
	BaseURL           string `mapstructure:"base_url"`
	Model             string `mapstructure:"model"`
	MaxToolIterations int    `mapstructure:"max_tool_iterations"`
	ParallelToolCalls bool   `mapstructure:"parallel_tool_calls"`
}

// Invocation returns the tool loop settings for an agent.
func (c *Config) Invocation() agentloop.InvocationConfig {
	return agentloop.InvocationConfig{
		MaxIterations:     c.MaxToolIterations,
		ParallelToolCalls: c.ParallelToolCalls,
	}
}

type options struct {
	file      string
	envFiles  []string
	overrides map[string]any
}

// Option configures [Load].
type Option func(*options)

// WithFile reads settings from a config file. The format is taken from the
// extension (yaml, json, toml, ...). A missing file is an error.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithEnvFiles replaces the .env files consulted (default ".env"). Missing
// files are ignored.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) { o.envFiles = paths }
}

// WithAPIKey overrides the API key.
func WithAPIKey(key string) Option {
	return override(KeyAPIKey, key)
}

// WithBaseURL overrides the endpoint.
func WithBaseURL(u string) Option {
	return override(KeyBaseURL, u)
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return override(KeyModel, model)
}

// WithMaxToolIterations overrides the iteration cap.
func WithMaxToolIterations(n int) Option {
	return override(KeyMaxToolIterations, n)
}

// WithParallelToolCalls overrides whether tool calls run concurrently.
func WithParallelToolCalls(enabled bool) Option {
	return override(KeyParallelToolCalls, enabled)
}

func override(key string, value any) Option {
	return func(o *options) { o.overrides[key] = value }
}

// Load resolves and validates the configuration.
func Load(opts ...Option) (*Config, error) {
	o := &options{
		envFiles:  []string{".env"},
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyModel, DefaultModel)
	v.SetDefault(KeyMaxToolIterations, DefaultMaxToolIterations)
	v.SetDefault(KeyParallelToolCalls, false)

	dotenv, err := readEnvFiles(o.envFiles)
	if err != nil {
		return nil, err
	}
	for key, names := range envBindings {
		for _, name := range names {
			if val := dotenv[name]; val != "" {
				v.SetDefault(key, val)
				break
			}
		}
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if o.file != "" {
		v.SetConfigFile(o.file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", o.file, err)
		}
	}

	for key, val := range o.overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("config loaded",
		"base_url", cfg.BaseURL,
		"model", cfg.Model,
		"max_tool_iterations", cfg.MaxToolIterations,
		"parallel_tool_calls", cfg.ParallelToolCalls,
		"has_api_key", cfg.APIKey != "",
		"config_file", o.file,
	)
	return &cfg, nil
}

// Validate checks the settings a client cannot work without.
func (c *Config) Validate() error {
	if c.MaxToolIterations <= 0 {
		return fmt.Errorf("%w: max_tool_iterations must be positive, got %d", ErrInvalidConfig, c.MaxToolIterations)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base_url: %v", ErrInvalidConfig, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q is not an absolute URL", ErrInvalidConfig, c.BaseURL)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model is empty", ErrInvalidConfig)
	}
	return nil
}

// readEnvFiles parses the .env files that exist. Earlier files win.
func readEnvFiles(paths []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, p := range paths {
		vals, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", p, err)
		}
		for k, val := range vals {
			if _, seen := merged[k]; !seen {
				merged[k] = val
			}
		}
	}
	return merged, nil
}
