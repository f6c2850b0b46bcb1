// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"k8s.io/utils/ptr"

	"github.com/NVIDIA/catalog-gateway/pkg/errors"
	"github.com/NVIDIA/catalog-gateway/pkg/k8s/client"
	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

// Environment variables applied over the config source.
const (
	EnvPort            = "PORT"
	EnvEngineDir       = "ENGINE_DIR"
	EnvEngineTimeout   = "ENGINE_TIMEOUT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT_SECONDS"
)

// fileConfig is the on-disk shape. Absent fields leave defaults in place.
type fileConfig struct {
	Address         *string     `json:"address,omitempty" yaml:"address,omitempty"`
	Port            *int        `json:"port,omitempty" yaml:"port,omitempty"`
	LogLevel        *string     `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	RateLimit       *float64    `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	RateLimitBurst  *int        `json:"rateLimitBurst,omitempty" yaml:"rateLimitBurst,omitempty"`
	CORSOrigins     []string    `json:"corsOrigins,omitempty" yaml:"corsOrigins,omitempty"`
	ShutdownTimeout *string     `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
	WriteTimeout    *string     `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	Engine          *fileEngine `json:"engine,omitempty" yaml:"engine,omitempty"`
}

type fileEngine struct {
	Dir            *string  `json:"dir,omitempty" yaml:"dir,omitempty"`
	Name           *string  `json:"name,omitempty" yaml:"name,omitempty"`
	Candidates     []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Timeout        *string  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	WaitDelay      *string  `json:"waitDelay,omitempty" yaml:"waitDelay,omitempty"`
	Encoding       *string  `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	MaxOutputBytes *int     `json:"maxOutputBytes,omitempty" yaml:"maxOutputBytes,omitempty"`
	MaxConcurrent  *int     `json:"maxConcurrent,omitempty" yaml:"maxConcurrent,omitempty"`
}

type loadOptions struct {
	kubeconfig string
	kubeClient client.Interface
	lookupEnv  func(string) (string, bool)
	overrides  []func(*Config)
}

// LoadOption customizes Load.
type LoadOption func(*loadOptions)

// WithKubeconfig sets the kubeconfig used for cm:// sources.
func WithKubeconfig(path string) LoadOption {
	return func(o *loadOptions) {
		o.kubeconfig = path
	}
}

// WithKubeClient reads cm:// sources through c instead of building a client.
func WithKubeClient(c client.Interface) LoadOption {
	return func(o *loadOptions) {
		o.kubeClient = c
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.lookupEnv = fn
		}
	}
}

// WithOverride applies fn after the environment, before validation. The CLI
// uses it for flags, which take precedence over everything else.
func WithOverride(fn func(*Config)) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.overrides = append(o.overrides, fn)
		}
	}
}

// Load resolves the configuration: defaults, then source, then environment,
// then overrides. source is a file path, a cm://namespace/name URI or empty.
// The result is validated.
func Load(ctx context.Context, source string, opts ...LoadOption) (*Config, error) {
	o := &loadOptions{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(o)
	}

	cfg := Default()

	if source != "" {
		fc, err := readSource(ctx, source, o)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig,
				"failed to read configuration", err).With("source", source)
		}
		if err := fc.apply(cfg); err != nil {
			return nil, err
		}
		slog.Debug("configuration source applied", "source", source)
	}

	if err := applyEnv(cfg, o.lookupEnv); err != nil {
		return nil, err
	}

	for _, fn := range o.overrides {
		fn(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readSource(ctx context.Context, source string, o *loadOptions) (*fileConfig, error) {
	if o.kubeClient != nil {
		return serializer.FromFileWithClient[fileConfig](ctx, source, o.kubeClient)
	}
	return serializer.FromFileWithKubeconfig[fileConfig](ctx, source, o.kubeconfig)
}

func (fc *fileConfig) apply(cfg *Config) error {
	cfg.Address = ptr.Deref(fc.Address, cfg.Address)
	cfg.Port = ptr.Deref(fc.Port, cfg.Port)
	cfg.LogLevel = ptr.Deref(fc.LogLevel, cfg.LogLevel)
	cfg.RateLimit = ptr.Deref(fc.RateLimit, cfg.RateLimit)
	cfg.RateLimitBurst = ptr.Deref(fc.RateLimitBurst, cfg.RateLimitBurst)
	if fc.CORSOrigins != nil {
		cfg.CORSOrigins = fc.CORSOrigins
	}
	if err := setDuration(&cfg.ShutdownTimeout, "shutdownTimeout", fc.ShutdownTimeout); err != nil {
		return err
	}
	if err := setDuration(&cfg.WriteTimeout, "writeTimeout", fc.WriteTimeout); err != nil {
		return err
	}

	e := fc.Engine
	if e == nil {
		return nil
	}
	cfg.Engine.Dir = ptr.Deref(e.Dir, cfg.Engine.Dir)
	cfg.Engine.Name = ptr.Deref(e.Name, cfg.Engine.Name)
	cfg.Engine.Encoding = ptr.Deref(e.Encoding, cfg.Engine.Encoding)
	cfg.Engine.MaxOutputBytes = ptr.Deref(e.MaxOutputBytes, cfg.Engine.MaxOutputBytes)
	cfg.Engine.MaxConcurrent = ptr.Deref(e.MaxConcurrent, cfg.Engine.MaxConcurrent)
	if e.Candidates != nil {
		cfg.Engine.Candidates = e.Candidates
	}
	if err := setDuration(&cfg.Engine.Timeout, "engine.timeout", e.Timeout); err != nil {
		return err
	}
	return setDuration(&cfg.Engine.WaitDelay, "engine.waitDelay", e.WaitDelay)
}

// setDuration parses value into dst when it is present.
func setDuration(dst *time.Duration, field string, value *string) error {
	if value == nil {
		return nil
	}
	d, err := parseDuration(field, *value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvPort, v, err)
		}
		cfg.Port = port
	}
	if v, ok := lookup(EnvEngineDir); ok && v != "" {
		cfg.Engine.Dir = v
	}
	if v, ok := lookup(EnvEngineTimeout); ok && v != "" {
		d, err := parseDuration(EnvEngineTimeout, v)
		if err != nil {
			return err
		}
		cfg.Engine.Timeout = d
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvShutdownTimeout); ok && v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvShutdownTimeout, v, err)
		}
		cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
	}
	return nil
}

// parseDuration accepts Go duration strings and bare integers as seconds.
func parseDuration(field, value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid duration %q for %s", value, field), err).With("field", field)
	}
	return d, nil
}

func envError(name, value string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig,
		fmt.Sprintf("invalid value %q for %s", value, name), err).With("env", name)
}
