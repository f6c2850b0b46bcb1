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
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/NVIDIA/catalog-gateway/pkg/defaults"
	"github.com/NVIDIA/catalog-gateway/pkg/errors"
	"github.com/NVIDIA/catalog-gateway/pkg/locator"
)

// Config is the resolved gateway configuration.
type Config struct {
	Address         string        `json:"address" yaml:"address"`
	Port            int           `json:"port" yaml:"port"`
	LogLevel        string        `json:"logLevel" yaml:"logLevel"`
	RateLimit       float64       `json:"rateLimit" yaml:"rateLimit"`
	RateLimitBurst  int           `json:"rateLimitBurst" yaml:"rateLimitBurst"`
	CORSOrigins     []string      `json:"corsOrigins" yaml:"corsOrigins"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	// WriteTimeout is the floor for the HTTP write deadline. The server
	// raises it when an engine call could outlast it.
	WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	Engine       Engine        `json:"engine" yaml:"engine"`
}

// Engine configures how the engine executable is found and run.
type Engine struct {
	// Dir is searched for Candidates. Empty means the gateway's own directory.
	Dir            string        `json:"dir" yaml:"dir"`
	Name           string        `json:"name" yaml:"name"`
	Candidates     []string      `json:"candidates" yaml:"candidates"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	// WaitDelay bounds output draining after the engine is killed or exits.
	WaitDelay      time.Duration `json:"waitDelay" yaml:"waitDelay"`
	Encoding       string        `json:"encoding" yaml:"encoding"`
	MaxOutputBytes int           `json:"maxOutputBytes" yaml:"maxOutputBytes"`
	MaxConcurrent  int           `json:"maxConcurrent" yaml:"maxConcurrent"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:            defaults.ServerPort,
		LogLevel:        "info",
		RateLimit:       defaults.ServerRateLimit,
		RateLimitBurst:  defaults.ServerRateLimitBurst,
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: defaults.ServerShutdownTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		Engine: Engine{
			Name:           defaults.EngineName,
			Candidates:     locator.DefaultCandidates(runtime.GOOS),
			Timeout:        defaults.EngineTimeout,
			WaitDelay:      defaults.EngineWaitDelay,
			Encoding:       defaults.EngineEncoding,
			MaxOutputBytes: defaults.EngineMaxOutputBytes,
		},
	}
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate reports the first invalid setting as an ErrCodeInvalidConfig error.
func (c *Config) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return invalid("port", c.Port, "must be between 0 and 65535")
	case c.RateLimit <= 0:
		return invalid("rateLimit", c.RateLimit, "must be positive")
	case c.RateLimitBurst <= 0:
		return invalid("rateLimitBurst", c.RateLimitBurst, "must be positive")
	case c.ShutdownTimeout <= 0:
		return invalid("shutdownTimeout", c.ShutdownTimeout, "must be positive")
	case c.WriteTimeout <= 0:
		return invalid("writeTimeout", c.WriteTimeout, "must be positive")
	case !logLevels[strings.ToLower(c.LogLevel)]:
		return invalid("logLevel", c.LogLevel, "must be one of debug, info, warn, error")
	case c.Engine.Timeout <= 0:
		return invalid("engine.timeout", c.Engine.Timeout, "must be positive")
	case c.Engine.WaitDelay <= 0:
		return invalid("engine.waitDelay", c.Engine.WaitDelay, "must be positive")
	case c.Engine.MaxOutputBytes <= 0:
		return invalid("engine.maxOutputBytes", c.Engine.MaxOutputBytes, "must be positive")
	case c.Engine.MaxConcurrent < 0:
		return invalid("engine.maxConcurrent", c.Engine.MaxConcurrent, "must not be negative")
	case len(c.Engine.Candidates) == 0:
		return invalid("engine.candidates", c.Engine.Candidates, "must not be empty")
	}

	for _, name := range c.Engine.Candidates {
		if name == "" || filepath.Base(name) != name {
			return invalid("engine.candidates", name, "must be plain file names")
		}
	}

	if _, err := htmlindex.Get(c.Engine.Encoding); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown engine encoding %q", c.Engine.Encoding), err).With("field", "engine.encoding")
	}
	return nil
}

// ResponseDeadline is the longest a single engine request may take to
// produce its response: the invocation timeout, which also bounds the wait
// for a concurrency slot, plus the output drain delay and a margin for
// writing the body.
func (c *Config) ResponseDeadline() time.Duration {
	return c.Engine.Timeout + c.Engine.WaitDelay + defaults.ServerWriteMargin
}

func invalid(field string, value any, reason string) error {
	return errors.New(errors.ErrCodeInvalidConfig,
		fmt.Sprintf("invalid %s %v: %s", field, value, reason)).With("field", field)
}
