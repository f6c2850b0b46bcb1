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

package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/NVIDIA/catalog-gateway/pkg/bridge"
	"github.com/NVIDIA/catalog-gateway/pkg/config"
	"github.com/NVIDIA/catalog-gateway/pkg/gateway"
	"github.com/NVIDIA/catalog-gateway/pkg/locator"
	"github.com/NVIDIA/catalog-gateway/pkg/logging"
	"github.com/NVIDIA/catalog-gateway/pkg/server"
)

const (
	// Name identifies the gateway in logs, metrics and the index route.
	Name = "catalog-gateway"

	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/catalog-gateway/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// Build returns the version information injected at build time.
func Build() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date}
}

// NewLocator returns a Locator for the configured engine directory and
// candidate names.
func NewLocator(cfg *config.Config) (*locator.Locator, error) {
	opts := []locator.Option{locator.WithCandidates(cfg.Engine.Candidates...)}
	if cfg.Engine.Dir != "" {
		opts = append(opts, locator.WithDir(cfg.Engine.Dir))
	}
	return locator.New(opts...)
}

// NewBridge wires a caching resolver and a Bridge from cfg. The resolver is
// returned so callers can probe engine availability.
func NewBridge(cfg *config.Config) (*bridge.Bridge, *locator.Resolver, error) {
	l, err := NewLocator(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine locator: %w", err)
	}
	resolver := locator.NewResolver(l)

	b, err := bridge.New(resolver,
		bridge.WithTimeout(cfg.Engine.Timeout),
		bridge.WithWaitDelay(cfg.Engine.WaitDelay),
		bridge.WithEngineName(cfg.Engine.Name),
		bridge.WithEncoding(cfg.Engine.Encoding),
		bridge.WithMaxOutputBytes(cfg.Engine.MaxOutputBytes),
		bridge.WithMaxConcurrent(cfg.Engine.MaxConcurrent),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create engine bridge: %w", err)
	}
	return b, resolver, nil
}

// NewServer builds the HTTP server without starting it. /ready reports
// unavailable while the engine cannot be located.
func NewServer(cfg *config.Config) (*server.Server, error) {
	b, resolver, err := NewBridge(cfg)
	if err != nil {
		return nil, err
	}

	g := gateway.New(b,
		gateway.WithName(Name),
		gateway.WithVersion(version),
	)

	sc := server.NewConfig()
	sc.Address = cfg.Address
	sc.Port = cfg.Port
	sc.RateLimit = rate.Limit(cfg.RateLimit)
	sc.RateLimitBurst = cfg.RateLimitBurst
	sc.CORSOrigins = cfg.CORSOrigins
	sc.ShutdownTimeout = cfg.ShutdownTimeout
	sc.WriteTimeout = writeTimeout(cfg)

	return server.New(
		server.WithConfig(sc),
		server.WithName(Name),
		server.WithVersion(version),
		server.WithHandler(g.Handlers()),
		server.WithReadiness(func(ctx context.Context) error {
			_, err := resolver.Path(ctx)
			return err
		}),
	), nil
}

// writeTimeout keeps the HTTP write deadline past the slowest engine
// response, so a timed out invocation still delivers its 504.
func writeTimeout(cfg *config.Config) time.Duration {
	return max(cfg.WriteTimeout, cfg.ResponseDeadline())
}

// Serve configures logging, wires the gateway and blocks until ctx is
// canceled or a termination signal arrives.
func Serve(ctx context.Context, cfg *config.Config) error {
	logging.SetDefaultStructuredLoggerWithLevel(Name, version, cfg.LogLevel)
	slog.Info("starting",
		"name", Name,
		"version", version,
		"commit", commit,
		"date", date,
		"engineDir", cfg.Engine.Dir,
		"engineTimeout", cfg.Engine.Timeout.String(),
	)

	s, err := NewServer(cfg)
	if err != nil {
		return err
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}
