/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/catalog-gateway/pkg/api"
	"github.com/NVIDIA/catalog-gateway/pkg/config"
	"github.com/NVIDIA/catalog-gateway/pkg/logging"
)

const name = "catalogd"

// Execute runs the CLI with the process arguments and exits non-zero on
// error. SIGINT and SIGTERM cancel the command's context.
func Execute() {
	logging.SetDefaultStructuredLogger(api.Name, api.Build().Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// NewCommand returns the root command. Without a subcommand it serves.
func NewCommand() *cli.Command {
	build := api.Build()
	return &cli.Command{
		Name:                  name,
		Usage:                 "HTTP gateway for the catalog recommendation engine",
		Version:               fmt.Sprintf("%s (commit %s, built %s)", build.Version, build.Commit, build.Date),
		EnableShellCompletion: true,
		DefaultCommand:        "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path or ConfigMap URI (cm://namespace/name)",
				Sources: cli.EnvVars("CATALOG_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides config and LOG_LEVEL",
			},
			&cli.StringFlag{
				Name:    "kubeconfig",
				Usage:   "Kubeconfig used to read ConfigMap config sources",
				Sources: cli.EnvVars("KUBECONFIG"),
			},
			&cli.StringFlag{
				Name:  "engine-dir",
				Usage: "Directory searched for the engine executable; overrides ENGINE_DIR",
			},
			&cli.DurationFlag{
				Name:  "engine-timeout",
				Usage: "Wall-clock limit per engine invocation; overrides ENGINE_TIMEOUT",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			locateCmd(),
			invokeCmd(),
			operationsCmd(),
		},
	}
}

// loadConfig resolves configuration with flags applied last, then installs
// the default logger at the resolved level.
func loadConfig(ctx context.Context, cmd *cli.Command, extra ...func(*config.Config)) (*config.Config, error) {
	opts := []config.LoadOption{
		config.WithKubeconfig(cmd.String("kubeconfig")),
		config.WithOverride(func(c *config.Config) {
			if cmd.IsSet("log-level") {
				c.LogLevel = cmd.String("log-level")
			}
			if cmd.IsSet("engine-dir") {
				c.Engine.Dir = cmd.String("engine-dir")
			}
			if cmd.IsSet("engine-timeout") {
				c.Engine.Timeout = cmd.Duration("engine-timeout")
			}
		}),
	}
	for _, fn := range extra {
		opts = append(opts, config.WithOverride(fn))
	}

	cfg, err := config.Load(ctx, cmd.String("config"), opts...)
	if err != nil {
		return nil, err
	}

	logging.SetDefaultStructuredLoggerWithLevel(api.Name, api.Build().Version, cfg.LogLevel)
	return cfg, nil
}

func writerOf(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// durationString renders d for human-facing output.
func durationString(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
