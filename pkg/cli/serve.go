/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/catalog-gateway/pkg/api"
	"github.com/NVIDIA/catalog-gateway/pkg/config"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP gateway",
		Description: `Serve the catalog API on the configured address. Every API request runs
the engine once; /health, /ready and /metrics are served alongside.

Configuration precedence, lowest to highest: defaults, --config source,
environment (PORT, ENGINE_DIR, ENGINE_TIMEOUT, LOG_LEVEL,
SHUTDOWN_TIMEOUT_SECONDS), flags.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listening port; overrides PORT",
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "Listening address; empty listens on all interfaces",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(ctx, cmd, func(c *config.Config) {
				if cmd.IsSet("port") {
					c.Port = cmd.Int("port")
				}
				if cmd.IsSet("address") {
					c.Address = cmd.String("address")
				}
			})
			if err != nil {
				return err
			}
			return api.Serve(ctx, cfg)
		},
	}
}
