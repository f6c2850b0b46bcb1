/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/catalog-gateway/pkg/api"
	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

type locateResult struct {
	Path       string   `json:"path,omitempty" yaml:"path,omitempty"`
	Dir        string   `json:"dir" yaml:"dir"`
	Candidates []string `json:"candidates" yaml:"candidates"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func locateCmd() *cli.Command {
	return &cli.Command{
		Name:  "locate",
		Usage: "Print the engine executable the gateway would run",
		Description: `Search the engine directory for the candidate names in priority order and
print the first usable one. On failure the searched directory and candidate
list are printed and the command exits non-zero.`,
		Flags: []cli.Flag{
			formatFlag(serializer.FormatYAML),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			l, err := api.NewLocator(cfg)
			if err != nil {
				return err
			}

			res := locateResult{Dir: l.Dir(), Candidates: l.Candidates()}
			path, locateErr := l.Locate()
			if locateErr != nil {
				res.Error = locateErr.Error()
			} else {
				res.Path = path
			}

			if err := write(ctx, cmd, format, res); err != nil {
				return err
			}
			if locateErr != nil {
				return fmt.Errorf("engine not found in %s", res.Dir)
			}
			return nil
		},
	}
}
