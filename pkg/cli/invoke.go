/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/catalog-gateway/pkg/api"
	"github.com/NVIDIA/catalog-gateway/pkg/bridge"
	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

type invokeResult struct {
	Operation bridge.Operation `json:"operation" yaml:"operation"`
	Status    int              `json:"status" yaml:"status"`
	Duration  string           `json:"duration" yaml:"duration"`
	Payload   any              `json:"payload" yaml:"payload"`
}

func invokeCmd() *cli.Command {
	return &cli.Command{
		Name:      "invoke",
		Usage:     "Run one engine operation and print the normalized response",
		ArgsUsage: "<operation> [params...]",
		Description: `Run a single operation through the same bridge the HTTP routes use and
print the HTTP status and payload the gateway would return. Parameters are
passed to the engine verbatim, in the operation's template order.

Example:
  catalogd invoke add-product Widget General 9.99

Run "catalogd operations" for the operation table.`,
		Flags: []cli.Flag{
			formatFlag(serializer.FormatJSON),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			args := cmd.Args().Slice()
			if len(args) == 0 {
				return fmt.Errorf("operation is required, one of %v", bridge.Operations())
			}
			op := bridge.Operation(args[0])
			t, ok := bridge.Lookup(op)
			if !ok {
				return fmt.Errorf("unknown operation %q, one of %v", op, bridge.Operations())
			}
			params := args[1:]
			if len(params) != len(t.Params) {
				return fmt.Errorf("operation %q expects parameters %v, got %d", op, t.Params, len(params))
			}

			cfg, err := loadConfig(ctx, cmd)
			if err != nil {
				return err
			}

			b, _, err := api.NewBridge(cfg)
			if err != nil {
				return err
			}

			res := b.Execute(ctx, bridge.NewInvocation(op, params...))
			resp := bridge.Normalize(res, b.EngineName())

			out := invokeResult{
				Operation: op,
				Status:    resp.Status,
				Duration:  durationString(res.Duration),
				Payload:   resp.Payload,
			}
			if err := write(ctx, cmd, format, out); err != nil {
				return err
			}
			if resp.Status != http.StatusOK {
				return fmt.Errorf("%s failed: %s", op, res.Kind)
			}
			return nil
		},
	}
}
