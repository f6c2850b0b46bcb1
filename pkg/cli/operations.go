/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/catalog-gateway/pkg/bridge"
	"github.com/NVIDIA/catalog-gateway/pkg/gateway"
	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

type operationInfo struct {
	Operation bridge.Operation `json:"operation" yaml:"operation"`
	Method    string           `json:"method" yaml:"method"`
	Paths     []string         `json:"paths" yaml:"paths"`
	Args      []string         `json:"args" yaml:"args"`
}

// operationTable joins the engine argument templates with the HTTP routes
// that reach them.
func operationTable() []operationInfo {
	routes := map[bridge.Operation]gateway.Route{}
	for _, r := range gateway.New(nil).Routes() {
		routes[r.Operation] = r
	}

	ops := bridge.Operations()
	out := make([]operationInfo, 0, len(ops))
	for _, op := range ops {
		t, _ := bridge.Lookup(op)
		args := t.Verb
		for _, p := range t.Params {
			args = append(args, "<"+p+">")
		}
		r := routes[op]
		out = append(out, operationInfo{
			Operation: op,
			Args:      args,
			Method:    r.Method,
			Paths:     r.Paths,
		})
	}
	return out
}

func operationsCmd() *cli.Command {
	return &cli.Command{
		Name:  "operations",
		Usage: "List engine operations with their argument templates and routes",
		Flags: []cli.Flag{
			formatFlag(serializer.FormatTable),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			return write(ctx, cmd, format, operationTable())
		},
	}
}
