/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

func formatFlag(def serializer.Format) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"o"},
		Value:   string(def),
		Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
	}
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// write serializes v to the command's writer. Engine payloads hold
// json.Number values, which YAML would quote as strings, so YAML output goes
// through a JSON round trip first.
func write(ctx context.Context, cmd *cli.Command, format serializer.Format, v any) error {
	if format == serializer.FormatYAML {
		plain, err := toPlain(v)
		if err != nil {
			return err
		}
		v = plain
	}
	return serializer.NewWriter(format, writerOf(cmd)).Serialize(ctx, v)
}

func toPlain(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	var out any
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to convert output: %w", err)
	}
	return out, nil
}
