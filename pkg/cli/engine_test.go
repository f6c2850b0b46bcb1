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

//go:build unix

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeEngine(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

const echoEngine = `#!/bin/sh
printf '{"argv":"%s","price":9.99}\n' "$*"
`

func TestInvokeCommand(t *testing.T) {
	dir := writeEngine(t, echoEngine)

	out, err := run(t, "--engine-dir", dir, "invoke", "add-product", "Widget", "General", "9.99")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	var res struct {
		Operation string         `json:"operation"`
		Status    int            `json:"status"`
		Payload   map[string]any `json:"payload"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if res.Status != 200 {
		t.Errorf("expected status 200, got %d", res.Status)
	}
	if res.Payload["argv"] != "--add-product Widget General 9.99" {
		t.Errorf("unexpected argv %v", res.Payload["argv"])
	}
}

func TestInvokeCommand_YAMLKeepsNumbers(t *testing.T) {
	dir := writeEngine(t, echoEngine)

	out, err := run(t, "--engine-dir", dir, "invoke", "get-products", "-o", "yaml")
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	var res struct {
		Payload struct {
			Price float64 `yaml:"price"`
		} `yaml:"payload"`
	}
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid YAML output: %v\n%s", err, out)
	}
	if res.Payload.Price != 9.99 {
		t.Errorf("expected price 9.99, got %v", res.Payload.Price)
	}
}

func TestInvokeCommand_EngineFailure(t *testing.T) {
	dir := writeEngine(t, "#!/bin/sh\necho boom >&2\n")

	out, err := run(t, "--engine-dir", dir, "invoke", "get-users")
	if err == nil {
		t.Fatal("expected error for failed invocation")
	}
	if !strings.Contains(out, `"status": 500`) {
		t.Errorf("expected status 500 in output:\n%s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("expected stderr in output:\n%s", out)
	}
}

func TestInvokeCommand_ArgumentErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no operation", []string{"invoke"}, "operation is required"},
		{"unknown operation", []string{"invoke", "get-orders"}, "unknown operation"},
		{"wrong parameter count", []string{"invoke", "rate", "1", "2"}, "expects parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"--engine-dir", dir}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLocateCommand(t *testing.T) {
	dir := writeEngine(t, echoEngine)

	out, err := run(t, "--engine-dir", dir, "locate")
	if err != nil {
		t.Fatalf("locate failed: %v", err)
	}

	var res locateResult
	if err := yaml.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid YAML output: %v", err)
	}
	if res.Path != filepath.Join(dir, "main") {
		t.Errorf("expected %s, got %s", filepath.Join(dir, "main"), res.Path)
	}
}

func TestLocateCommand_NotFound(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--engine-dir", dir, "locate", "--format", "json")
	if err == nil {
		t.Fatal("expected error when the engine is missing")
	}

	var res locateResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if res.Dir != dir {
		t.Errorf("expected dir %s, got %s", dir, res.Dir)
	}
	if len(res.Candidates) == 0 || res.Error == "" {
		t.Errorf("expected candidates and error, got %+v", res)
	}
}
