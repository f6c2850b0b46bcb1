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

package client

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: test
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: test
  context:
    cluster: test
    user: test
current-context: test
users:
- name: test
  user:
    token: abc
`

func writeKubeconfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	if err := os.WriteFile(path, []byte(testKubeconfig), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveKubeconfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv("KUBECONFIG", "/from/env")
		if got := ResolveKubeconfig("/explicit"); got != "/explicit" {
			t.Errorf("expected /explicit, got %s", got)
		}
	})

	t.Run("env before home", func(t *testing.T) {
		t.Setenv("KUBECONFIG", "/from/env")
		if got := ResolveKubeconfig(""); got != "/from/env" {
			t.Errorf("expected /from/env, got %s", got)
		}
	})

	t.Run("missing home config means in-cluster", func(t *testing.T) {
		t.Setenv("KUBECONFIG", "")
		if got := ResolveKubeconfig(""); got != "" {
			t.Errorf("expected empty path, got %s", got)
		}
	})

	t.Run("home config", func(t *testing.T) {
		t.Setenv("KUBECONFIG", "")
		dir := filepath.Join(home, ".kube")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "config")
		if err := os.WriteFile(want, []byte(testKubeconfig), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := ResolveKubeconfig(""); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestBuildKubeClient(t *testing.T) {
	t.Run("invalid path", func(t *testing.T) {
		_, _, err := BuildKubeClient("/nonexistent/path/to/kubeconfig")
		if err == nil || !strings.Contains(err.Error(), "failed to build kube config") {
			t.Fatalf("expected build error, got %v", err)
		}
	})

	t.Run("valid kubeconfig", func(t *testing.T) {
		clientset, config, err := BuildKubeClient(writeKubeconfig(t))
		if err != nil {
			t.Fatalf("BuildKubeClient failed: %v", err)
		}
		if clientset == nil {
			t.Fatal("expected clientset")
		}
		if config.Host != "https://127.0.0.1:6443" {
			t.Errorf("unexpected host %s", config.Host)
		}
		if config.UserAgent != UserAgent {
			t.Errorf("expected user agent %s, got %s", UserAgent, config.UserAgent)
		}
	})
}

func TestGetKubeClientWithConfig_Caches(t *testing.T) {
	path := writeKubeconfig(t)

	c1, _, err := GetKubeClientWithConfig(path)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	c2, _, err := GetKubeClientWithConfig(path)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if c1 != c2 {
		t.Error("expected the same client for the same kubeconfig")
	}

	if _, _, err := GetKubeClientWithConfig("/nonexistent/kubeconfig"); err == nil {
		t.Error("expected error for invalid kubeconfig")
	}
}
