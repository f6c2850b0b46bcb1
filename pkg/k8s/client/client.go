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
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// UserAgent identifies the gateway to the Kubernetes API server.
const UserAgent = "catalog-gateway"

// Interface is an alias for kubernetes.Interface so callers can pass the
// client-go fake clientset in tests.
type Interface = kubernetes.Interface

type cachedClient struct {
	client Interface
	config *rest.Config
}

var (
	cacheMu sync.Mutex
	cache   = map[string]cachedClient{}
)

// GetKubeClientWithConfig returns a shared client for the given kubeconfig,
// or for default discovery when it is empty (see ResolveKubeconfig).
// Clients are cached per resolved kubeconfig path; failures are not cached.
func GetKubeClientWithConfig(kubeconfig string) (Interface, *rest.Config, error) {
	path := ResolveKubeconfig(kubeconfig)

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if c, ok := cache[path]; ok {
		return c.client, c.config, nil
	}

	clientset, config, err := BuildKubeClient(path)
	if err != nil {
		return nil, nil, err
	}
	cache[path] = cachedClient{client: clientset, config: config}
	return clientset, config, nil
}

// ResolveKubeconfig returns the kubeconfig file to use: the explicit path,
// then KUBECONFIG, then ~/.kube/config if it exists. An empty result means
// in-cluster configuration.
func ResolveKubeconfig(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home := filepath.Join(homedir.HomeDir(), ".kube", "config")
	if _, err := os.Stat(home); err == nil {
		return home
	}
	return ""
}

// BuildKubeClient creates an uncached client. An empty kubeconfig is
// resolved with ResolveKubeconfig.
func BuildKubeClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	kubeconfig = ResolveKubeconfig(kubeconfig)

	var (
		config *rest.Config
		err    error
	)
	// InClusterConfig directly avoids clientcmd's "Neither --kubeconfig nor
	// --master was specified" warning.
	if kubeconfig == "" {
		config, err = rest.InClusterConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
		}
	}
	config.UserAgent = UserAgent

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, config, nil
}
