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

// Package client builds Kubernetes clients for reading gateway configuration
// from ConfigMaps.
//
// Clients are shared per kubeconfig path:
//
//	c, _, err := client.GetKubeClientWithConfig(kubeconfig)
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//	cm, err := c.CoreV1().ConfigMaps("catalog").Get(ctx, "gateway-config", metav1.GetOptions{})
//
// An empty kubeconfig falls back to the KUBECONFIG environment variable, then
// ~/.kube/config, then the in-cluster service account.
package client
