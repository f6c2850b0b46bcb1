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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/NVIDIA/catalog-gateway/pkg/defaults"
	"github.com/NVIDIA/catalog-gateway/pkg/k8s/client"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConfigMapURIScheme prefixes sources read from a Kubernetes ConfigMap,
// as in cm://namespace/name.
const ConfigMapURIScheme = "cm://"

// ConfigMapDataKeys lists the data keys searched, in order, for document
// content. The key's extension selects the format.
var ConfigMapDataKeys = []string{"config.yaml", "config.yml", "config.json"}

// IsConfigMapURI reports whether source names a ConfigMap.
func IsConfigMapURI(source string) bool {
	return strings.HasPrefix(source, ConfigMapURIScheme)
}

// parseConfigMapURI splits cm://namespace/name. Both parts are trimmed and
// must be non-empty; the name is a single path segment.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	rest, ok := strings.CutPrefix(uri, ConfigMapURIScheme)
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: must start with %s", uri, ConfigMapURIScheme)
	}
	namespace, name, ok = strings.Cut(rest, "/")
	namespace, name = strings.TrimSpace(namespace), strings.TrimSpace(name)
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q: expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return namespace, name, nil
}

// fromConfigMap reads the first populated data key of the named ConfigMap and
// deserializes it into a new T.
func fromConfigMap[T any](ctx context.Context, c client.Interface, uri string) (*T, error) {
	namespace, name, err := parseConfigMapURI(uri)
	if err != nil {
		return nil, err
	}

	readCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := c.CoreV1().ConfigMaps(namespace).Get(readCtx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get ConfigMap %s/%s: %w", namespace, name, err)
	}

	for _, key := range ConfigMapDataKeys {
		content, ok := cm.Data[key]
		if !ok {
			continue
		}
		slog.DebugContext(ctx, "reading ConfigMap", "configmap", namespace+"/"+name, "key", key, "size", len(content))

		r, err := NewReader(FormatFromPath(key), strings.NewReader(content))
		if err != nil {
			return nil, err
		}
		var out T
		if err := r.Deserialize(&out); err != nil {
			return nil, fmt.Errorf("failed to deserialize ConfigMap %s/%s key %s: %w", namespace, name, key, err)
		}
		return &out, nil
	}

	return nil, fmt.Errorf("ConfigMap %s/%s has none of the keys %v", namespace, name, ConfigMapDataKeys)
}
