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

// Package serializer reads and writes structured documents.
//
// # Formats
//
//   - JSON: API responses and machine-readable CLI output
//   - YAML: configuration files and human-readable CLI output
//   - Table: one row per element for lists of structs, FIELD/VALUE rows
//     otherwise; write-only
//
// # Reading
//
// FromFile loads a document into a typed value from a local path or from a
// Kubernetes ConfigMap URI. The format of a local file follows its extension.
// A ConfigMap is searched for the data keys config.yaml, config.yml and
// config.json, in that order:
//
//	cfg, err := serializer.FromFile[fileConfig](ctx, "cm://catalog/gateway-config")
//
// FromFileWithClient takes an explicit client.Interface, which tests satisfy
// with the client-go fake clientset.
//
// # Writing
//
//	w := serializer.NewWriter(serializer.FormatYAML, os.Stdout)
//	if err := w.Serialize(ctx, ops); err != nil {
//	    return err
//	}
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, payload)
//
// RespondJSON encodes before writing headers, so an encoding failure still
// yields a clean 500 rather than a partial body.
package serializer
