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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/catalog-gateway/pkg/k8s/client"
	"gopkg.in/yaml.v3"
)

var extensionFormats = map[string]Format{
	".json":  FormatJSON,
	".yaml":  FormatYAML,
	".yml":   FormatYAML,
	".table": FormatTable,
	".txt":   FormatTable,
}

// FormatFromPath maps a file extension to a Format, ignoring case. Anything
// unrecognized is treated as YAML.
func FormatFromPath(filePath string) Format {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(filePath))]; ok {
		return f
	}
	slog.Debug("unknown file extension, defaulting to YAML", "filePath", filePath)
	return FormatYAML
}

type decoder interface {
	Decode(v any) error
}

// Reader decodes JSON or YAML documents from an input. Readers created with
// NewFileReader own their file and must be closed.
type Reader struct {
	format Format
	dec    decoder
	closer io.Closer
}

// NewReader returns a Reader for input. Table is write-only and rejected.
// An input that is also an io.Closer is closed by Close.
func NewReader(format Format, input io.Reader) (*Reader, error) {
	switch {
	case format.IsUnknown():
		return nil, fmt.Errorf("unknown format: %s", format)
	case format == FormatTable:
		return nil, errors.New("table format does not support deserialization")
	}

	r := &Reader{format: format}
	if input == nil {
		return r, nil
	}
	if format == FormatJSON {
		r.dec = json.NewDecoder(input)
	} else {
		r.dec = yaml.NewDecoder(input)
	}
	r.closer, _ = input.(io.Closer)
	return r, nil
}

// NewFileReader opens filePath for decoding in format.
func NewFileReader(format Format, filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	r, err := NewReader(format, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// NewFileReaderAuto is NewFileReader with the format taken from the path.
func NewFileReaderAuto(filePath string) (*Reader, error) {
	return NewFileReader(FormatFromPath(filePath), filePath)
}

// Deserialize decodes the next document into v.
func (r *Reader) Deserialize(v any) error {
	if r == nil || r.dec == nil {
		return errors.New("reader has no input")
	}
	if err := r.dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", strings.ToUpper(string(r.format)), err)
	}
	return nil
}

// Close closes an owned input. Repeated calls and nil Readers are no-ops.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// FromFile decodes a local file or ConfigMap URI into a new T. ConfigMaps are
// fetched with a client from default kubeconfig discovery.
func FromFile[T any](ctx context.Context, path string) (*T, error) {
	return FromFileWithKubeconfig[T](ctx, path, "")
}

// FromFileWithKubeconfig is FromFile with an explicit kubeconfig path.
func FromFileWithKubeconfig[T any](ctx context.Context, path, kubeconfig string) (*T, error) {
	if !IsConfigMapURI(path) {
		return fromLocalFile[T](path)
	}
	c, _, err := client.GetKubeClientWithConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}
	return fromConfigMap[T](ctx, c, path)
}

// FromFileWithClient is FromFile with a caller-supplied Kubernetes client.
func FromFileWithClient[T any](ctx context.Context, path string, c client.Interface) (*T, error) {
	if !IsConfigMapURI(path) {
		return fromLocalFile[T](path)
	}
	if c == nil {
		return nil, fmt.Errorf("kubernetes client is required for %s", path)
	}
	return fromConfigMap[T](ctx, c, path)
}

func fromLocalFile[T any](path string) (*T, error) {
	r, err := NewFileReaderAuto(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			slog.Warn("failed to close file", "path", path, "error", cerr)
		}
	}()

	var out T
	if err := r.Deserialize(&out); err != nil {
		return nil, fmt.Errorf("failed to deserialize %q: %w", path, err)
	}
	slog.Debug("loaded file", "path", path, "format", r.format)
	return &out, nil
}
