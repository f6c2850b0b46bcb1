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

package locator

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/NVIDIA/catalog-gateway/pkg/errors"
)

// DefaultCandidates returns the engine executable names tried for the given
// GOOS, in priority order. The platform's native binary name comes first.
func DefaultCandidates(goos string) []string {
	if goos == "windows" {
		return []string{"main.exe", "recommendation_system.exe", "main", "recommendation_system"}
	}
	return []string{"main", "recommendation_system", "main.exe", "recommendation_system.exe"}
}

// ExecutableDir returns the directory containing the running gateway binary,
// with symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to determine executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Locator finds the engine executable in a single directory.
type Locator struct {
	dir        string
	candidates []string
	goos       string
}

// Option is a functional option for configuring Locator instances.
type Option func(*Locator)

// WithDir sets the search directory. Relative paths are made absolute.
func WithDir(dir string) Option {
	return func(l *Locator) {
		l.dir = dir
	}
}

// WithCandidates overrides the ordered list of executable names.
func WithCandidates(names ...string) Option {
	return func(l *Locator) {
		if len(names) > 0 {
			l.candidates = slices.Clone(names)
		}
	}
}

// New creates a Locator. Without WithDir it searches the directory of the
// running gateway binary.
func New(opts ...Option) (*Locator, error) {
	l := &Locator{goos: runtime.GOOS}
	for _, opt := range opts {
		opt(l)
	}

	if l.dir == "" {
		dir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		l.dir = dir
	}
	abs, err := filepath.Abs(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve search directory %q: %w", l.dir, err)
	}
	l.dir = abs

	if len(l.candidates) == 0 {
		l.candidates = DefaultCandidates(l.goos)
	}
	return l, nil
}

// Dir returns the absolute search directory.
func (l *Locator) Dir() string {
	return l.dir
}

// Candidates returns a copy of the ordered candidate names.
func (l *Locator) Candidates() []string {
	return slices.Clone(l.candidates)
}

// Locate returns the absolute path of the first candidate that exists and is
// Usable. When none qualifies it returns a NOT_FOUND StructuredError whose
// context holds the searched directory and the candidate list.
func (l *Locator) Locate() (string, error) {
	for _, name := range l.candidates {
		path := filepath.Join(l.dir, name)
		if l.Usable(path) {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "engine executable not found").
		With("dir", l.dir).
		With("candidates", l.Candidates())
}

// Usable reports whether path is a regular file the gateway may execute.
// Windows has no execute bit, so existence is enough there.
func (l *Locator) Usable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if l.goos == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
