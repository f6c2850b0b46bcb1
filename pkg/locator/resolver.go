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
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Finder locates the engine executable and judges whether a previously
// located path can still be run. *Locator implements it.
type Finder interface {
	Locate() (string, error)
	Usable(path string) bool
}

// Resolver caches the located engine path for the process lifetime.
// The cached path is re-checked on every use and re-resolved when it is gone
// or no longer executable, so a redeployed engine is picked up without a
// restart.
type Resolver struct {
	finder Finder

	mu     sync.RWMutex
	cached string

	group singleflight.Group
}

// NewResolver creates a Resolver backed by finder.
func NewResolver(finder Finder) *Resolver {
	return &Resolver{finder: finder}
}

// Path returns the engine path, locating it on first use. Concurrent callers
// share a single lookup. Errors are never cached.
func (r *Resolver) Path(ctx context.Context) (string, error) {
	r.mu.RLock()
	cached := r.cached
	r.mu.RUnlock()

	if cached != "" {
		if r.finder.Usable(cached) {
			return cached, nil
		}
		slog.Warn("cached engine path no longer usable, re-resolving", "path", cached)
		r.Invalidate()
	}

	ch := r.group.DoChan("locate", func() (any, error) {
		path, err := r.finder.Locate()
		if err != nil {
			return "", err
		}
		r.mu.Lock()
		r.cached = path
		r.mu.Unlock()
		slog.Info("engine located", "path", path)
		return path, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached path so the next Path call locates again.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.cached = ""
	r.mu.Unlock()
}

// Cached returns the currently cached path, or "" if none.
func (r *Resolver) Cached() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cached
}
