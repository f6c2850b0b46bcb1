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

package server

import (
	"net/http"
	"time"

	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

// HealthResponse is the body of /health and /ready.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func probe(w http.ResponseWriter, status int, state, reason string) {
	serializer.RespondJSON(w, status, HealthResponse{
		Status:    state,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
}

// handleHealth reports liveness. It never consults the engine.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	probe(w, http.StatusOK, "healthy", "")
}

// handleReady reports 503 until the listener is up and while the configured
// readiness check fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	var reason string
	if !ready {
		reason = "service is initializing"
	} else if s.config.Readiness != nil {
		if err := s.config.Readiness(r.Context()); err != nil {
			reason = err.Error()
		}
	}

	if reason != "" {
		probe(w, http.StatusServiceUnavailable, "not_ready", reason)
		return
	}
	probe(w, http.StatusOK, "ready", "")
}
