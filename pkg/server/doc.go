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

// Package server provides the HTTP server that hosts the catalog gateway.
//
// The server owns everything that is not route-specific: the listener, the
// middleware chain, health and readiness probes, Prometheus metrics and
// graceful shutdown. Routes are supplied as handlers keyed by ServeMux
// pattern (Go 1.22 method patterns such as "POST /add/user").
//
// # Middleware
//
// Every supplied handler runs behind, outermost first:
//
//   - metrics: request count, latency and in-flight gauge labeled by route pattern
//   - version: X-API-Version negotiated from application/vnd.nvidia.catalog.vN+json
//   - request ID: X-Request-Id (UUID) accepted or generated
//   - panic recovery: 500 with the error envelope
//   - rate limiting: global token bucket (golang.org/x/time/rate), 429 with Retry-After
//   - logging: one structured line per request
//
// CORS wraps the whole mux so preflight OPTIONS requests are answered before
// method-restricted patterns would reject them.
//
// # System endpoints
//
//	GET /health   liveness, always 200
//	GET /ready    200 once listening and the readiness check passes, else 503
//	GET /metrics  Prometheus exposition
//
// # Error envelope
//
// Errors produced by the server itself use:
//
//	{
//	  "error": "Rate limit exceeded",
//	  "code": "RATE_LIMIT_EXCEEDED",
//	  "message": "Rate limit exceeded",
//	  "details": {"limit": 100, "burst": 200},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-12-22T12:00:00Z",
//	  "retryable": true
//	}
//
// # Lifecycle
//
// Run listens, marks the server ready, notifies systemd (READY=1) when
// started under a unit with Type=notify, and shuts down gracefully on
// context cancellation, SIGINT or SIGTERM (STOPPING=1). The shutdown
// timeout can be aligned with the Kubernetes termination grace period via
// SHUTDOWN_TIMEOUT_SECONDS.
//
// Usage:
//
//	s := server.New(
//	    server.WithName("catalogd"),
//	    server.WithVersion(version),
//	    server.WithHandler(handlers),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
package server
