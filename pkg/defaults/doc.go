// Package defaults provides centralized configuration constants for the gateway.
//
// This package defines timeout values, size limits, and other defaults used
// across the codebase. Centralizing these values ensures consistency and makes
// tuning easier.
//
// # Categories
//
//   - Engine defaults: timeout, output limits and encoding for engine invocations
//   - Server timeouts and limits: HTTP server configuration
//   - Kubernetes timeouts: ConfigMap reads for configuration sources
//
// # Usage
//
//	import "github.com/NVIDIA/catalog-gateway/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.EngineTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Engine: 10s default, overridable per deployment
//   - Server write timeout: always longer than the engine timeout
//   - Server shutdown: 30s for graceful shutdown
package defaults
