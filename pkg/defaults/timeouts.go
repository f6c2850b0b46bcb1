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

package defaults

import "time"

// Engine execution defaults.
const (
	// EngineTimeout is the wall-clock limit for a single engine invocation.
	EngineTimeout = 10 * time.Second

	// EngineWaitDelay bounds how long the bridge waits for the engine's output
	// pipes to close after the process has been killed.
	EngineWaitDelay = 2 * time.Second

	// EngineMaxOutputBytes caps the captured size of each engine output stream.
	EngineMaxOutputBytes = 8 << 20

	// EngineEncoding is the text encoding assumed for engine output.
	EngineEncoding = "utf-8"

	// EngineName is the display name used in error payloads.
	EngineName = "recommendation engine"
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	// Must exceed EngineTimeout so a 504 can still be written.
	ServerWriteTimeout = 30 * time.Second

	// ServerWriteMargin is added on top of the engine timeout and wait delay
	// when the write deadline is derived from engine settings.
	ServerWriteMargin = 5 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// Server limits.
const (
	// ServerPort is the default listening port.
	ServerPort = 5000

	// ServerRateLimit is the sustained request rate in requests per second.
	ServerRateLimit = 100

	// ServerRateLimitBurst is the token bucket burst size.
	ServerRateLimitBurst = 200

	// ServerMaxBodyBytes caps inbound JSON request bodies.
	ServerMaxBodyBytes = 1 << 20
)

// Kubernetes timeouts for K8s API operations.
const (
	// ConfigMapReadTimeout is the timeout for reading configuration ConfigMaps.
	ConfigMapReadTimeout = 30 * time.Second
)
