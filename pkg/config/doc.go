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

// Package config resolves gateway settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults
//  2. a config source: a YAML or JSON file, or a ConfigMap URI
//     cm://namespace/name holding config.yaml or config.json
//  3. environment: PORT, ENGINE_DIR, ENGINE_TIMEOUT, LOG_LEVEL,
//     SHUTDOWN_TIMEOUT_SECONDS
//  4. overrides, which the CLI uses for flags
//
// A source only needs the fields it changes:
//
//	port: 8080
//	engine:
//	  dir: /opt/catalog/bin
//	  timeout: 5s
//	  encoding: windows-1252
//
// Durations accept Go duration strings or integer seconds.
package config
