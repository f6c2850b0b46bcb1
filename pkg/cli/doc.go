/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
// Package cli implements catalogd, the command-line entry point of the
// catalog gateway.
//
// # Commands
//
// serve - Run the HTTP gateway (default when no command is given):
//
//	catalogd serve [--port 5000] [--address 127.0.0.1]
//
// locate - Print the engine executable that would be run:
//
//	catalogd locate [--format yaml|json]
//
// invoke - Run one operation through the bridge and print the status and
// payload the HTTP API would return:
//
//	catalogd invoke get-reviews 12
//
// operations - List operations, their engine argument templates and routes:
//
//	catalogd operations [--format table|json|yaml]
//
// # Global Flags
//
//   - --config: config file or ConfigMap URI (cm://namespace/name)
//   - --kubeconfig: kubeconfig for ConfigMap sources
//   - --log-level: debug, info, warn or error
//   - --engine-dir, --engine-timeout: engine overrides
//
// Flags take precedence over the environment, which takes precedence over
// the config source.
package cli
