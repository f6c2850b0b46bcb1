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

package bridge

import "time"

// Kind classifies the outcome of one engine invocation.
type Kind int

const (
	KindSuccess Kind = iota
	KindEngineNotFound
	KindTimeout
	KindEmptyOutput
	KindMalformedOutput
	KindProcessError
	KindUnexpectedFailure
)

var kindNames = map[Kind]string{
	KindSuccess:           "success",
	KindEngineNotFound:    "engine_not_found",
	KindTimeout:           "timeout",
	KindEmptyOutput:       "empty_output",
	KindMalformedOutput:   "malformed_output",
	KindProcessError:      "process_error",
	KindUnexpectedFailure: "unexpected_failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Result is the classified outcome of one engine invocation.
type Result struct {
	Kind Kind

	// Payload is the decoded stdout document. Set only for KindSuccess.
	Payload any

	// Stdout is the trimmed standard output. Reported for KindMalformedOutput.
	Stdout string

	// Stderr is the trimmed standard error, kept for diagnostics on every kind.
	Stderr string

	// Err is the underlying failure: the JSON parse error, the locator error,
	// or the process start error.
	Err error

	Duration time.Duration
}

// Response is a normalized HTTP outcome.
type Response struct {
	Status  int
	Payload any
}

// ErrorPayload is the JSON body of every engine-related failure.
// Diagnostic fields are additive; Error is always present.
type ErrorPayload struct {
	Error     string `json:"error"`
	RawOutput string `json:"raw_output,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
}
