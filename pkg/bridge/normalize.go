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

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrTrailingData is reported when stdout holds more than one JSON document.
var ErrTrailingData = errors.New("unexpected data after JSON document")

// classifyOutput turns the captured streams of a finished process into a
// Result. Stdout is the only success channel; stderr never becomes payload.
func classifyOutput(stdout, stderr string) Result {
	out := strings.TrimSpace(stdout)
	errText := strings.TrimSpace(stderr)

	if out == "" {
		if errText != "" {
			return Result{Kind: KindProcessError, Stderr: errText}
		}
		return Result{Kind: KindEmptyOutput}
	}

	payload, err := decodeDocument(out)
	if err != nil {
		return Result{Kind: KindMalformedOutput, Stdout: out, Stderr: errText, Err: err}
	}
	return Result{Kind: KindSuccess, Payload: payload, Stderr: errText}
}

// decodeDocument parses exactly one JSON value. Numbers are kept as
// json.Number so they are re-encoded with their original text.
func decodeDocument(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

// Normalize maps a Result onto an HTTP status and JSON payload.
// engineName is used in error messages.
func Normalize(res Result, engineName string) Response {
	switch res.Kind {
	case KindSuccess:
		return Response{Status: http.StatusOK, Payload: res.Payload}
	case KindProcessError:
		return Response{Status: http.StatusInternalServerError, Payload: ErrorPayload{
			Error:  fmt.Sprintf("%s execution failed (check server logs)", engineName),
			Stderr: res.Stderr,
		}}
	case KindEmptyOutput:
		return Response{Status: http.StatusInternalServerError, Payload: ErrorPayload{
			Error: fmt.Sprintf("%s returned no output.", engineName),
		}}
	case KindMalformedOutput:
		return Response{Status: http.StatusInternalServerError, Payload: ErrorPayload{
			Error:     "Invalid JSON from " + engineName,
			RawOutput: res.Stdout,
		}}
	case KindEngineNotFound:
		return Response{Status: http.StatusInternalServerError, Payload: ErrorPayload{
			Error: engineName + " not found",
		}}
	case KindTimeout:
		return Response{Status: http.StatusGatewayTimeout, Payload: ErrorPayload{
			Error: fmt.Sprintf("%s execution timed out.", engineName),
		}}
	default:
		desc := "unknown failure"
		if res.Err != nil {
			desc = res.Err.Error()
		}
		return Response{Status: http.StatusInternalServerError, Payload: ErrorPayload{
			Error: "Unexpected error: " + desc,
		}}
	}
}
