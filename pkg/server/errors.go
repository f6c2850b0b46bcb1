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
	stderrors "errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/catalog-gateway/pkg/errors"
	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

// ErrorResponse is the envelope for errors raised by the server itself
// (rate limiting, panics, readiness). Error duplicates Message so every
// error body carries an "error" field, like engine and validation errors.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// WriteError writes error response
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code errors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestIDFrom(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Error:     message,
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr maps err onto the error envelope. Structured errors
// keep their code, message and context; anything else is reported as an
// internal error with fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, details map[string]any) {
	var se *errors.StructuredError
	if stderrors.As(err, &se) {
		merged := mergeDetails(se.Context, details)
		if se.Cause != nil {
			merged = mergeDetails(merged, map[string]any{"error": se.Cause.Error()})
		}
		WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), merged)
		return
	}

	merged := details
	if err != nil {
		merged = mergeDetails(details, map[string]any{"error": err.Error()})
	}
	WriteError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal, fallbackMessage,
		retryableFromCode(errors.ErrCodeInternal), merged)
}

// HTTPStatusFromCode maps a structured error code onto an HTTP status.
func HTTPStatusFromCode(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case errors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code errors.ErrorCode) bool {
	switch code {
	case errors.ErrCodeTimeout, errors.ErrCodeUnavailable, errors.ErrCodeRateLimitExceeded, errors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map with b's entries overriding a's, or nil
// when both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
