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

package errors

import (
	stderrors "errors"
	"strings"
)

// ErrorCode classifies a failure for callers and HTTP responses.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeInternal          ErrorCode = "INTERNAL"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeMethodNotAllowed  ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeUnavailable       ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidConfig     ErrorCode = "INVALID_CONFIG"
)

// StructuredError is an error with a code, a message, an optional cause and
// key/value context such as the directory a lookup searched.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

func (e *StructuredError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Code))
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// With records a context value and returns e for chaining.
func (e *StructuredError) With(key string, value any) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]any, 2)
	}
	e.Context[key] = value
	return e
}

// New returns an error with code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// Wrap returns an error with code and message caused by cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first StructuredError in err's chain, or ""
// when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
